package metadata

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/connection"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// GetForeignKeys retrieves the single-column foreign keys of a table
func GetForeignKeys(ctx context.Context, pool *connection.Pool, schema, table string) ([]models.ForeignKey, error) {
	query := `
		SELECT
			con.conname AS constraint_name,
			att.attname AS column_name,
			nf.nspname AS foreign_schema,
			clf.relname AS foreign_table,
			attf.attname AS foreign_column
		FROM pg_catalog.pg_constraint con
		JOIN pg_catalog.pg_class cl ON con.conrelid = cl.oid
		JOIN pg_catalog.pg_namespace ns ON cl.relnamespace = ns.oid
		JOIN pg_catalog.pg_class clf ON con.confrelid = clf.oid
		JOIN pg_catalog.pg_namespace nf ON clf.relnamespace = nf.oid
		JOIN pg_catalog.pg_attribute att ON att.attrelid = con.conrelid
			AND att.attnum = con.conkey[1]
		JOIN pg_catalog.pg_attribute attf ON attf.attrelid = con.confrelid
			AND attf.attnum = con.confkey[1]
		WHERE ns.nspname = $1 AND cl.relname = $2
			AND con.contype = 'f'
			AND array_length(con.conkey, 1) = 1
		ORDER BY con.conname
	`

	rows, err := pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get foreign keys")
	}

	fks := make([]models.ForeignKey, 0, len(rows))
	for _, row := range rows {
		fks = append(fks, models.ForeignKey{
			Name:          toString(row["constraint_name"]),
			Column:        toString(row["column_name"]),
			ForeignSchema: toString(row["foreign_schema"]),
			ForeignTable:  toString(row["foreign_table"]),
			ForeignColumn: toString(row["foreign_column"]),
		})
	}

	return fks, nil
}
