package metadata

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/connection"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// GetTableColumns retrieves column metadata for a table. Single-column
// foreign keys become lookups into the referenced table.
func GetTableColumns(ctx context.Context, pool *connection.Pool, schema, table string) ([]models.QueryColumn, error) {
	columns, err := getColumns(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s.%s not found or has no columns", schema, table)
	}

	fks, err := GetForeignKeys(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}

	for _, fk := range fks {
		for i := range columns {
			if columns[i].Name != fk.Column {
				continue
			}
			targets, err := getColumns(ctx, pool, fk.ForeignSchema, fk.ForeignTable)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve lookup %s", fk.Name)
			}
			columns[i].Lookup = &models.Lookup{
				Schema:  fk.ForeignSchema,
				Table:   fk.ForeignTable,
				Key:     fk.ForeignColumn,
				Columns: targets,
			}
		}
	}

	return columns, nil
}

func getColumns(ctx context.Context, pool *connection.Pool, schema, table string) ([]models.QueryColumn, error) {
	query := `
		SELECT
			column_name,
			data_type,
			udt_name,
			is_nullable = 'YES' AS nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get columns")
	}

	columns := make([]models.QueryColumn, 0, len(rows))
	for _, row := range rows {
		name := toString(row["column_name"])
		dataType := toString(row["data_type"])
		if dataType == "USER-DEFINED" {
			dataType = toString(row["udt_name"])
		}

		col := models.QueryColumn{
			Name:         name,
			ShortCaption: models.CaptionFor(name),
			FieldKey:     name,
			DataType:     dataType,
			JSONType:     models.JSONTypeFor(dataType),
			MultiValue:   strings.EqualFold(dataType, "ARRAY"),
		}
		if nullable, ok := row["nullable"].(bool); ok {
			col.Nullable = nullable
		}
		columns = append(columns, col)
	}

	return columns, nil
}
