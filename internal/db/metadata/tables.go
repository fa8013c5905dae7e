package metadata

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/connection"
)

// toString safely converts a driver value to string
func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Table represents a PostgreSQL table
type Table struct {
	Schema string
	Name   string
	Size   string
}

// ListTables returns all tables in a schema
func ListTables(ctx context.Context, pool *connection.Pool, schema string) ([]Table, error) {
	query := `
		SELECT
			schemaname as schema,
			tablename as name,
			pg_catalog.pg_size_pretty(pg_catalog.pg_total_relation_size(schemaname||'.'||tablename)) as size
		FROM pg_catalog.pg_tables
		WHERE schemaname = $1
		ORDER BY tablename;
	`

	rows, err := pool.Query(ctx, query, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list tables in %s", schema)
	}

	tables := make([]Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, Table{
			Schema: toString(row["schema"]),
			Name:   toString(row["name"]),
			Size:   toString(row["size"]),
		})
	}

	return tables, nil
}
