package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rebeliceyang/omnipg/internal/models"
)

// NullText is how SQL NULL is rendered
const NullText = "NULL"

// Execute executes a SQL query and returns the results as text
func Execute(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) models.QueryResult {
	start := time.Now()

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	var result [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.QueryResult{
				Error:    err,
				Duration: time.Since(start),
			}
		}

		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return models.QueryResult{
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return models.QueryResult{
		Columns:      columns,
		Rows:         result,
		RowsAffected: int64(len(result)),
		Duration:     time.Since(start),
	}
}

// FormatValue renders a driver value as display text; JSON values are
// re-encoded compactly
func FormatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return NullText
	case string:
		return v
	case map[string]any, []any:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	case []byte:
		return string(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	case pgtype.Numeric:
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return NullText
		}
		return fmt.Sprintf("%v", f.Float64)
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", v[0:4], v[4:6], v[6:8], v[8:10], v[10:16])
	default:
		return fmt.Sprintf("%v", val)
	}
}
