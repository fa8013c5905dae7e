package metadata

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/connection"
	"github.com/rebeliceyang/omnipg/internal/db/query"
	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// QueryTableData fetches one page of the table under the view
func QueryTableData(ctx context.Context, pool *connection.Pool, schema, table string, columns []models.QueryColumn, view models.View, offset, limit int) (*models.TableData, error) {
	b := filter.NewBuilder(filter.Postgres, columns)
	from := filter.Qualified(schema, table)

	countSQL, countArgs, err := b.BuildCount(from, view)
	if err != nil {
		return nil, err
	}
	countRow, err := pool.QueryRow(ctx, countSQL, countArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count rows")
	}

	totalRows := int64(0)
	if count, ok := countRow["count"].(int64); ok {
		totalRows = count
	}

	pageSQL, args, err := b.BuildSelect(from, view, offset, limit)
	if err != nil {
		return nil, err
	}
	result := query.Execute(ctx, pool.GetPool(), pageSQL, args...)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query table data")
	}

	rows := result.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return &models.TableData{
		Columns:   result.Columns,
		Rows:      rows,
		TotalRows: totalRows,
	}, nil
}

// QueryDistinctValues lists distinct values of a column as text
func QueryDistinctValues(ctx context.Context, pool *connection.Pool, schema, table string, columns []models.QueryColumn, fieldKey string, limit int) ([]string, error) {
	b := filter.NewBuilder(filter.Postgres, columns)
	sql, err := b.BuildDistinct(filter.Qualified(schema, table), fieldKey, limit)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query distinct values of %s", fieldKey)
	}

	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, toString(row["value"]))
	}
	return values, nil
}
