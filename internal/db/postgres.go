package db

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/connection"
	"github.com/rebeliceyang/omnipg/internal/db/metadata"
	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/logging"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// Postgres serves one table of a PostgreSQL database
type Postgres struct {
	pool    *connection.Pool
	logger  logging.Logger
	schema  string
	table   string
	timeout time.Duration
	columns []models.QueryColumn
}

// OpenPostgres connects and loads the table's column metadata
func OpenPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	schema := opts.Schema
	if schema == "" {
		schema = "public"
	}

	pool, err := connection.NewPool(ctx, opts.Connection, opts.PoolSize)
	if err != nil {
		return nil, err
	}

	pg := &Postgres{
		pool:    pool,
		logger:  opts.Logger,
		schema:  schema,
		table:   opts.Table,
		timeout: opts.QueryTimeout,
	}

	qctx, cancel := pg.withTimeout(ctx)
	defer cancel()

	pg.columns, err = metadata.GetTableColumns(qctx, pool, schema, opts.Table)
	if err != nil {
		err = pg.explain(ctx, err)
		pool.Close()
		return nil, err
	}

	opts.Logger.Info(ctx, "opened table", "conn", opts.Connection.String(), "table", pg.Name(), "columns", len(pg.columns))
	return pg, nil
}

// Name returns the schema-qualified table name
func (pg *Postgres) Name() string {
	return pg.schema + "." + pg.table
}

// Columns returns the table's columns
func (pg *Postgres) Columns() []models.QueryColumn {
	return pg.columns
}

// Close closes the pool
func (pg *Postgres) Close() {
	pg.pool.Close()
}

// PageSQL returns the statement Page runs for the view
func (pg *Postgres) PageSQL(view models.View, offset, limit int) (string, []any, error) {
	b := filter.NewBuilder(filter.Postgres, pg.columns)
	return b.BuildSelect(filter.Qualified(pg.schema, pg.table), view, offset, limit)
}

// Page fetches one page of rows under the view
func (pg *Postgres) Page(ctx context.Context, view models.View, offset, limit int) (*models.TableData, error) {
	ctx, cancel := pg.withTimeout(ctx)
	defer cancel()

	return metadata.QueryTableData(ctx, pg.pool, pg.schema, pg.table, pg.columns, view, offset, limit)
}

// DistinctValues lists distinct values of a column as text
func (pg *Postgres) DistinctValues(ctx context.Context, fieldKey string, limit int) ([]string, error) {
	ctx, cancel := pg.withTimeout(ctx)
	defer cancel()

	return metadata.QueryDistinctValues(ctx, pg.pool, pg.schema, pg.table, pg.columns, fieldKey, limit)
}

func (pg *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if pg.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, pg.timeout)
}

// explain adds the tables of the schema to a failed metadata load
func (pg *Postgres) explain(ctx context.Context, err error) error {
	tables, lerr := metadata.ListTables(ctx, pg.pool, pg.schema)
	if lerr != nil || len(tables) == 0 {
		return err
	}

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return errors.Wrapf(err, "tables in %s: %v", pg.schema, names)
}
