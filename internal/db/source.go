package db

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/duck"
	"github.com/rebeliceyang/omnipg/internal/logging"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// Source is a browsable table
type Source interface {
	// Name identifies the source in history and saved views
	Name() string
	Columns() []models.QueryColumn
	DistinctValues(ctx context.Context, fieldKey string, limit int) ([]string, error)
	Page(ctx context.Context, view models.View, offset, limit int) (*models.TableData, error)
	PageSQL(view models.View, offset, limit int) (string, []any, error)
	Close()
}

// Options selects and configures a source. A non-empty File wins over
// the connection.
type Options struct {
	File         string
	Connection   models.ConnectionConfig
	Schema       string
	Table        string
	PoolSize     int32
	QueryTimeout time.Duration
	Logger       logging.Logger
}

// Open opens the source described by opts
func Open(ctx context.Context, opts Options) (Source, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	if opts.File != "" {
		return duck.Open(ctx, opts.File, opts.Logger)
	}

	if opts.Table == "" {
		return nil, errors.New("no table given: pass --table or --file")
	}
	return OpenPostgres(ctx, opts)
}
