package duck

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/pkg/errors"

	"github.com/rebeliceyang/omnipg/internal/db/query"
	"github.com/rebeliceyang/omnipg/internal/filter"
	"github.com/rebeliceyang/omnipg/internal/logging"
	"github.com/rebeliceyang/omnipg/internal/models"
)

// TableName is the in-memory table a loaded file becomes
const TableName = "data"

// Duck serves a JSON or CSV file through an in-memory DuckDB
type Duck struct {
	db      *sql.DB
	logger  logging.Logger
	path    string
	columns []models.QueryColumn
}

// Open loads the file at path into a fresh in-memory database
func Open(ctx context.Context, path string, lgr logging.Logger) (*Duck, error) {
	if lgr == nil {
		lgr = logging.Discard()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open memo duck")
	}

	dk := &Duck{
		db:     db,
		logger: lgr,
		path:   path,
	}

	if err := dk.load(ctx); err != nil {
		db.Close()
		return nil, err
	}

	dk.columns, err = dk.getColumns(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	lgr.Info(ctx, "loaded file", "path", path, "columns", len(dk.columns))
	return dk, nil
}

// Name returns the base name of the loaded file
func (dk *Duck) Name() string {
	return filepath.Base(dk.path)
}

// Columns returns the columns of the loaded table
func (dk *Duck) Columns() []models.QueryColumn {
	return dk.columns
}

// Close releases the database
func (dk *Duck) Close() {
	dk.db.Close()
}

// PageSQL returns the statement Page runs for the view
func (dk *Duck) PageSQL(view models.View, offset, limit int) (string, []any, error) {
	return dk.builder().BuildSelect(quoteTable(), view, offset, limit)
}

// Page fetches one page of rows under the view
func (dk *Duck) Page(ctx context.Context, view models.View, offset, limit int) (*models.TableData, error) {
	b := dk.builder()

	countSQL, countArgs, err := b.BuildCount(quoteTable(), view)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := dk.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "failed to count rows")
	}

	pageSQL, args, err := b.BuildSelect(quoteTable(), view, offset, limit)
	if err != nil {
		return nil, err
	}

	rows, err := dk.db.QueryContext(ctx, pageSQL, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query rows")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cols from query rows")
	}

	data := &models.TableData{
		Columns:   cols,
		Rows:      [][]string{},
		TotalRows: total,
	}
	for rows.Next() {
		vals, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = query.FormatValue(v)
		}
		data.Rows = append(data.Rows, row)
	}

	return data, errors.Wrap(rows.Err(), "error iterating rows")
}

// DistinctValues lists distinct values of a column as text
func (dk *Duck) DistinctValues(ctx context.Context, fieldKey string, limit int) ([]string, error) {
	stmt, err := dk.builder().BuildDistinct(quoteTable(), fieldKey, limit)
	if err != nil {
		return nil, err
	}

	rows, err := dk.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query distinct values of %s", fieldKey)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, "failed to scan value")
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	return values, errors.Wrap(rows.Err(), "error iterating values")
}

// unexported

func (dk *Duck) builder() *filter.Builder {
	return filter.NewBuilder(filter.DuckDB, dk.columns)
}

func quoteTable() string {
	return filter.Qualified("", TableName)
}

func (dk *Duck) load(ctx context.Context) error {
	if _, err := readerFor(innerName(dk.path)); err != nil {
		return err
	}

	staged, cleanup, err := stage(dk.path)
	if err != nil {
		return err
	}
	// the table is materialised, so staged files are not needed after load
	defer cleanup()

	reader, err := readerFor(staged)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s('%s')",
		quoteTable(), reader, strings.ReplaceAll(staged, "'", "''"))

	_, err = dk.db.ExecContext(ctx, stmt)
	return errors.Wrapf(err, "failed to load %s", dk.path)
}

func readerFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		return "read_json_auto", nil
	case ".csv", ".tsv", ".xlsx":
		return "read_csv_auto", nil
	}
	return "", errors.Errorf("unsupported file type %q", filepath.Ext(path))
}

func (dk *Duck) getColumns(ctx context.Context) ([]models.QueryColumn, error) {
	rows, err := dk.db.QueryContext(ctx, `
		SELECT column_name, data_type, is_nullable = 'YES'
		FROM information_schema.columns
		WHERE table_name = ?
		ORDER BY ordinal_position
	`, TableName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query schema")
	}
	defer rows.Close()

	var columns []models.QueryColumn
	for rows.Next() {
		var name, dataType string
		var nullable bool
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, errors.Wrap(err, "failed to scan field")
		}
		columns = append(columns, columnFor(name, dataType, nullable))
	}
	return columns, errors.Wrap(rows.Err(), "error iterating fields")
}

// columnFor maps a DuckDB column; nested types are only searchable as text
func columnFor(name, dataType string, nullable bool) models.QueryColumn {
	col := models.QueryColumn{
		Name:         name,
		ShortCaption: models.CaptionFor(name),
		FieldKey:     name,
		DataType:     dataType,
		JSONType:     models.JSONTypeFor(dataType),
		Nullable:     nullable,
	}

	upper := strings.ToUpper(dataType)
	switch {
	case strings.HasSuffix(upper, "[]"):
		col.JSONType = models.JSONString
		col.MultiValue = true
	case strings.HasPrefix(upper, "STRUCT"), strings.HasPrefix(upper, "MAP"),
		strings.HasPrefix(upper, "JSON"), strings.HasPrefix(upper, "INTERVAL"):
		col.JSONType = models.JSONString
	}
	return col
}

func scanRow(rows *sql.Rows, columnCount int) ([]any, error) {
	vals := make([]any, columnCount)
	ptrs := make([]any, columnCount)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := rows.Scan(ptrs...)
	return vals, err
}
