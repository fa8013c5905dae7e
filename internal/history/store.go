package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one applied view of a source
type Entry struct {
	ID        int64
	Source    string
	Params    []string
	Display   string
	TotalRows int64
	Duration  time.Duration
	AppliedAt time.Time
}

// Store manages view history persistence
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore opens or creates the history database at path. maxEntries caps
// the entries kept per source; zero keeps everything.
func NewStore(path string, maxEntries int) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create history directory")
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history %s", path)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create history schema")
	}

	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Add records an applied view. Re-applying the source's latest params only
// refreshes that entry.
func (s *Store) Add(ctx context.Context, e Entry) error {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return errors.Wrap(err, "failed to encode params")
	}
	if e.AppliedAt.IsZero() {
		e.AppliedAt = time.Now()
	}

	last, ok, err := s.Last(ctx, e.Source)
	if err != nil {
		return err
	}
	if ok && equalParams(last.Params, e.Params) {
		_, err = s.db.ExecContext(ctx, `
			UPDATE view_history
			SET display = ?, total_rows = ?, duration_ms = ?, applied_at = ?
			WHERE id = ?`,
			e.Display, e.TotalRows, e.Duration.Milliseconds(), e.AppliedAt.UnixMilli(), last.ID)
		return errors.Wrap(err, "failed to update history")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO view_history
		(source, params, display, total_rows, duration_ms, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Source,
		string(params),
		e.Display,
		e.TotalRows,
		e.Duration.Milliseconds(),
		e.AppliedAt.UnixMilli(),
	)
	if err != nil {
		return errors.Wrap(err, "failed to add history")
	}

	return s.trim(ctx, e.Source)
}

// Recent retrieves the most recent entries of a source, newest first
func (s *Store) Recent(ctx context.Context, source string, limit int) ([]Entry, error) {
	return s.query(ctx, `
		SELECT id, source, params, display, total_rows, duration_ms, applied_at
		FROM view_history
		WHERE source = ?
		ORDER BY id DESC
		LIMIT ?`, source, limit)
}

// Search finds entries of a source whose display text contains text,
// newest first
func (s *Store) Search(ctx context.Context, source, text string, limit int) ([]Entry, error) {
	return s.query(ctx, `
		SELECT id, source, params, display, total_rows, duration_ms, applied_at
		FROM view_history
		WHERE source = ? AND display LIKE ?
		ORDER BY id DESC
		LIMIT ?`, source, "%"+text+"%", limit)
}

// Last returns the latest entry of a source
func (s *Store) Last(ctx context.Context, source string) (Entry, bool, error) {
	entries, err := s.Recent(ctx, source, 1)
	if err != nil || len(entries) == 0 {
		return Entry{}, false, err
	}
	return entries[0], true, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) trim(ctx context.Context, source string) error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM view_history
		WHERE source = ? AND id NOT IN (
			SELECT id FROM view_history WHERE source = ? ORDER BY id DESC LIMIT ?
		)`, source, source, s.maxEntries)
	return errors.Wrap(err, "failed to trim history")
}

func (s *Store) query(ctx context.Context, stmt string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query history")
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var params string
		var durationMs, appliedAt int64

		err := rows.Scan(
			&e.ID,
			&e.Source,
			&params,
			&e.Display,
			&e.TotalRows,
			&durationMs,
			&appliedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan history")
		}
		if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
			return nil, errors.Wrapf(err, "corrupt params in history entry %d", e.ID)
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.AppliedAt = time.UnixMilli(appliedAt)

		entries = append(entries, e)
	}

	return entries, errors.Wrap(rows.Err(), "failed to read history")
}

func equalParams(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
