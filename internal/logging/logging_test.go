package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(&buf, slog.LevelInfo)
	ctx := context.Background()

	lgr.Info(ctx, "loaded", "rows", 3)
	lgr.Warn(ctx, "ambiguous token", "input", `a "b `)
	lgr.Error(ctx, "fetch failed", errors.New("boom"), "field", "name")

	out := buf.String()
	assert.Contains(t, out, "msg=loaded rows=3")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "field=name")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestOpenLog(t *testing.T) {
	assert.Equal(t, io.Discard, OpenLog("", 0600))

	path := filepath.Join(t.TempDir(), "logs", "omnipg.log")
	w := OpenLog(path, 0600)
	defer CloseLog(w)

	assert.NotEqual(t, io.Discard, w)
	_, err := w.Write([]byte("hello\n"))
	assert.NoError(t, err)
}
