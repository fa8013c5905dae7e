// Package logging provides the contextual, structured logger used across
// omnipg. The TUI owns stdout, so logs go to a file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger specifies a contextual, structured logger.
type Logger interface {
	Info(ctx context.Context, msg string, kv ...any)
	Warn(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, err error, kv ...any)
}

// SlogLogger implements Logger on top of log/slog
type SlogLogger struct {
	log *slog.Logger
}

// New creates a text logger writing to w
func New(w io.Writer, level slog.Level) *SlogLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogLogger{log: slog.New(handler)}
}

// Discard returns a logger that drops everything
func Discard() *SlogLogger {
	return New(io.Discard, slog.LevelError)
}

func (l *SlogLogger) Info(ctx context.Context, msg string, kv ...any) {
	l.log.InfoContext(ctx, msg, kv...)
}

func (l *SlogLogger) Warn(ctx context.Context, msg string, kv ...any) {
	l.log.WarnContext(ctx, msg, kv...)
}

func (l *SlogLogger) Error(ctx context.Context, msg string, err error, kv ...any) {
	l.log.ErrorContext(ctx, msg, append(kv, "error", err)...)
}

// ParseLevel maps a config string onto a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// OpenLog opens path for appending, falling back to io.Discard
func OpenLog(path string, mode os.FileMode) io.Writer {
	if path == "" {
		return io.Discard
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err.Error())
		return io.Discard
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s\n", err.Error())
		return io.Discard
	}
	return file
}

// CloseLog closes w if it is a file
func CloseLog(w io.Writer) {
	if f, ok := w.(*os.File); ok {
		_ = f.Close()
	}
}
