// Package logger provides opinionated logging capabilities for the jarvis system
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
)

// config is assembled from Options by New.
type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	writers []io.Writer
}

// New builds a *slog.Logger. Without options it writes human-readable text
// records at Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer
	switch len(c.writers) {
	case 0:
		w = os.Stdout
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	handlerOpts := &slog.HandlerOptions{Level: c.level}

	switch {
	case c.json:
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	case c.pretty:
		return slog.New(charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
		}))
	default:
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
}

// Nop returns a logger that discards every record.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrNop returns l, or a Nop logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// ComponentKey is the attribute naming the subsystem that logged a record.
const ComponentKey = "component"

// Component returns l (or Nop) tagged with the component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	return OrNop(l).With(ComponentKey, name)
}

// OpenFile opens path for appending JSON log records, creating parent
// directories as needed. The caller closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
