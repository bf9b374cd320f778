package logger

import (
	"io"
	"log/slog"
)

// Option configures a jarvis logger built by New.
type Option func(*config)

// WithDebug switches between Debug (the --debug flag) and Info.
func WithDebug(debug bool) Option {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return WithLevel(level)
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithPretty selects the charmbracelet/log handler used by the interactive
// commands (chat, knowledge, serve on a terminal).
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler, as used for serve --log-file. It wins
// over WithPretty.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter sends records to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters sends every record to each of ws.
func WithWriters(ws ...io.Writer) Option {
	return func(c *config) { c.writers = ws }
}
