// Package logging builds the structured logger used by the command line tool.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w (stderr if nil) at the given level.
// format is "json" or "text" (default).
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Noop returns a logger that discards everything.
func Noop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithExemplar returns a logger tagged with an exemplar ID.
func WithExemplar(l *slog.Logger, id string) *slog.Logger {
	return l.With("exemplar_id", id)
}

// WithFile returns a logger tagged with an input file path.
func WithFile(l *slog.Logger, path string) *slog.Logger {
	return l.With("file", path)
}
