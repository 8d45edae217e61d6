package output

import (
	"io"
	"log/slog"
)

// NewSlogLogger builds the structured logger used by library packages.
// format is "text" or "json"; unknown levels fall back to info.
func NewSlogLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
