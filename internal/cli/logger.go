package cli

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger writing to w. Verbosity maps -v counts
// to levels: 0 warn, 1 info, 2+ debug. quiet limits output to errors.
func NewLogger(w io.Writer, verbosity int, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
