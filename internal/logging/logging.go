package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a slog.Logger with the provided level and format
// strings. Format "json" selects machine-readable output; anything
// else falls back to the console text handler.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
