package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "IMAGING_LOG_LEVEL"

// New builds a logger. levelStr is debug, info, warn or error (default
// warn, so a normal run only shows reporter output); format "json"
// selects the JSON handler.
func New(levelStr, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(levelStr)}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Setup installs the default logger on stderr. verbose forces debug;
// otherwise IMAGING_LOG_LEVEL and IMAGING_LOG_FORMAT apply.
func Setup(verbose bool) *slog.Logger {
	level := os.Getenv(EnvLevel)
	if verbose {
		level = "debug"
	}
	l := New(level, os.Getenv("IMAGING_LOG_FORMAT"), os.Stderr)
	slog.SetDefault(l)
	return l
}
