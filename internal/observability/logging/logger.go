package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a structured logger writing to stdout.
// LOG_LEVEL selects the level (debug, info, warn, error; default info) and
// LOG_FORMAT=text switches from JSON to the human-readable text handler.
func NewLogger() *slog.Logger {
	return New(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// New creates a logger writing to w with the given level and format names.
func New(w io.Writer, level, format string) *slog.Logger {
	logLevel := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: logLevel,
		// Add source code location when debugging
		AddSource: logLevel <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRunID returns a logger tagged with run_id and a context carrying both.
func WithRunID(ctx context.Context, logger *slog.Logger, runID string) (context.Context, *slog.Logger) {
	if runID == "" {
		return WithLogger(ctx, logger), logger
	}
	tagged := logger.With(slog.String("run_id", runID))
	ctx = context.WithValue(ctx, runIDContextKey, runID)
	return WithLogger(ctx, tagged), tagged
}

// RunIDFromContext returns the run identifier stored by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDContextKey).(string)
	return id
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const (
	loggerContextKey contextKey = "logger"
	runIDContextKey  contextKey = "run_id"
)
