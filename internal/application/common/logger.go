package common

import (
	"context"
	"log"
)

// Logger carries run-scoped log lines out of the application layer. The
// optimizer logs pipeline steps through it so callers decide where lines
// land (stdout for the CLI, the run record for the API).
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing the logger through context.
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op
// logger if not found.
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return &noOpLogger{}
}

type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {
}

// NopLogger returns a logger that discards everything. Adapters fall back to
// it when constructed without one.
func NopLogger() Logger {
	return &noOpLogger{}
}

// StdLogger writes through the standard log package, one line per entry.
type StdLogger struct{}

func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	if len(metadata) == 0 {
		log.Printf("[%s] %s", level, message)
		return
	}
	log.Printf("[%s] %s %v", level, message, metadata)
}
