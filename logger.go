package simspace

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with simspace-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKind adds an object kind field to the logger.
func (l *Logger) WithKind(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind),
	}
}

// WithPath adds a datafile path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// LogLoad logs a datafile load operation.
func (l *Logger) LogLoad(ctx context.Context, path string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "datafile load failed",
			"path", path,
			"loaded", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "datafile loaded",
			"path", path,
			"count", count,
		)
	}
}

// LogStore logs a datafile store operation.
func (l *Logger) LogStore(ctx context.Context, path string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "datafile store failed",
			"path", path,
			"stored", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "datafile stored",
			"path", path,
			"count", count,
		)
	}
}

// LogOracleStatus logs the loaded/not-loaded status of the external
// similarity oracle, typically at process start.
func (l *Logger) LogOracleStatus(ctx context.Context, available bool) {
	if available {
		l.InfoContext(ctx, "similarity oracle loaded")
	} else {
		l.WarnContext(ctx, "similarity oracle unavailable, face distances will fail")
	}
}
