package vecknn

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the structured logger used by the engine and its backends.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler logs text at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = stderrHandler(false, slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON records at or above level to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(stderrHandler(true, level))
}

// NewTextLogger logs key=value records at or above level to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(stderrHandler(false, level))
}

// NoopLogger discards every record.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

func stderrHandler(json bool, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// WithBackend adds the backend name (cpu or the device name).
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", name),
	}
}

// WithCallID tags every record of one Search call.
func (l *Logger) WithCallID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("call_id", id),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, batch, queries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"batch", batch,
			"queries", queries,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"batch", batch,
			"queries", queries,
		)
	}
}

// LogFault logs an asynchronous device failure.
func (l *Logger) LogFault(ctx context.Context, device string, err error) {
	l.ErrorContext(ctx, "device fault",
		"device", device,
		"error", err,
	)
}
