package roadnet

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/roadnet/geo"
)

// Logger wraps slog.Logger with roadnet-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithNetwork adds the snapshot name to every record.
func (l *Logger) WithNetwork(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("network", name),
	}
}

// WithRequestID tags records of one API request.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("request_id", id),
	}
}

// LogRoute logs a route computation.
func (l *Logger) LogRoute(ctx context.Context, from, to geo.Coordinate, distance float32, took time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "route failed",
			"from", from,
			"to", to,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "route completed",
		"from", from,
		"to", to,
		"distance_m", distance,
		"took", took,
	)
}

// LogBatchRoute logs a batch of route computations.
func (l *Logger) LogBatchRoute(ctx context.Context, count, failed int, took time.Duration) {
	if failed > 0 {
		l.WarnContext(ctx, "batch route completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
			"took", took,
		)
		return
	}
	l.InfoContext(ctx, "batch route completed",
		"count", count,
		"took", took,
	)
}

// LogLoad logs loading a network snapshot.
func (l *Logger) LogLoad(ctx context.Context, name string, vertices, edges uint32, zeroCopy bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "network load failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "network loaded",
		"name", name,
		"vertices", vertices,
		"edges", edges,
		"zero_copy", zeroCopy,
	)
}

// LogSave logs writing a network snapshot.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "network save failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "network saved",
		"name", name,
		"bytes", bytes,
	)
}

// LogScores logs resolving raw samples into edge scores.
func (l *Logger) LogScores(ctx context.Context, samples, assigned, duplicates, unresolved int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "score processing failed",
			"samples", samples,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "scores processed",
		"samples", samples,
		"assigned", assigned,
		"duplicates", duplicates,
		"unresolved", unresolved,
	)
}
