package vcstore

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with vcstore-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
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

// WithID adds a vector id field to the logger.
func (l *Logger) WithID(id uint32) *Logger {
	return &Logger{Logger: l.Logger.With("id", id)}
}

// WithCluster adds a cluster id field to the logger.
func (l *Logger) WithCluster(cid uint32) *Logger {
	return &Logger{Logger: l.Logger.With("cluster_id", cid)}
}

// LogStore logs a store_vector operation.
func (l *Logger) LogStore(ctx context.Context, id uint32, clusterID uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store_vector failed", "id", id, "error", err)
	} else {
		l.DebugContext(ctx, "store_vector completed", "id", id, "cluster_id", clusterID)
	}
}

// LogRetrieve logs a retrieve_vector operation.
func (l *Logger) LogRetrieve(ctx context.Context, id uint32, found bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "retrieve_vector failed", "id", id, "error", err)
	} else {
		l.DebugContext(ctx, "retrieve_vector completed", "id", id, "found", found)
	}
}

// LogSearch logs a find_similar operation.
func (l *Logger) LogSearch(ctx context.Context, k, candidatesScanned, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "find_similar failed", "k", k, "error", err)
	} else {
		l.DebugContext(ctx, "find_similar completed",
			"k", k,
			"candidates_scanned", candidatesScanned,
			"results", resultsFound,
		)
	}
}

// LogDelete logs a delete_vector operation.
func (l *Logger) LogDelete(ctx context.Context, id uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete_vector failed", "id", id, "error", err)
	} else {
		l.DebugContext(ctx, "delete_vector completed", "id", id)
	}
}

// LogMaintenance logs a perform_maintenance operation.
func (l *Logger) LogMaintenance(ctx context.Context, changed bool, relocated, failed int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "perform_maintenance failed", "error", err)
	} else if failed > 0 {
		l.WarnContext(ctx, "perform_maintenance completed with per-entry failures",
			"rebalanced", changed,
			"relocated", relocated,
			"failed", failed,
		)
	} else {
		l.InfoContext(ctx, "perform_maintenance completed",
			"rebalanced", changed,
			"relocated", relocated,
		)
	}
}

// LogPersist logs a save_index/load_index operation.
func (l *Logger) LogPersist(ctx context.Context, op, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, op+" failed", "path", path, "error", err)
	} else {
		l.InfoContext(ctx, op+" completed", "path", path)
	}
}
