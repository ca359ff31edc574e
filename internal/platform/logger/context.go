package logger

import (
	"context"
	"log/slog"
)

// loggerKey is the context key type for the request-scoped logger.
type loggerKey struct{}

// WithLogger returns a new context carrying the given logger.
// Middleware uses this to attach a logger enriched with request attributes
// (e.g., trace ID) so downstream code logs with the same correlation data.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the logger from the context, falling back to
// slog.Default() if none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, falling back
// to the provided default. Components hold their own component-tagged
// logger and pass it here so context-free calls stay attributed.
func FromContextOrDefault(ctx context.Context, def *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	if def != nil {
		return def
	}
	return slog.Default()
}
