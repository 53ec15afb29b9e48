package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

// LoggerKey is the context key for the logger
const LoggerKey contextKey = "logger"

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger
// if none is attached
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRunID stamps an aggregation run id onto the context's logger so
// every log line below this point can be correlated to one run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With(zap.String("run_id", runID)))
}

// WithUserID stamps the acting user's id onto the context's logger.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With(zap.String("user_id", userID)))
}
