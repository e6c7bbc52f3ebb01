package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

// WithContext stores a logger in the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the context's logger, or a no-op logger when
// none was stored.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns a logger tagged with it.
// The id stays retrievable via GetRequestID so SQL trace logs can carry it.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	tagged := l.With(zap.String("request_id", requestID))
	return WithContext(ctx, tagged), tagged
}

// WithTenantID returns a context whose logger is tagged with the tenant id
func WithTenantID(ctx context.Context, l *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	tagged := l.With(zap.String("tenant_id", tenantID))
	return WithContext(ctx, tagged), tagged
}

// WithUserID returns a context whose logger is tagged with the user id
func WithUserID(ctx context.Context, l *zap.Logger, userID string) (context.Context, *zap.Logger) {
	tagged := l.With(zap.String("user_id", userID))
	return WithContext(ctx, tagged), tagged
}

// GetRequestID returns the request id stored by WithRequestID, or ""
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
