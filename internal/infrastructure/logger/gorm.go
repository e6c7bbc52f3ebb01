package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger bridges GORM's logging interface onto zap. Record-not-found
// is never logged as an error: it is an expected outcome the repositories
// translate into a domain error.
type GormLogger struct {
	l             *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a query logs as a warning
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(g *GormLogger) {
		g.slowThreshold = d
	}
}

// NewGormLogger creates a GormLogger on top of the given zap logger
func NewGormLogger(l *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	g := &GormLogger{
		l:             l,
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LogMode implements gormlogger.Interface
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (g *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Info {
		g.l.Sugar().Infof(msg, args...)
	}
}

// Warn implements gormlogger.Interface
func (g *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Warn {
		g.l.Sugar().Warnf(msg, args...)
	}
}

// Error implements gormlogger.Interface
func (g *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= gormlogger.Error {
		g.l.Sugar().Errorf(msg, args...)
	}
}

// Trace implements gormlogger.Interface, logging each executed statement
// with its latency, row count, and the request id when one is in context.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	switch {
	case err != nil && g.level >= gormlogger.Error:
		if errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		g.l.Error("query failed", append(fields, zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		g.l.Warn("slow query", append(fields, zap.Duration("threshold", g.slowThreshold))...)
	case g.level >= gormlogger.Info:
		g.l.Debug("query", fields...)
	}
}

// MapGormLogLevel converts the service log level into a GORM log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
