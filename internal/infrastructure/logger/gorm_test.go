package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func traceFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("logs queries at debug when level is info", func(t *testing.T) {
		zl, logs := newObservedLogger()
		g := NewGormLogger(zl, gormlogger.Info)

		g.Trace(ctx, time.Now(), traceFn(`SELECT * FROM "purchase_orders"`, 3), nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.DebugLevel, entry.Level)
		assert.Equal(t, "query", entry.Message)
		fields := entry.ContextMap()
		assert.Equal(t, `SELECT * FROM "purchase_orders"`, fields["sql"])
		assert.EqualValues(t, 3, fields["rows"])
	})

	t.Run("logs failures with the error attached", func(t *testing.T) {
		zl, logs := newObservedLogger()
		g := NewGormLogger(zl, gormlogger.Error)

		g.Trace(ctx, time.Now(), traceFn("UPDATE purchase_orders", 0), assert.AnError)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.ErrorLevel, entry.Level)
		assert.Equal(t, "query failed", entry.Message)
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		zl, logs := newObservedLogger()
		g := NewGormLogger(zl, gormlogger.Error)

		g.Trace(ctx, time.Now(), traceFn("SELECT 1", 0), gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow queries log as warnings", func(t *testing.T) {
		zl, logs := newObservedLogger()
		g := NewGormLogger(zl, gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		g.Trace(ctx, time.Now().Add(-50*time.Millisecond), traceFn("SELECT pg_sleep(1)", 1), nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.WarnLevel, entry.Level)
		assert.Equal(t, "slow query", entry.Message)
	})

	t.Run("silent level drops everything", func(t *testing.T) {
		zl, logs := newObservedLogger()
		g := NewGormLogger(zl, gormlogger.Silent)

		g.Trace(ctx, time.Now(), traceFn("SELECT 1", 1), assert.AnError)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("includes request id from context", func(t *testing.T) {
		zl, logs := newObservedLogger()
		g := NewGormLogger(zl, gormlogger.Info)

		reqCtx, _ := WithRequestID(ctx, zl, "req-7")
		g.Trace(reqCtx, time.Now(), traceFn("SELECT 1", 1), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	zl, logs := newObservedLogger()
	g := NewGormLogger(zl, gormlogger.Info)

	silenced := g.LogMode(gormlogger.Silent)
	silenced.Trace(context.Background(), time.Now(), traceFn("SELECT 1", 1), nil)
	assert.Equal(t, 0, logs.Len())

	// The original keeps its level
	g.Trace(context.Background(), time.Now(), traceFn("SELECT 1", 1), nil)
	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_Leveled(t *testing.T) {
	zl, logs := newObservedLogger()
	g := NewGormLogger(zl, gormlogger.Warn)

	g.Info(context.Background(), "ignored at warn level")
	assert.Equal(t, 0, logs.Len())

	g.Warn(context.Background(), "kept")
	g.Error(context.Background(), "kept too")
	assert.Equal(t, 2, logs.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"unknown": gormlogger.Warn,
	}
	for input, want := range cases {
		assert.Equal(t, want, MapGormLogLevel(input), "level %q", input)
	}
}
