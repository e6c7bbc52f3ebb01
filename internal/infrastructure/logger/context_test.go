package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		l, logs := newObservedLogger()
		ctx := WithContext(context.Background(), l)

		FromContext(ctx).Info("stored")

		require.Equal(t, 1, logs.Len())
	})

	t.Run("returns no-op logger when none stored", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		l.Info("dropped silently")
	})
}

func TestWithRequestID(t *testing.T) {
	l, logs := newObservedLogger()

	ctx, tagged := WithRequestID(context.Background(), l, "req-42")
	tagged.Info("tagged entry")

	assert.Equal(t, "req-42", GetRequestID(ctx))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])

	// The tagged logger is also the one stored in the context
	FromContext(ctx).Info("second entry")
	assert.Equal(t, "req-42", logs.All()[1].ContextMap()["request_id"])
}

func TestGetRequestID_Empty(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
}

func TestWithTenantAndUserID(t *testing.T) {
	l, logs := newObservedLogger()

	ctx, _ := WithTenantID(context.Background(), l, "tenant-1")
	ctx, tagged := WithUserID(ctx, FromContext(ctx), "user-9")
	tagged.Info("scoped entry")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "tenant-1", fields["tenant_id"])
	assert.Equal(t, "user-9", fields["user_id"])
}
