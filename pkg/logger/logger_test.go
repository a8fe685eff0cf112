package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "stockledger/internal/core/context"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{zap.New(core).Sugar()}, logs
}

func TestFromContext_AddsTraceAndUser(t *testing.T) {
	l, logs := observed()

	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "alice"})

	Info(ctx, "document confirmed", "code", "IN-1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "alice", fields["user_id"])
	assert.Equal(t, "IN-1", fields["code"])
}

func TestFromContext_NoActor(t *testing.T) {
	l, logs := observed()

	Warn(WithLogger(context.Background(), l), "plain")

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "user_id")
}

func TestSetDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, logs := observed()
	SetDefault(l.WithComponent("test"))

	Error(context.Background(), "boom")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "test", logs.All()[0].ContextMap()["component"])
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}
