package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "idforge/internal/core/context"
)

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}

func TestFromContext_AddsTraceAndClient(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), base)
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})
	ctx = appctx.WithClient(ctx, &appctx.ClientContext{ClientID: "lims"})

	Info(ctx, "identifier issued", "identifier", "AAA00015")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "lims", fields["client_id"])
	assert.Equal(t, "AAA00015", fields["identifier"])
}

func TestNewNop(t *testing.T) {
	l := NewNop().WithComponent("test").With("k", "v")
	l.Infow("discarded")
}

func TestNew_Fields(t *testing.T) {
	l, err := New(Config{
		Level:       "debug",
		OutputPaths: []string{"stderr"},
		Fields:      map[string]any{"service": "idforge"},
	})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestWithContext_Empty(t *testing.T) {
	l := NewNop()
	assert.Same(t, l, l.WithContext(context.Background()))
}
