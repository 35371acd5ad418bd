package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestCtxZapLogger_TraceIDFromContextValue(t *testing.T) {
	tl := NewTestCtxLogger()
	ctx := WithTraceID(context.Background(), "req-42")

	tl.InfoCtx(ctx, "login", zap.String("user", "ada"))

	assert.True(t, tl.HasLogWithField("INFO", "login", "trace_id", "req-42"))
	assert.True(t, tl.HasLogWithField("INFO", "login", "user", "ada"))
}

func TestCtxZapLogger_TraceIDPrefersSpan(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})

	ctx := trace.ContextWithSpanContext(WithTraceID(context.Background(), "ignored"), sc)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestCtxZapLogger_LevelsAndWith(t *testing.T) {
	tl := NewTestCtxLogger()
	child := tl.With(zap.String("key", "cohorts"))

	child.Debug("debug")
	child.Info("info")
	child.Warn("warn")
	child.Error("error")

	assert.Equal(t, 1, tl.CountLogs("DEBUG"))
	assert.Equal(t, 1, tl.CountLogs("INFO"))
	assert.Equal(t, 1, tl.CountLogs("WARN"))
	assert.Equal(t, 1, tl.CountLogs("ERROR"))
	assert.True(t, tl.HasLogWithField("WARN", "warn", "key", "cohorts"))

	tl.Clear()
	assert.Empty(t, tl.Logs())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().ErrorCtx(context.Background(), "dropped")
	})
}

func TestCaptureStacktrace(t *testing.T) {
	stack := CaptureStacktrace(1, 2)
	assert.Contains(t, stack, "CaptureStacktrace")

	cfg := DefaultManagerConfig()
	assert.True(t, shouldCaptureStacktrace("error", cfg))
	assert.False(t, shouldCaptureStacktrace("warn", cfg))
	cfg.EnableStacktrace = false
	assert.False(t, shouldCaptureStacktrace("error", cfg))
}
