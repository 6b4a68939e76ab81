package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_Empty(t *testing.T) {
	log := FromContext(context.Background())
	require.NotNil(t, log)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
	assert.Equal(t, Scope{}, ScopeFrom(context.Background()))
}

func TestWithScope_MergesAndTags(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	ctx = WithScope(ctx, Scope{RequestID: "req-1"})
	ctx = WithScope(ctx, Scope{RestaurantID: "rest-9", UserID: "user-3"})

	assert.Equal(t, Scope{RequestID: "req-1", RestaurantID: "rest-9", UserID: "user-3"}, ScopeFrom(ctx))

	FromContext(ctx).Info("order confirmed")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "rest-9", fields["restaurant_id"])
	assert.Equal(t, "user-3", fields["user_id"])
}

func TestWithContext_KeepsScope(t *testing.T) {
	ctx := WithScope(context.Background(), Scope{RestaurantID: "rest-1"})
	ctx = WithContext(ctx, zap.NewNop())
	assert.Equal(t, "rest-1", ScopeFrom(ctx).RestaurantID)
}

func TestFromContext_TraceIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx = trace.ContextWithSpanContext(ctx, sc)

	FromContext(ctx).Info("printing ticket")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.Equal(t, sc.SpanID().String(), fields["span_id"])
}
