package telemetry_test

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStartProfiler_Disabled(t *testing.T) {
	p, err := telemetry.StartProfiler(telemetry.ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Running())
	assert.NoError(t, p.Stop())
}

func TestStartProfiler_RequiresAddress(t *testing.T) {
	_, err := telemetry.StartProfiler(telemetry.ProfilerConfig{Enabled: true}, nil)
	assert.Error(t, err)
}

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("x", 300)
	labels := map[string]string{
		telemetry.ProfilingLabelRoute:     "/api/v1/orders",
		telemetry.ProfilingLabelMethod:    "POST",
		"empty":                           "",
		telemetry.ProfilingLabelOperation: long,
	}

	var called bool
	telemetry.WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		called = true
		route, ok := pprof.Label(ctx, telemetry.ProfilingLabelRoute)
		assert.True(t, ok)
		assert.Equal(t, "/api/v1/orders", route)

		_, ok = pprof.Label(ctx, "empty")
		assert.False(t, ok)

		op, _ := pprof.Label(ctx, telemetry.ProfilingLabelOperation)
		assert.Len(t, op, 128)
	})
	assert.True(t, called)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	ctx := context.Background()
	var got context.Context
	telemetry.WithProfilingLabels(ctx, nil, func(c context.Context) { got = c })
	assert.Equal(t, ctx, got)
}
