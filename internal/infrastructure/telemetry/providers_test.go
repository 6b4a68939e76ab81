package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_Disabled(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	p, err := telemetry.Setup(context.Background(), telemetry.Config{ServiceName: "restaurant-api"}, zap.New(core))
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Meter("http.server"))
	assert.Equal(t, 1, logs.FilterMessage("Telemetry export disabled").Len())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_DisabledBridgeKeepsBaseLogger(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), telemetry.Config{}, nil)
	require.NoError(t, err)

	base := zap.NewNop()
	assert.Same(t, base, p.BridgeLogger(base, zapcore.InfoLevel))
}

func TestSetup_Enabled(t *testing.T) {
	cfg := telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "127.0.0.1:4317",
		Insecure:          true,
		ServiceName:       "restaurant-api",
		SamplingRatio:     0.5,
		MetricInterval:    time.Hour,
		SpanProfiles:      true,
	}

	// Exporters dial lazily, so no collector has to be listening.
	p, err := telemetry.Setup(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	counter, err := p.Meter("test").Int64Counter("restaurant_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	core, observed := observer.New(zapcore.DebugLevel)
	bridged := p.BridgeLogger(zap.New(core), zapcore.WarnLevel)
	bridged.Info("kept locally")
	assert.Equal(t, 1, observed.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = p.Shutdown(ctx)
}
