package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "OrderService", "PlaceOrder",
		telemetry.AttrOrderNumber.String("PED-2026-00001"),
		telemetry.AttrItemCount.Int(3),
	)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "OrderService.PlaceOrder", ended[0].Name())

	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "PED-2026-00001", attrs["order.number"])
	assert.Equal(t, "3", attrs["order.item_count"])
}

func TestRecordError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "OrderService", "CancelOrder")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("order already delivered"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "order already delivered", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}
