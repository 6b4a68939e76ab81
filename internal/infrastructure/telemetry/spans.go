package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/restaurant/backend"

// Attribute keys shared by spans and metrics.
var (
	AttrRestaurantID    = attribute.Key("restaurant.id")
	AttrOrderID         = attribute.Key("order.id")
	AttrOrderNumber     = attribute.Key("order.number")
	AttrOrderStatus     = attribute.Key("order.status")
	AttrOrderStatusFrom = attribute.Key("order.status_from")
	AttrCustomerID      = attribute.Key("customer.id")
	AttrItemCount       = attribute.Key("order.item_count")
	AttrPaymentMethod   = attribute.Key("payment.method")
	AttrPaymentStatus   = attribute.Key("payment.status")

	AttrHTTPMethod     = attribute.Key("http.request.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.response.status_code")

	AttrDBOperation = attribute.Key("db.operation.name")
	AttrDBTable     = attribute.Key("db.collection.name")
)

// HTTPDurationBuckets are seconds, tuned for API handlers.
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// DBDurationBuckets are seconds, tuned for single statements.
var DBDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

// StartServiceSpan opens an internal span named "<service>.<operation>".
func StartServiceSpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks span failed with err. Nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
