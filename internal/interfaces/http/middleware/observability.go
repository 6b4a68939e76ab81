package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Routes that are polled constantly and never worth a span or profile label.
var unobservedPaths = map[string]bool{
	"/health":       true,
	"/health/ready": true,
}

// Tracing starts the server span through otelgin, then tags it with the
// request ID and marks 4xx and 5xx responses as errors. Register both
// handlers with Use(Tracing(name)...).
func Tracing(serviceName string) gin.HandlersChain {
	otelMiddleware := otelgin.Middleware(serviceName,
		otelgin.WithGinFilter(func(c *gin.Context) bool {
			return !unobservedPaths[c.Request.URL.Path]
		}),
	)
	return gin.HandlersChain{otelMiddleware, tagServerSpan}
}

// tagServerSpan runs inside the otelgin span, which ends when otelgin's own
// c.Next returns.
func tagServerSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if id := c.GetString(RequestIDKey); id != "" {
		span.SetAttributes(attribute.String("request.id", id))
	}

	c.Next()

	if status := c.Writer.Status(); status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// StaffContext tags the span with the authenticated restaurant and user, and
// runs the rest of the chain under profiling labels for the route and
// restaurant. Register it after the JWT middleware.
func StaffContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID := c.GetString(RestaurantIDKey)

		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() && restaurantID != "" {
			span.SetAttributes(
				telemetry.AttrRestaurantID.String(restaurantID),
				attribute.String("user.id", c.GetString(UserIDKey)),
			)
		}

		path := c.Request.URL.Path
		if unobservedPaths[path] || strings.HasPrefix(path, "/swagger") {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:       c.Request.Method,
			telemetry.ProfilingLabelRoute:        c.FullPath(),
			telemetry.ProfilingLabelRestaurantID: restaurantID,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

var sizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576, 5242880}

type httpInstruments struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
	inFlight     metric.Int64UpDownCounter
}

// HTTPMetrics records request count, latency, body sizes and in-flight
// requests. Routes are labelled by their pattern, so /orders/:id is one series.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	var (
		ins httpInstruments
		err error
	)
	if ins.requests, err = meter.Int64Counter("http_server_request_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if ins.duration, err = meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(telemetry.HTTPDurationBuckets...)); err != nil {
		return nil, err
	}
	if ins.requestSize, err = meter.Int64Histogram("http_server_request_size_bytes",
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...)); err != nil {
		return nil, err
	}
	if ins.responseSize, err = meter.Int64Histogram("http_server_response_size_bytes",
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...)); err != nil {
		return nil, err
	}
	if ins.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests being served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return ins.middleware, nil
}

func (ins *httpInstruments) middleware(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	ins.inFlight.Add(ctx, 1)
	defer ins.inFlight.Add(ctx, -1)

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	routeAttrs := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(c.Request.Method),
		telemetry.AttrHTTPRoute.String(route),
	}
	counted := append(routeAttrs, telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()))
	if restaurantID := c.GetString(RestaurantIDKey); restaurantID != "" {
		counted = append(counted, telemetry.AttrRestaurantID.String(restaurantID))
	}

	ins.requests.Add(ctx, 1, metric.WithAttributes(counted...))
	byRoute := metric.WithAttributes(routeAttrs...)
	ins.duration.Record(ctx, time.Since(start).Seconds(), byRoute)
	if n := c.Request.ContentLength; n > 0 {
		ins.requestSize.Record(ctx, n, byRoute)
	}
	if n := c.Writer.Size(); n > 0 {
		ins.responseSize.Record(ctx, int64(n), byRoute)
	}
}
