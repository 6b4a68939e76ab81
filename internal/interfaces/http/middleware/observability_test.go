package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func asStaff(restaurantID, userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(RestaurantIDKey, restaurantID)
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestTracing(t *testing.T) {
	recorder := recordSpans(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Tracing("restaurant-api")...)
	r.Use(asStaff("rest-1", "user-1"), StaffContext())
	r.GET("/api/v1/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/orders/:id/ticket", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/orders/42", "/api/v1/orders/42/ticket", "/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(RequestIDHeader, "req-"+path[len(path)-2:])
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "GET /api/v1/orders/:id", ok.Name())
	assert.Equal(t, "req-42", spanAttr(ok, "request.id"))
	assert.Equal(t, "rest-1", spanAttr(ok, "restaurant.id"))
	assert.Equal(t, "user-1", spanAttr(ok, "user.id"))
	assert.NotEqual(t, codes.Error, ok.Status().Code)

	conflict := spans[1]
	assert.Equal(t, codes.Error, conflict.Status().Code)
	assert.Equal(t, "Conflict", conflict.Status().Description)
}

func TestStaffContext_ProfilingLabels(t *testing.T) {
	var route, restaurant string
	r := gin.New()
	r.Use(asStaff("rest-9", "user-2"), StaffContext())
	r.GET("/api/v1/dashboard/stats", func(c *gin.Context) {
		route, _ = pprof.Label(c.Request.Context(), "route")
		restaurant, _ = pprof.Label(c.Request.Context(), "restaurant_id")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil))

	assert.Equal(t, "/api/v1/dashboard/stats", route)
	assert.Equal(t, "rest-9", restaurant)
}

func TestStaffContext_SkipsHealth(t *testing.T) {
	var labelled bool
	r := gin.New()
	r.Use(StaffContext())
	r.GET("/health", func(c *gin.Context) {
		_, labelled = pprof.Label(c.Request.Context(), "route")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.False(t, labelled)
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("http.server")

	metrics, err := HTTPMetrics(meter)
	require.NoError(t, err)

	r := gin.New()
	r.Use(metrics, asStaff("rest-1", "user-1"))
	r.POST("/api/v1/orders/:id/status", func(c *gin.Context) { c.String(http.StatusOK, "confirmed") })

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id+"/status", strings.NewReader(`{"status":"confirmed"}`))
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	total, ok := byName["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	routes := map[string]int64{}
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		routes[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), routes["/api/v1/orders/:id/status"])
	assert.Equal(t, int64(1), routes["unmatched"])

	assert.Contains(t, byName, "http_server_request_duration_seconds")
	assert.Contains(t, byName, "http_server_request_size_bytes")
	assert.Contains(t, byName, "http_server_response_size_bytes")

	active, ok := byName["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}
