package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandlers() Handlers {
	return Handlers{
		System:     handler.NewSystemHandler("test", nil, nil),
		Auth:       handler.NewAuthHandler(nil),
		Onboarding: handler.NewOnboardingHandler(nil),
		Public:     handler.NewPublicHandler(nil, nil),
		Realtime:   handler.NewRealtimeHandler(nil, nil),
		Order:      handler.NewOrderHandler(nil),
		Ticket:     handler.NewTicketHandler(nil),
		Menu:       handler.NewMenuHandler(nil),
		Customer:   handler.NewCustomerHandler(nil),
		Dashboard:  handler.NewDashboardHandler(nil),
		Restaurant: handler.NewRestaurantHandler(nil),
		Staff:      handler.NewStaffHandler(nil),
	}
}

func TestRegisterAPI_Routes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))
	RegisterAPI(r, testHandlers(), Guards{})
	r.Setup()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"POST /api/v1/onboarding",
		"POST /api/v1/onboarding/validate",
		"GET /api/v1/public/restaurants/:id/menu",
		"GET /api/v1/public/restaurants/:id/menu/popular",
		"POST /api/v1/public/restaurants/:id/orders",
		"POST /api/v1/public/checkout/validate",
		"GET /api/v1/public/orders/:number",
		"GET /api/v1/public/orders/:number/stream",
		"GET /api/v1/orders",
		"GET /api/v1/orders/today",
		"GET /api/v1/orders/board",
		"GET /api/v1/orders/stats",
		"GET /api/v1/orders/:id",
		"POST /api/v1/orders/:id/advance",
		"PUT /api/v1/orders/:id/status",
		"POST /api/v1/orders/:id/cancel",
		"PUT /api/v1/orders/:id/payment-status",
		"POST /api/v1/orders/:id/ticket",
		"GET /api/v1/menu/categories",
		"POST /api/v1/menu/categories",
		"PUT /api/v1/menu/categories/:id",
		"DELETE /api/v1/menu/categories/:id",
		"GET /api/v1/menu/items",
		"POST /api/v1/menu/items",
		"GET /api/v1/menu/items/available",
		"GET /api/v1/menu/full",
		"PUT /api/v1/menu/items/:id",
		"DELETE /api/v1/menu/items/:id",
		"PUT /api/v1/menu/items/:id/availability",
		"POST /api/v1/menu/items/:id/image",
		"GET /api/v1/customers",
		"GET /api/v1/customers/stats",
		"GET /api/v1/customers/top",
		"GET /api/v1/customers/:id",
		"GET /api/v1/dashboard/stats",
		"GET /api/v1/restaurant",
		"PUT /api/v1/restaurant",
		"GET /api/v1/restaurant/whatsapp",
		"PUT /api/v1/restaurant/whatsapp",
		"GET /api/v1/restaurant/whatsapp/auto-reply",
		"POST /api/v1/restaurant/whatsapp/test",
		"GET /api/v1/staff",
		"POST /api/v1/staff",
		"DELETE /api/v1/staff/:id",
		"GET /api/v1/realtime/stream",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestRegisterAPI_ManagerGuard(t *testing.T) {
	deny := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusForbidden)
	}

	engine := gin.New()
	r := NewRouter(engine)
	RegisterAPI(r, testHandlers(), Guards{Manager: deny})
	r.Setup()

	guarded := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/menu/categories"},
		{http.MethodDelete, "/api/v1/menu/items/7b0d8c1e-3f5a-4c2e-9d61-0a2b3c4d5e6f"},
		{http.MethodPut, "/api/v1/restaurant"},
		{http.MethodPut, "/api/v1/restaurant/whatsapp"},
		{http.MethodGet, "/api/v1/staff"},
		{http.MethodPost, "/api/v1/staff"},
	}
	for _, tc := range guarded {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestRegisterAPI_PermissionGuards(t *testing.T) {
	var asked []string
	perm := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			asked = append(asked, name)
			c.AbortWithStatus(http.StatusForbidden)
		}
	}

	engine := gin.New()
	r := NewRouter(engine)
	RegisterAPI(r, testHandlers(), Guards{Permission: perm})
	r.Setup()

	tests := []struct {
		method, path, permission string
	}{
		{http.MethodGet, "/api/v1/orders/board", "orders"},
		{http.MethodGet, "/api/v1/customers", "customers"},
		{http.MethodGet, "/api/v1/dashboard/stats", "reports"},
		{http.MethodPut, "/api/v1/menu/items/7b0d8c1e-3f5a-4c2e-9d61-0a2b3c4d5e6f/availability", "menu"},
	}
	for _, tt := range tests {
		asked = nil
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusForbidden, w.Code, tt.path)
		assert.Equal(t, []string{tt.permission}, asked, tt.path)
	}
}

func TestRegisterAPI_AuthLimitOnlyOnCredentials(t *testing.T) {
	calls := 0
	counter := func(c *gin.Context) {
		calls++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}

	engine := gin.New()
	r := NewRouter(engine)
	RegisterAPI(r, testHandlers(), Guards{AuthLimit: counter})
	r.Setup()

	for _, path := range []string{"/api/v1/auth/login", "/api/v1/auth/refresh"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader("{}")))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestRouterUse_AppliesToAPIOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r := NewRouter(engine)
	r.Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) })
	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Register(group)
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicPaths(t *testing.T) {
	paths := PublicPaths()
	require.NotEmpty(t, paths)
	assert.Contains(t, paths, "/auth/login")
	assert.NotContains(t, paths, "/auth/logout")
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).BasePath())
}
