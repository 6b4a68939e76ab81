package router

import (
	"github.com/gin-gonic/gin"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/interfaces/http/handler"
)

// Handlers groups the handlers mounted under the API prefix
type Handlers struct {
	System     *handler.SystemHandler
	Auth       *handler.AuthHandler
	Onboarding *handler.OnboardingHandler
	Public     *handler.PublicHandler
	Realtime   *handler.RealtimeHandler
	Order      *handler.OrderHandler
	Ticket     *handler.TicketHandler
	Menu       *handler.MenuHandler
	Customer   *handler.CustomerHandler
	Dashboard  *handler.DashboardHandler
	Restaurant *handler.RestaurantHandler
	Staff      *handler.StaffHandler
}

// Guards are the per-route middleware of the API. Nil guards are skipped.
type Guards struct {
	// AuthLimit throttles login and refresh
	AuthLimit gin.HandlerFunc
	// Manager restricts menu writes, staff and restaurant settings
	Manager gin.HandlerFunc
	// Permission builds the guard for a staff feature permission
	Permission func(permission string) gin.HandlerFunc
}

func (g Guards) permission(name string) gin.HandlerFunc {
	if g.Permission == nil {
		return nil
	}
	return g.Permission(name)
}

// PublicPaths lists API paths served without a bearer token, relative to
// the API prefix
func PublicPaths() []string {
	return []string{
		"/auth/login",
		"/auth/refresh",
		"/onboarding",
		"/onboarding/validate",
		"/system/info",
	}
}

// PublicPathPrefixes lists API path prefixes served without a bearer token
func PublicPathPrefixes() []string {
	return []string{"/public/"}
}

// RegisterAPI mounts every domain group of the restaurant API on r
func RegisterAPI(r *Router, h Handlers, g Guards) {
	with := func(guard gin.HandlerFunc, fn gin.HandlerFunc) []gin.HandlerFunc {
		if guard == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{guard, fn}
	}
	manager := func(fn gin.HandlerFunc) []gin.HandlerFunc { return with(g.Manager, fn) }

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	r.Register(system)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", with(g.AuthLimit, h.Auth.Login)...)
	authRoutes.POST("/refresh", with(g.AuthLimit, h.Auth.Refresh)...)
	authRoutes.POST("/logout", h.Auth.Logout)
	r.Register(authRoutes)

	onboarding := NewDomainGroup("onboarding", "/onboarding")
	onboarding.POST("", h.Onboarding.Onboard)
	onboarding.POST("/validate", h.Onboarding.ValidateStep)
	r.Register(onboarding)

	public := NewDomainGroup("public", "/public")
	public.GET("/restaurants/:id/menu", h.Public.Menu)
	public.GET("/restaurants/:id/menu/popular", h.Public.Popular)
	public.POST("/restaurants/:id/orders", h.Public.Checkout)
	public.POST("/checkout/validate", h.Public.ValidateCheckoutStep)
	public.GET("/orders/:number", h.Public.Tracking)
	public.GET("/orders/:number/stream", h.Realtime.OrderStream)
	r.Register(public)

	orders := NewDomainGroup("orders", "/orders")
	orders.Use(nonNil(g.permission(restaurant.PermissionOrders))...)
	orders.GET("", h.Order.List)
	orders.GET("/today", h.Order.Today)
	orders.GET("/board", h.Order.Board)
	orders.GET("/stats", h.Order.Stats)
	orders.GET("/:id", h.Order.GetByID)
	orders.POST("/:id/advance", h.Order.Advance)
	orders.PUT("/:id/status", h.Order.UpdateStatus)
	orders.POST("/:id/cancel", h.Order.Cancel)
	orders.PUT("/:id/payment-status", h.Order.UpdatePaymentStatus)
	orders.POST("/:id/ticket", h.Ticket.Print)
	orders.GET("/:id/ticket/preview", h.Ticket.Preview)
	r.Register(orders)

	menu := NewDomainGroup("menu", "/menu")
	menu.GET("/full", h.Menu.FullMenu)
	categories := menu.Group("categories", "/categories")
	categories.GET("", h.Menu.ListCategories)
	categories.POST("", manager(h.Menu.CreateCategory)...)
	categories.PUT("/:id", manager(h.Menu.UpdateCategory)...)
	categories.DELETE("/:id", manager(h.Menu.DeleteCategory)...)
	items := menu.Group("items", "/items")
	items.GET("", h.Menu.ListItems)
	items.GET("/available", h.Menu.AvailableItems)
	items.GET("/:id", h.Menu.GetItem)
	items.POST("", manager(h.Menu.CreateItem)...)
	items.PUT("/:id", manager(h.Menu.UpdateItem)...)
	items.DELETE("/:id", manager(h.Menu.DeleteItem)...)
	items.PUT("/:id/availability", with(g.permission(restaurant.PermissionMenu), h.Menu.SetAvailability)...)
	items.POST("/:id/image", manager(h.Menu.UploadImage)...)
	r.Register(menu)

	customers := NewDomainGroup("customers", "/customers")
	customers.Use(nonNil(g.permission(restaurant.PermissionCustomers))...)
	customers.GET("", h.Customer.List)
	customers.GET("/stats", h.Customer.Stats)
	customers.GET("/top", h.Customer.Top)
	customers.GET("/:id", h.Customer.Get)
	r.Register(customers)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.Use(nonNil(g.permission(restaurant.PermissionReports))...)
	dashboard.GET("/stats", h.Dashboard.Stats)
	r.Register(dashboard)

	restaurant := NewDomainGroup("restaurant", "/restaurant")
	restaurant.GET("", h.Restaurant.Get)
	restaurant.PUT("", manager(h.Restaurant.Update)...)
	restaurant.GET("/whatsapp", h.Restaurant.GetWhatsApp)
	restaurant.PUT("/whatsapp", manager(h.Restaurant.UpdateWhatsApp)...)
	restaurant.GET("/whatsapp/auto-reply", h.Restaurant.AutoReply)
	restaurant.POST("/whatsapp/test", manager(h.Restaurant.TestConnection)...)
	r.Register(restaurant)

	staff := NewDomainGroup("staff", "/staff")
	staff.Use(nonNil(g.Manager)...)
	staff.GET("", h.Staff.List)
	staff.POST("", h.Staff.Invite)
	staff.DELETE("/:id", h.Staff.Deactivate)
	r.Register(staff)

	realtime := NewDomainGroup("realtime", "/realtime")
	realtime.GET("/stream", h.Realtime.Stream)
	r.Register(realtime)
}

func nonNil(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
