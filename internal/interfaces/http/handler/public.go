package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	menuapp "github.com/restaurant/backend/internal/application/menu"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
)

// IdempotencyKeyHeader lets a client retry a checkout without placing it twice
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	defaultPopularLimit  = 6
	maxIdempotencyKeyLen = 128
)

// PublicHandler serves the customer facing menu, checkout and tracking
type PublicHandler struct {
	BaseHandler
	menuService  *menuapp.MenuService
	orderService *orderingapp.OrderService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(menuService *menuapp.MenuService, orderService *orderingapp.OrderService) *PublicHandler {
	return &PublicHandler{
		menuService:  menuService,
		orderService: orderService,
	}
}

// Menu godoc
// @Summary      Public menu
// @Description  Restaurant profile with its active categories and available items
// @Tags         public
// @Produce      json
// @Param        id path string true "Restaurant ID" format(uuid)
// @Success      200 {object} dto.Response{data=menuapp.PublicMenuResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/restaurants/{id}/menu [get]
func (h *PublicHandler) Menu(c *gin.Context) {
	restaurantID, ok := h.parseID(c, "id", "restaurant")
	if !ok {
		return
	}

	resp, err := h.menuService.PublicMenu(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Popular godoc
// @Summary      Popular items
// @Tags         public
// @Produce      json
// @Param        id    path  string true  "Restaurant ID" format(uuid)
// @Param        limit query int    false "Maximum items" default(6)
// @Success      200 {object} dto.Response{data=[]menuapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/restaurants/{id}/menu/popular [get]
func (h *PublicHandler) Popular(c *gin.Context) {
	restaurantID, ok := h.parseID(c, "id", "restaurant")
	if !ok {
		return
	}

	items, err := h.menuService.Popular(c.Request.Context(), restaurantID, queryInt(c, "limit", defaultPopularLimit))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Checkout godoc
// @Summary      Place an order
// @Description  Validates the checkout form, prices the cart from the menu and creates the order. Prices sent by the client are ignored. Repeating a request with the same Idempotency-Key returns the first order.
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        id              path   string                         true  "Restaurant ID" format(uuid)
// @Param        Idempotency-Key header string                         false "Client generated retry key"
// @Param        request         body   orderingapp.PlaceOrderRequest  true  "Checkout form"
// @Success      201 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/restaurants/{id}/orders [post]
func (h *PublicHandler) Checkout(c *gin.Context) {
	restaurantID, ok := h.parseID(c, "id", "restaurant")
	if !ok {
		return
	}

	var req orderingapp.PlaceOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	req.IdempotencyKey = key

	order, err := h.orderService.PlaceOrder(c.Request.Context(), restaurantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ValidateCheckoutStep godoc
// @Summary      Validate one checkout step
// @Tags         public
// @Accept       json
// @Produce      json
// @Param        request body orderingapp.CheckoutStepRequest true "Step and form"
// @Success      200 {object} dto.Response{data=orderingapp.CheckoutStepResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/checkout/validate [post]
func (h *PublicHandler) ValidateCheckoutStep(c *gin.Context) {
	var req orderingapp.CheckoutStepRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, orderingapp.ValidateCheckoutStep(req))
}

// Tracking godoc
// @Summary      Track an order
// @Description  Public order status page looked up by order number
// @Tags         public
// @Produce      json
// @Param        number path string true "Order number"
// @Success      200 {object} dto.Response{data=orderingapp.TrackingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/orders/{number} [get]
func (h *PublicHandler) Tracking(c *gin.Context) {
	resp, err := h.orderService.Tracking(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
