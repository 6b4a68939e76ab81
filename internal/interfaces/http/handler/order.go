package handler

import (
	"github.com/gin-gonic/gin"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
)

const defaultStatsDays = 30

// OrderHandler serves the staff order board
type OrderHandler struct {
	BaseHandler
	orderService *orderingapp.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *orderingapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List godoc
// @Summary      List orders
// @Description  Newest first, optionally filtered by status
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status" Enums(pending, confirmed, preparing, ready, delivering, delivered, cancelled)
// @Param        search query string false "Order number or customer name"
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Page size" default(50)
// @Success      200 {object} dto.Response{data=[]orderingapp.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var filter orderingapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = orderingapp.DefaultListLimit
	}

	orders, total, err := h.orderService.List(c.Request.Context(), restaurantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Today godoc
// @Summary      Orders of the current day
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]orderingapp.OrderResponse}
// @Security     BearerAuth
// @Router       /orders/today [get]
func (h *OrderHandler) Today(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListToday(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Board godoc
// @Summary      Kanban board
// @Description  Open orders grouped by status column
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=orderingapp.BoardResponse}
// @Security     BearerAuth
// @Router       /orders/board [get]
func (h *OrderHandler) Board(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	board, err := h.orderService.Board(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}

// Stats godoc
// @Summary      Order statistics
// @Tags         orders
// @Produce      json
// @Param        days query int false "Window in days" default(30)
// @Success      200 {object} dto.Response{data=orderingapp.StatsResponse}
// @Security     BearerAuth
// @Router       /orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	stats, err := h.orderService.Stats(c.Request.Context(), restaurantID, queryInt(c, "days", defaultStatsDays))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetByID godoc
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), restaurantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Advance godoc
// @Summary      Advance order
// @Description  Moves the order one step forward in its flow
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/advance [post]
func (h *OrderHandler) Advance(c *gin.Context) {
	restaurantID, userID, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Advance(c.Request.Context(), restaurantID, orderID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Set order status
// @Description  Only the next status or cancelled are accepted. A stale version returns 409 and the client must reload the order.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                          true "Order ID" format(uuid)
// @Param        request body orderingapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	restaurantID, userID, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	var req orderingapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), restaurantID, orderID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                         true  "Order ID" format(uuid)
// @Param        request body orderingapp.CancelOrderRequest false "Cancellation reason"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	restaurantID, userID, ok := h.actor(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	var req orderingapp.CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), restaurantID, orderID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdatePaymentStatus godoc
// @Summary      Set payment status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                                 true "Order ID" format(uuid)
// @Param        request body orderingapp.UpdatePaymentStatusRequest true "Payment status"
// @Success      200 {object} dto.Response{data=orderingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/payment-status [put]
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	var req orderingapp.UpdatePaymentStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), restaurantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
