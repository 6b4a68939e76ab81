package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	printingapp "github.com/restaurant/backend/internal/application/printing"
)

// TicketHandler prints kitchen tickets for orders
type TicketHandler struct {
	BaseHandler
	ticketService *printingapp.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *printingapp.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Print godoc
// @Summary      Print kitchen ticket
// @Description  Renders the ticket as PDF, stores it and returns a download URL
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=printingapp.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/ticket [post]
func (h *TicketHandler) Print(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	ticket, err := h.ticketService.RenderTicket(c.Request.Context(), restaurantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}

// Preview godoc
// @Summary      Preview kitchen ticket
// @Tags         orders
// @Produce      html
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {string} string "Ticket HTML"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/ticket/preview [get]
func (h *TicketHandler) Preview(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	orderID, ok := h.parseID(c, "id", "order")
	if !ok {
		return
	}

	html, err := h.ticketService.PreviewHTML(c.Request.Context(), restaurantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
