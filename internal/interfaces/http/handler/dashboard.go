package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	dashboardapp "github.com/restaurant/backend/internal/application/dashboard"
)

// DashboardHandler serves the staff home screen figures
type DashboardHandler struct {
	BaseHandler
	dashboardService *dashboardapp.DashboardService
	now              func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *dashboardapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// Stats godoc
// @Summary      Dashboard statistics
// @Description  Orders, revenue and distinct customers for today, the current week and the current month. Cancelled orders are excluded.
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboardapp.StatsResponse}
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), restaurantID, h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
