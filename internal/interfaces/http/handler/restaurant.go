package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	restaurantapp "github.com/restaurant/backend/internal/application/restaurant"
)

// RestaurantHandler manages the restaurant profile and WhatsApp settings
type RestaurantHandler struct {
	BaseHandler
	restaurantService *restaurantapp.RestaurantService
	now               func() time.Time
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(restaurantService *restaurantapp.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService, now: time.Now}
}

// Get godoc
// @Summary      Get restaurant profile
// @Tags         restaurant
// @Produce      json
// @Success      200 {object} dto.Response{data=restaurantapp.RestaurantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /restaurant [get]
func (h *RestaurantHandler) Get(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	resp, err := h.restaurantService.Get(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @Summary      Update restaurant profile
// @Tags         restaurant
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.UpdateRestaurantRequest true "Changed fields"
// @Success      200 {object} dto.Response{data=restaurantapp.RestaurantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /restaurant [put]
func (h *RestaurantHandler) Update(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var req restaurantapp.UpdateRestaurantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.restaurantService.Update(c.Request.Context(), restaurantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetWhatsApp godoc
// @Summary      Get WhatsApp settings
// @Description  Defaults are returned when nothing was saved yet. The API token is never returned.
// @Tags         restaurant
// @Produce      json
// @Success      200 {object} dto.Response{data=restaurantapp.WhatsAppSettingsResponse}
// @Security     BearerAuth
// @Router       /restaurant/whatsapp [get]
func (h *RestaurantHandler) GetWhatsApp(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	resp, err := h.restaurantService.GetWhatsAppSettings(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateWhatsApp godoc
// @Summary      Update WhatsApp settings
// @Tags         restaurant
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.UpdateWhatsAppSettingsRequest true "Settings"
// @Success      200 {object} dto.Response{data=restaurantapp.WhatsAppSettingsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /restaurant/whatsapp [put]
func (h *RestaurantHandler) UpdateWhatsApp(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var req restaurantapp.UpdateWhatsAppSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.restaurantService.UpdateWhatsAppSettings(c.Request.Context(), restaurantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AutoReply godoc
// @Summary      Preview the auto reply
// @Description  The message an incoming WhatsApp message would get right now
// @Tags         restaurant
// @Produce      json
// @Success      200 {object} dto.Response{data=restaurantapp.AutoReplyResponse}
// @Security     BearerAuth
// @Router       /restaurant/whatsapp/auto-reply [get]
func (h *RestaurantHandler) AutoReply(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	resp, err := h.restaurantService.AutoReply(c.Request.Context(), restaurantID, h.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// TestConnection godoc
// @Summary      Test the WhatsApp connection
// @Tags         restaurant
// @Produce      json
// @Success      200 {object} dto.Response{data=restaurantapp.TestConnectionResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /restaurant/whatsapp/test [post]
func (h *RestaurantHandler) TestConnection(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	resp, err := h.restaurantService.TestConnection(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
