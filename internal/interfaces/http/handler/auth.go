package handler

import (
	"github.com/gin-gonic/gin"
	restaurantapp "github.com/restaurant/backend/internal/application/restaurant"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles staff authentication
type AuthHandler struct {
	BaseHandler
	staffService *restaurantapp.StaffService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(staffService *restaurantapp.StaffService) *AuthHandler {
	return &AuthHandler{staffService: staffService}
}

// Login godoc
// @Summary      Staff login
// @Description  Authenticate a staff user with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=restaurantapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req restaurantapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.staffService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=restaurantapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req restaurantapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.staffService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Staff logout
// @Description  Revoke the current access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=MessageData}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.staffService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Logged out successfully"})
}
