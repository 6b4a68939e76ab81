package handler

import (
	"github.com/gin-gonic/gin"
	restaurantapp "github.com/restaurant/backend/internal/application/restaurant"
)

// StaffHandler manages the staff accounts of a restaurant
type StaffHandler struct {
	BaseHandler
	staffService *restaurantapp.StaffService
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffService *restaurantapp.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// List godoc
// @Summary      List staff
// @Tags         staff
// @Produce      json
// @Success      200 {object} dto.Response{data=[]restaurantapp.StaffUserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	users, err := h.staffService.List(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// Invite godoc
// @Summary      Invite a staff member
// @Description  Creates an account with a one-time temporary password
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.InviteRequest true "Invitation"
// @Success      201 {object} dto.Response{data=restaurantapp.InvitedUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /staff [post]
func (h *StaffHandler) Invite(c *gin.Context) {
	restaurantID, userID, ok := h.actor(c)
	if !ok {
		return
	}

	var req restaurantapp.InviteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invited, err := h.staffService.Invite(c.Request.Context(), restaurantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invited)
}

// Deactivate godoc
// @Summary      Deactivate a staff member
// @Description  Disables the account and revokes its tokens
// @Tags         staff
// @Param        id path string true "Staff user ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /staff/{id} [delete]
func (h *StaffHandler) Deactivate(c *gin.Context) {
	restaurantID, actorID, ok := h.actor(c)
	if !ok {
		return
	}
	userID, ok := h.parseID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.staffService.Deactivate(c.Request.Context(), restaurantID, actorID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
