package handler

import (
	"github.com/gin-gonic/gin"
	restaurantapp "github.com/restaurant/backend/internal/application/restaurant"
)

// OnboardingHandler runs the restaurant sign-up wizard
type OnboardingHandler struct {
	BaseHandler
	onboardingService *restaurantapp.OnboardingService
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(onboardingService *restaurantapp.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

// Onboard godoc
// @Summary      Create a restaurant
// @Description  Validates all wizard steps and creates the restaurant, its owner, categories, WhatsApp settings and invited staff in one transaction. Returns tokens for the owner.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.OnboardRequest true "Wizard data"
// @Success      201 {object} dto.Response{data=restaurantapp.OnboardResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /onboarding [post]
func (h *OnboardingHandler) Onboard(c *gin.Context) {
	var req restaurantapp.OnboardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.onboardingService.Onboard(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ValidateStep godoc
// @Summary      Validate one wizard step
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        request body restaurantapp.ValidateStepRequest true "Step and data"
// @Success      200 {object} dto.Response{data=restaurantapp.StepValidationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /onboarding/validate [post]
func (h *OnboardingHandler) ValidateStep(c *gin.Context) {
	var req restaurantapp.ValidateStepRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, h.onboardingService.ValidateStep(req))
}
