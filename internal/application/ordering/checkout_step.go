package ordering

import (
	"errors"

	"github.com/restaurant/backend/internal/domain/checkout"
	"github.com/restaurant/backend/internal/domain/shared"
)

// CheckoutStepRequest asks whether the customer may leave a checkout step
type CheckoutStepRequest struct {
	Step int           `json:"step" binding:"required,min=1,max=5"`
	Form checkout.Form `json:"form"`
}

// CheckoutStepResponse tells the checkout wizard whether it may advance
type CheckoutStepResponse struct {
	Step       int    `json:"step"`
	CanAdvance bool   `json:"can_advance"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ValidateCheckoutStep runs the validation of one checkout step
func ValidateCheckoutStep(req CheckoutStepRequest) CheckoutStepResponse {
	resp := CheckoutStepResponse{Step: req.Step, CanAdvance: true}
	if err := checkout.ValidateStep(req.Step, req.Form); err != nil {
		resp.CanAdvance = false
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			resp.Field = verr.Field
			resp.Message = verr.Message
		} else {
			resp.Message = err.Error()
		}
	}
	return resp
}
