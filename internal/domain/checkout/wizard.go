package checkout

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Wizard steps, 1-based as shown to the customer
const (
	StepName    = 1
	StepAddress = 2
	StepPayment = 3
	StepContact = 4
	StepSummary = 5
)

// StepCount is the number of wizard steps
const StepCount = StepSummary

var stepFields = map[int][]string{
	StepName:    {"CustomerName"},
	StepAddress: {"CEP", "Address", "State"},
	StepPayment: {"PaymentMethod"},
	StepContact: {"Phone", "Email"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("br_phone", func(fl validator.FieldLevel) bool {
		return valueobject.IsValidPhone(fl.Field().String())
	})
	return v
}

// Validator exposes the configured validator so the HTTP layer can reuse
// the custom tags.
func Validator() *validator.Validate {
	return validate
}

// CanAdvance reports whether the customer may leave step with the given form
func CanAdvance(step int, f Form) bool {
	return ValidateStep(step, f) == nil
}

// ValidateStep validates one wizard step. The summary step always passes.
func ValidateStep(step int, f Form) error {
	if step < StepName || step > StepSummary {
		return shared.NewValidationError(step, "step", "Unknown checkout step")
	}
	if fields, ok := stepFields[step]; ok {
		if err := validate.StructPartial(f, fields...); err != nil {
			return toValidationError(step, err)
		}
	}
	if step == StepPayment {
		return validatePayment(f)
	}
	return nil
}

// Validate runs every step in order and returns the first failure
func Validate(f Form) error {
	for step := StepName; step <= StepSummary; step++ {
		if err := ValidateStep(step, f); err != nil {
			return err
		}
	}
	if len(f.Items) == 0 {
		return shared.NewValidationError(StepSummary, "items", "Cart is empty")
	}
	for _, line := range f.Items {
		if err := validate.Struct(line); err != nil {
			return toValidationError(StepSummary, err)
		}
	}
	return nil
}

func validatePayment(f Form) error {
	switch f.PaymentMethod {
	case "pix":
		if f.PixTiming != PixTimingNow && f.PixTiming != PixTimingPickup {
			return shared.NewValidationError(StepPayment, "pix_timing", "Choose when to pay with pix")
		}
	case "money":
		return ValidateChange(f, f.Total())
	}
	return nil
}

// ValidateChange checks that the cash the customer will hand over exceeds
// total. Forms that do not pay with money or need no change always pass.
func ValidateChange(f Form, total decimal.Decimal) error {
	if f.PaymentMethod != "money" || !f.NeedsChange {
		return nil
	}
	if _, err := Change(ParseChangeAmount(f.ChangeAmount), total); err != nil {
		return shared.NewValidationError(StepPayment, "change_amount", err.Error())
	}
	return nil
}

func toValidationError(step int, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return shared.NewValidationError(step, fe.Field(), fieldMessage(fe))
	}
	return shared.NewValidationError(step, "", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "br_phone":
		return "Phone must have at least 10 digits"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "email":
		return "Invalid email format"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	}
	return fe.Field() + " is invalid"
}
