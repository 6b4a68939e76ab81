// Package onboarding validates the restaurant onboarding wizard.
package onboarding

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
)

// Wizard steps
const (
	StepRestaurant = 1
	StepCategories = 2
	StepWhatsApp   = 3
	StepUsers      = 4
)

// StepCount is the number of onboarding steps
const StepCount = StepUsers

// RestaurantData is the restaurant profile collected in step 1
type RestaurantData struct {
	Name         string `json:"name" validate:"required,notblank,max=200"`
	BusinessType string `json:"business_type" validate:"required,notblank"`
	Address      string `json:"address" validate:"required,notblank"`
	Phone        string `json:"phone" validate:"required,notblank"`
	Email        string `json:"email" validate:"required,email"`
}

// CategoryData is a menu category created in step 2
type CategoryData struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description"`
}

// WhatsAppData is collected in step 3
type WhatsAppData struct {
	PhoneNumber    string                   `json:"phone_number" validate:"required,notblank"`
	WelcomeMessage string                   `json:"welcome_message"`
	AutoReply      *bool                    `json:"auto_reply"`
	BusinessHours  restaurant.BusinessHours `json:"business_hours"`
}

// UserData is a staff member invited in step 4
type UserData struct {
	Name        string   `json:"name" validate:"required,notblank"`
	Email       string   `json:"email" validate:"required,email"`
	Role        string   `json:"role" validate:"required,oneof=admin manager attendant"`
	Permissions []string `json:"permissions"`
}

// Data is everything the onboarding wizard collects
type Data struct {
	Restaurant RestaurantData `json:"restaurant"`
	Categories []CategoryData `json:"categories"`
	WhatsApp   WhatsAppData   `json:"whatsapp"`
	Users      []UserData     `json:"users"`
}

// ApplyDefaults fills the WhatsApp defaults
func (d *Data) ApplyDefaults() {
	if strings.TrimSpace(d.WhatsApp.WelcomeMessage) == "" {
		d.WhatsApp.WelcomeMessage = restaurant.DefaultWelcomeMessage
	}
	if d.WhatsApp.AutoReply == nil {
		enabled := true
		d.WhatsApp.AutoReply = &enabled
	}
	if d.WhatsApp.BusinessHours == nil {
		d.WhatsApp.BusinessHours = restaurant.DefaultBusinessHours()
	}
}

// AutoReplyEnabled returns the auto reply flag with its default applied
func (d Data) AutoReplyEnabled() bool {
	return d.WhatsApp.AutoReply == nil || *d.WhatsApp.AutoReply
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}()

// CanAdvance reports whether the owner may leave step with the given data
func CanAdvance(step int, d Data) bool {
	return ValidateStep(step, d) == nil
}

// ValidateStep validates a single onboarding step
func ValidateStep(step int, d Data) error {
	switch step {
	case StepRestaurant:
		return check(step, validate.Struct(d.Restaurant))
	case StepCategories:
		if len(d.Categories) == 0 {
			return shared.NewValidationError(step, "categories", "Add at least one category")
		}
		for _, c := range d.Categories {
			if err := validate.Struct(c); err != nil {
				return check(step, err)
			}
		}
		return nil
	case StepWhatsApp:
		if err := validate.Struct(d.WhatsApp); err != nil {
			return check(step, err)
		}
		if err := d.WhatsApp.BusinessHours.Validate(); err != nil {
			return shared.NewValidationError(step, "business_hours", err.Error())
		}
		return nil
	case StepUsers:
		seen := map[string]bool{strings.ToLower(strings.TrimSpace(d.Restaurant.Email)): true}
		for _, u := range d.Users {
			if err := validate.Struct(u); err != nil {
				return check(step, err)
			}
			email := strings.ToLower(strings.TrimSpace(u.Email))
			if seen[email] {
				return shared.NewValidationError(step, "email", "Duplicate user email: "+email)
			}
			seen[email] = true
		}
		return nil
	}
	return shared.NewValidationError(step, "step", "Unknown onboarding step")
}

// Validate runs every step in order and returns the first failure
func Validate(d Data) error {
	for step := StepRestaurant; step <= StepUsers; step++ {
		if err := ValidateStep(step, d); err != nil {
			return err
		}
	}
	return nil
}

func check(step int, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Field() + " is required"
		switch fe.Tag() {
		case "email":
			msg = "Invalid email format"
		case "oneof":
			msg = fe.Field() + " must be one of: " + fe.Param()
		case "max":
			msg = fe.Field() + " is too long"
		}
		return shared.NewValidationError(step, fe.Field(), msg)
	}
	return shared.NewValidationError(step, "", err.Error())
}
