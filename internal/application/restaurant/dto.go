package restaurant

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/onboarding"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/restaurant/backend/internal/infrastructure/auth"
)

// OwnerInput are the owner credentials created with the restaurant
type OwnerInput struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"omitempty,email"` // defaults to the restaurant email
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// OnboardRequest is the payload of the final onboarding step
type OnboardRequest struct {
	Owner OwnerInput      `json:"owner"`
	Data  onboarding.Data `json:"data"`
}

// ValidateStepRequest checks a single onboarding step
type ValidateStepRequest struct {
	Step int             `json:"step" binding:"required,min=1,max=4"`
	Data onboarding.Data `json:"data"`
}

// StepValidationResponse tells the wizard whether it may advance
type StepValidationResponse struct {
	Step       int    `json:"step"`
	CanAdvance bool   `json:"can_advance"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message,omitempty"`
}

// OnboardResponse is returned once onboarding completed
type OnboardResponse struct {
	Restaurant   RestaurantResponse    `json:"restaurant"`
	Owner        StaffUserResponse     `json:"owner"`
	Tokens       *auth.TokenPair       `json:"tokens"`
	InvitedUsers []InvitedUserResponse `json:"invited_users"`
}

// UpdateRestaurantRequest replaces the restaurant profile
type UpdateRestaurantRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	BusinessType string `json:"business_type" binding:"max=100"`
	Address      string `json:"address" binding:"max=500"`
	Phone        string `json:"phone" binding:"max=20"`
	Email        string `json:"email" binding:"omitempty,email"`
}

// RestaurantResponse represents a restaurant in API responses
type RestaurantResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	BusinessType        string     `json:"business_type"`
	Address             string     `json:"address"`
	Phone               string     `json:"phone"`
	Email               string     `json:"email"`
	OwnerID             *uuid.UUID `json:"owner_id,omitempty"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ToRestaurantResponse converts a domain Restaurant to RestaurantResponse
func ToRestaurantResponse(r *restaurant.Restaurant) RestaurantResponse {
	return RestaurantResponse{
		ID:                  r.ID,
		Name:                r.Name,
		BusinessType:        r.BusinessType,
		Address:             r.Address,
		Phone:               valueobject.FormatPhone(r.Phone),
		Email:               r.Email,
		OwnerID:             r.OwnerID,
		OnboardingCompleted: r.OnboardingCompleted,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// WhatsAppSettingsResponse represents the messaging settings.
// The API token is never returned, only whether one is stored.
type WhatsAppSettingsResponse struct {
	ID               uuid.UUID                `json:"id"`
	RestaurantID     uuid.UUID                `json:"restaurant_id"`
	PhoneNumber      string                   `json:"phone_number"`
	WelcomeMessage   string                   `json:"welcome_message"`
	AutoReplyEnabled bool                     `json:"auto_reply_enabled"`
	BusinessHours    restaurant.BusinessHours `json:"business_hours"`
	WebhookURL       string                   `json:"webhook_url,omitempty"`
	HasAPIToken      bool                     `json:"has_api_token"`
	IsActive         bool                     `json:"is_active"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// ToWhatsAppSettingsResponse converts domain settings to a response
func ToWhatsAppSettingsResponse(s *restaurant.WhatsAppSettings) WhatsAppSettingsResponse {
	return WhatsAppSettingsResponse{
		ID:               s.ID,
		RestaurantID:     s.RestaurantID,
		PhoneNumber:      s.PhoneNumber,
		WelcomeMessage:   s.WelcomeMessage,
		AutoReplyEnabled: s.AutoReplyEnabled,
		BusinessHours:    s.BusinessHours,
		WebhookURL:       s.WebhookURL,
		HasAPIToken:      s.APIToken != "",
		IsActive:         s.IsActive,
		UpdatedAt:        s.UpdatedAt,
	}
}

// UpdateWhatsAppSettingsRequest replaces the messaging settings.
// An empty APIToken and omitted business hours keep the stored values.
type UpdateWhatsAppSettingsRequest struct {
	PhoneNumber      string                   `json:"phone_number" binding:"max=20"`
	WelcomeMessage   string                   `json:"welcome_message" binding:"max=1000"`
	AutoReplyEnabled *bool                    `json:"auto_reply_enabled"`
	BusinessHours    restaurant.BusinessHours `json:"business_hours"`
	WebhookURL       string                   `json:"webhook_url" binding:"omitempty,url"`
	APIToken         string                   `json:"api_token"`
	IsActive         *bool                    `json:"is_active"`
}

// AutoReplyResponse is the reply an incoming message would get at a time
type AutoReplyResponse struct {
	Message string    `json:"message"`
	IsOpen  bool      `json:"is_open"`
	At      time.Time `json:"at"`
}

// TestConnectionResponse reports the outcome of a connection test
type TestConnectionResponse struct {
	Success     bool   `json:"success"`
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

// LoginRequest authenticates a staff user
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LoginResponse carries the issued tokens and the user
type LoginResponse struct {
	Tokens *auth.TokenPair   `json:"tokens"`
	User   StaffUserResponse `json:"user"`
}

// InviteRequest invites a staff member into the caller's restaurant
type InviteRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Email       string   `json:"email" binding:"required,email"`
	Role        string   `json:"role" binding:"required,oneof=admin manager attendant"`
	Permissions []string `json:"permissions"`
}

// InvitedUserResponse includes the one-time password of a new account.
// The password is shown once and never stored in clear.
type InvitedUserResponse struct {
	User              StaffUserResponse `json:"user"`
	TemporaryPassword string            `json:"temporary_password"`
}

// StaffUserResponse represents a staff user in API responses
type StaffUserResponse struct {
	ID           uuid.UUID  `json:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	IsActive     bool       `json:"is_active"`
	InvitedBy    *uuid.UUID `json:"invited_by,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToStaffUserResponse converts a domain StaffUser to StaffUserResponse
func ToStaffUserResponse(u *restaurant.StaffUser) StaffUserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return StaffUserResponse{
		ID:           u.ID,
		RestaurantID: u.RestaurantID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		Permissions:  perms,
		IsActive:     u.IsActive,
		InvitedBy:    u.InvitedBy,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
	}
}

// ToStaffUserResponses converts a slice of staff users
func ToStaffUserResponses(users []restaurant.StaffUser) []StaffUserResponse {
	responses := make([]StaffUserResponse, len(users))
	for i := range users {
		responses[i] = ToStaffUserResponse(&users[i])
	}
	return responses
}
