package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("persistence.models")

// RestaurantModel is the persistence model for the Restaurant aggregate root.
// Restaurants are the scoping root, so they carry no restaurant_id themselves.
type RestaurantModel struct {
	AggregateModel
	Name                string     `gorm:"type:varchar(200);not null"`
	BusinessType        string     `gorm:"type:varchar(50)"`
	Address             string     `gorm:"type:text"`
	Phone               string     `gorm:"type:varchar(20)"`
	Email               string     `gorm:"type:varchar(200);index"`
	OwnerID             *uuid.UUID `gorm:"type:uuid"`
	OnboardingCompleted bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RestaurantModel) TableName() string {
	return "restaurants"
}

// ToDomain converts the persistence model to a domain Restaurant entity.
func (m *RestaurantModel) ToDomain() *restaurant.Restaurant {
	return &restaurant.Restaurant{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		Name:                m.Name,
		BusinessType:        m.BusinessType,
		Address:             m.Address,
		Phone:               m.Phone,
		Email:               m.Email,
		OwnerID:             m.OwnerID,
		OnboardingCompleted: m.OnboardingCompleted,
	}
}

// FromDomain populates the persistence model from a domain Restaurant entity.
func (m *RestaurantModel) FromDomain(r *restaurant.Restaurant) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Name = r.Name
	m.BusinessType = r.BusinessType
	m.Address = r.Address
	m.Phone = r.Phone
	m.Email = r.Email
	m.OwnerID = r.OwnerID
	m.OnboardingCompleted = r.OnboardingCompleted
}

// RestaurantModelFromDomain creates a new persistence model from a domain Restaurant entity.
func RestaurantModelFromDomain(r *restaurant.Restaurant) *RestaurantModel {
	m := &RestaurantModel{}
	m.FromDomain(r)
	return m
}

// StaffUserModel is the persistence model for the StaffUser aggregate root.
// Emails are unique across restaurants since login is by email alone.
type StaffUserModel struct {
	RestaurantAggregateModel
	Name            string          `gorm:"type:varchar(200);not null"`
	Email           string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash    string          `gorm:"type:varchar(255)"`
	Role            restaurant.Role `gorm:"type:varchar(20);not null;default:'attendant'"`
	PermissionsJSON string          `gorm:"column:permissions;type:jsonb;default:'[]'"`
	IsActive        bool            `gorm:"not null"`
	InvitedBy       *uuid.UUID      `gorm:"type:uuid"`
	LastLoginAt     *time.Time
}

// TableName returns the table name for GORM
func (StaffUserModel) TableName() string {
	return "staff_users"
}

// ToDomain converts the persistence model to a domain StaffUser entity.
func (m *StaffUserModel) ToDomain() *restaurant.StaffUser {
	u := &restaurant.StaffUser{
		RestaurantAggregateRoot: m.ToRestaurantAggregateRoot(),
		Name:                    m.Name,
		Email:                   m.Email,
		PasswordHash:            m.PasswordHash,
		Role:                    m.Role,
		Permissions:             make([]string, 0),
		IsActive:                m.IsActive,
		InvitedBy:               m.InvitedBy,
		LastLoginAt:             m.LastLoginAt,
	}
	if m.PermissionsJSON != "" && m.PermissionsJSON != "[]" {
		if err := json.Unmarshal([]byte(m.PermissionsJSON), &u.Permissions); err != nil {
			modelLogger.Warn("failed to parse permissions JSON",
				zap.String("user_id", m.ID.String()),
				zap.Error(err))
		}
	}
	return u
}

// FromDomain populates the persistence model from a domain StaffUser entity.
func (m *StaffUserModel) FromDomain(u *restaurant.StaffUser) {
	m.FromDomainRestaurantAggregateRoot(u.RestaurantAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.IsActive = u.IsActive
	m.InvitedBy = u.InvitedBy
	m.LastLoginAt = u.LastLoginAt

	m.PermissionsJSON = "[]"
	if len(u.Permissions) > 0 {
		if b, err := json.Marshal(u.Permissions); err == nil {
			m.PermissionsJSON = string(b)
		}
	}
}

// StaffUserModelFromDomain creates a new persistence model from a domain StaffUser entity.
func StaffUserModelFromDomain(u *restaurant.StaffUser) *StaffUserModel {
	m := &StaffUserModel{}
	m.FromDomain(u)
	return m
}

// WhatsAppSettingsModel is the persistence model for WhatsAppSettings.
// There is at most one row per restaurant.
type WhatsAppSettingsModel struct {
	AggregateModel
	RestaurantID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PhoneNumber       string    `gorm:"type:varchar(20)"`
	WelcomeMessage    string    `gorm:"type:text"`
	AutoReplyEnabled  bool      `gorm:"not null"`
	BusinessHoursJSON string    `gorm:"column:business_hours;type:jsonb;default:'{}'"`
	WebhookURL        string    `gorm:"type:varchar(500)"`
	APIToken          string    `gorm:"column:api_token;type:varchar(500)"`
	IsActive          bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WhatsAppSettingsModel) TableName() string {
	return "whatsapp_settings"
}

// ToDomain converts the persistence model to domain WhatsAppSettings.
func (m *WhatsAppSettingsModel) ToDomain() *restaurant.WhatsAppSettings {
	s := &restaurant.WhatsAppSettings{
		PhoneNumber:      m.PhoneNumber,
		WelcomeMessage:   m.WelcomeMessage,
		AutoReplyEnabled: m.AutoReplyEnabled,
		BusinessHours:    restaurant.BusinessHours{},
		WebhookURL:       m.WebhookURL,
		APIToken:         m.APIToken,
		IsActive:         m.IsActive,
	}
	s.BaseAggregateRoot = m.ToAggregateRoot()
	s.RestaurantID = m.RestaurantID
	if m.BusinessHoursJSON != "" && m.BusinessHoursJSON != "{}" {
		if err := json.Unmarshal([]byte(m.BusinessHoursJSON), &s.BusinessHours); err != nil {
			modelLogger.Warn("failed to parse business_hours JSON",
				zap.String("restaurant_id", m.RestaurantID.String()),
				zap.String("raw_json", m.BusinessHoursJSON),
				zap.Error(err))
		}
	}
	return s
}

// FromDomain populates the persistence model from domain WhatsAppSettings.
func (m *WhatsAppSettingsModel) FromDomain(s *restaurant.WhatsAppSettings) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.RestaurantID = s.RestaurantID
	m.PhoneNumber = s.PhoneNumber
	m.WelcomeMessage = s.WelcomeMessage
	m.AutoReplyEnabled = s.AutoReplyEnabled
	m.WebhookURL = s.WebhookURL
	m.APIToken = s.APIToken
	m.IsActive = s.IsActive

	m.BusinessHoursJSON = "{}"
	if len(s.BusinessHours) > 0 {
		if b, err := json.Marshal(s.BusinessHours); err == nil {
			m.BusinessHoursJSON = string(b)
		}
	}
}

// WhatsAppSettingsModelFromDomain creates a new persistence model from domain WhatsAppSettings.
func WhatsAppSettingsModelFromDomain(s *restaurant.WhatsAppSettings) *WhatsAppSettingsModel {
	m := &WhatsAppSettingsModel{}
	m.FromDomain(s)
	return m
}
