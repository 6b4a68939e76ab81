package restaurant

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
)

// DefaultWelcomeMessage is used when onboarding leaves the welcome text empty
const DefaultWelcomeMessage = "Welcome to your order bot!"

// ClosedNotice is appended to the welcome message outside business hours
const ClosedNotice = "\n\n⏰ No momento estamos fechados. Nosso horário de funcionamento é:\n\n" +
	"• Segunda a Sexta: 08:00 às 22:00\n" +
	"• Sábado: 08:00 às 22:00\n" +
	"• Domingo: Fechado\n\n" +
	"Em breve retornaremos seu contato!"

var hhmm = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// weekdayKeys maps time.Weekday to the business hours key
var weekdayKeys = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// DayKey returns the business hours key for a weekday
func DayKey(d time.Weekday) string {
	return weekdayKeys[d]
}

// DayHours are the opening hours of one weekday in "HH:MM" form
type DayHours struct {
	Enabled bool   `json:"enabled"`
	Open    string `json:"open"`
	Close   string `json:"close"`
}

// BusinessHours maps day keys (mon..sun) to opening hours
type BusinessHours map[string]DayHours

// DefaultBusinessHours returns mon-sat 08:00-22:00, sunday closed
func DefaultBusinessHours() BusinessHours {
	h := BusinessHours{}
	for _, d := range []string{"mon", "tue", "wed", "thu", "fri", "sat"} {
		h[d] = DayHours{Enabled: true, Open: "08:00", Close: "22:00"}
	}
	h["sun"] = DayHours{Enabled: false, Open: "08:00", Close: "22:00"}
	return h
}

// Validate checks day keys and time formats
func (h BusinessHours) Validate() error {
	for day, hours := range h {
		valid := false
		for _, k := range weekdayKeys {
			if k == day {
				valid = true
				break
			}
		}
		if !valid {
			return shared.NewDomainError("INVALID_BUSINESS_HOURS", "Unknown day: "+day)
		}
		if !hours.Enabled {
			continue
		}
		if !hhmm.MatchString(hours.Open) || !hhmm.MatchString(hours.Close) {
			return shared.NewDomainError("INVALID_BUSINESS_HOURS", "Hours must use HH:MM for "+day)
		}
	}
	return nil
}

// WhatsAppSettings configure the customer messaging channel of a restaurant
type WhatsAppSettings struct {
	shared.RestaurantAggregateRoot
	PhoneNumber      string
	WelcomeMessage   string
	AutoReplyEnabled bool
	BusinessHours    BusinessHours
	WebhookURL       string
	APIToken         string
	IsActive         bool
}

// NewWhatsAppSettings creates active settings with defaults applied
func NewWhatsAppSettings(restaurantID uuid.UUID, phoneNumber string) (*WhatsAppSettings, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	return &WhatsAppSettings{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		PhoneNumber:             valueobject.NormalizePhone(phoneNumber),
		WelcomeMessage:          DefaultWelcomeMessage,
		AutoReplyEnabled:        true,
		BusinessHours:           BusinessHours{},
		IsActive:                true,
	}, nil
}

// Update replaces the editable settings
func (s *WhatsAppSettings) Update(phoneNumber, welcome string, autoReply bool, hours BusinessHours, webhookURL, apiToken string, active bool) error {
	if hours == nil {
		hours = BusinessHours{}
	}
	if err := hours.Validate(); err != nil {
		return err
	}
	welcome = strings.TrimSpace(welcome)
	if welcome == "" {
		welcome = DefaultWelcomeMessage
	}
	s.PhoneNumber = valueobject.NormalizePhone(phoneNumber)
	s.WelcomeMessage = welcome
	s.AutoReplyEnabled = autoReply
	s.BusinessHours = hours
	s.WebhookURL = strings.TrimSpace(webhookURL)
	s.APIToken = strings.TrimSpace(apiToken)
	s.IsActive = active
	s.Touch()
	return nil
}

// HasPhone reports whether a business number is configured
func (s *WhatsAppSettings) HasPhone() bool {
	return s != nil && s.PhoneNumber != ""
}

// CanSend reports whether messages may be sent through these settings
func (s *WhatsAppSettings) CanSend() bool {
	return s != nil && s.IsActive
}

// IsOpenAt evaluates business hours at t (in t's location).
// No configured hours means always open; a missing or disabled day is closed.
// Open and Close are inclusive.
func (s *WhatsAppSettings) IsOpenAt(t time.Time) bool {
	if len(s.BusinessHours) == 0 {
		return true
	}
	hours, ok := s.BusinessHours[DayKey(t.Weekday())]
	if !ok || !hours.Enabled {
		return false
	}
	now := t.Format("15:04")
	return now >= hours.Open && now <= hours.Close
}

// AutoReplyMessage returns the automatic reply for an incoming message at t
func (s *WhatsAppSettings) AutoReplyMessage(t time.Time) string {
	if !s.AutoReplyEnabled || s.IsOpenAt(t) {
		return s.WelcomeMessage
	}
	return s.WelcomeMessage + ClosedNotice
}
