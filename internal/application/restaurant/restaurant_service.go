package restaurant

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RestaurantService handles the restaurant profile and its WhatsApp settings
type RestaurantService struct {
	restaurantRepo restaurant.RestaurantRepository
	whatsappRepo   restaurant.WhatsAppSettingsRepository
	location       *time.Location
	logger         *zap.Logger
}

// NewRestaurantService creates a new RestaurantService
func NewRestaurantService(
	restaurantRepo restaurant.RestaurantRepository,
	whatsappRepo restaurant.WhatsAppSettingsRepository,
	location *time.Location,
	logger *zap.Logger,
) *RestaurantService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RestaurantService{
		restaurantRepo: restaurantRepo,
		whatsappRepo:   whatsappRepo,
		location:       location,
		logger:         logger,
	}
}

// Get retrieves a restaurant
func (s *RestaurantService) Get(ctx context.Context, restaurantID uuid.UUID) (*RestaurantResponse, error) {
	r, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	response := ToRestaurantResponse(r)
	return &response, nil
}

// Update replaces the restaurant profile
func (s *RestaurantService) Update(ctx context.Context, restaurantID uuid.UUID, req UpdateRestaurantRequest) (*RestaurantResponse, error) {
	r, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if err := r.UpdateProfile(req.Name, req.BusinessType, req.Address, req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := s.restaurantRepo.Save(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("Restaurant updated", zap.String("restaurant_id", restaurantID.String()))
	response := ToRestaurantResponse(r)
	return &response, nil
}

// GetWhatsAppSettings returns the WhatsApp settings, defaults when none are stored
func (s *RestaurantService) GetWhatsAppSettings(ctx context.Context, restaurantID uuid.UUID) (*WhatsAppSettingsResponse, error) {
	settings, err := s.findOrDefaultSettings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	response := ToWhatsAppSettingsResponse(settings)
	return &response, nil
}

// UpdateWhatsAppSettings creates or replaces the WhatsApp settings
func (s *RestaurantService) UpdateWhatsAppSettings(ctx context.Context, restaurantID uuid.UUID, req UpdateWhatsAppSettingsRequest) (*WhatsAppSettingsResponse, error) {
	settings, err := s.findOrDefaultSettings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	autoReply := settings.AutoReplyEnabled
	if req.AutoReplyEnabled != nil {
		autoReply = *req.AutoReplyEnabled
	}
	active := settings.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	token := settings.APIToken
	if req.APIToken != "" {
		token = req.APIToken
	}
	hours := settings.BusinessHours
	if req.BusinessHours != nil {
		hours = req.BusinessHours
	}

	if err := settings.Update(req.PhoneNumber, req.WelcomeMessage, autoReply, hours, req.WebhookURL, token, active); err != nil {
		return nil, err
	}
	if err := s.whatsappRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("WhatsApp settings updated",
		zap.String("restaurant_id", restaurantID.String()),
		zap.Bool("active", settings.IsActive))
	response := ToWhatsAppSettingsResponse(settings)
	return &response, nil
}

// AutoReply returns the automatic reply an incoming message receives at now
func (s *RestaurantService) AutoReply(ctx context.Context, restaurantID uuid.UUID, now time.Time) (*AutoReplyResponse, error) {
	settings, err := s.findOrDefaultSettings(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	local := now.In(s.location)
	return &AutoReplyResponse{
		Message: settings.AutoReplyMessage(local),
		IsOpen:  settings.IsOpenAt(local),
		At:      local,
	}, nil
}

// TestConnection checks that the settings can be used to send messages.
// No message is sent; the business number must be configured.
func (s *RestaurantService) TestConnection(ctx context.Context, restaurantID uuid.UUID) (*TestConnectionResponse, error) {
	settings, err := s.whatsappRepo.FindByRestaurant(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("WHATSAPP_NOT_CONFIGURED", "WhatsApp settings are not configured")
		}
		return nil, err
	}
	if !settings.HasPhone() {
		return nil, shared.NewDomainError("WHATSAPP_NOT_CONFIGURED", "WhatsApp phone number is required")
	}

	response := &TestConnectionResponse{
		Success:     settings.CanSend(),
		PhoneNumber: settings.PhoneNumber,
		Message:     "Connection successful",
	}
	if !response.Success {
		response.Message = "WhatsApp integration is inactive"
	}
	return response, nil
}

// ContactPhone returns the number customers use to reach the restaurant:
// the WhatsApp business number when set, the restaurant phone otherwise
func (s *RestaurantService) ContactPhone(ctx context.Context, restaurantID uuid.UUID) (string, error) {
	settings, err := s.whatsappRepo.FindByRestaurant(ctx, restaurantID)
	switch {
	case err == nil && settings.HasPhone():
		return settings.PhoneNumber, nil
	case err != nil && !errors.Is(err, shared.ErrNotFound):
		return "", err
	}

	r, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		return "", err
	}
	return r.Phone, nil
}

// WhatsAppSettings returns the stored settings for the notifier
func (s *RestaurantService) WhatsAppSettings(ctx context.Context, restaurantID uuid.UUID) (*restaurant.WhatsAppSettings, error) {
	return s.whatsappRepo.FindByRestaurant(ctx, restaurantID)
}

func (s *RestaurantService) findOrDefaultSettings(ctx context.Context, restaurantID uuid.UUID) (*restaurant.WhatsAppSettings, error) {
	settings, err := s.whatsappRepo.FindByRestaurant(ctx, restaurantID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	settings, err = restaurant.NewWhatsAppSettings(restaurantID, "")
	if err != nil {
		return nil, err
	}
	settings.BusinessHours = restaurant.DefaultBusinessHours()
	return settings, nil
}
