package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrIntegrationInactive is returned when the restaurant has no active WhatsApp integration.
// Such messages are dropped rather than retried.
var ErrIntegrationInactive = shared.NewDomainError("WHATSAPP_INACTIVE", "WhatsApp integration not active")

// SettingsProvider loads the WhatsApp settings of a restaurant
type SettingsProvider interface {
	WhatsAppSettings(ctx context.Context, restaurantID uuid.UUID) (*restaurant.WhatsAppSettings, error)
}

// Sender delivers a text message through a WhatsApp integration
type Sender interface {
	Send(ctx context.Context, settings *restaurant.WhatsAppSettings, to, body string) error
}

// Dispatcher delivers queued messages when the restaurant's integration is active
type Dispatcher struct {
	settings SettingsProvider
	sender   Sender
	logger   *zap.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(settings SettingsProvider, sender Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{settings: settings, sender: sender, logger: logger}
}

// Deliver sends msg. It returns ErrIntegrationInactive when the restaurant
// has not configured or has disabled WhatsApp.
func (d *Dispatcher) Deliver(ctx context.Context, msg NotificationMessage) error {
	settings, err := d.settings.WhatsAppSettings(ctx, msg.RestaurantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrIntegrationInactive
		}
		return err
	}
	if !settings.CanSend() {
		return ErrIntegrationInactive
	}

	if err := d.sender.Send(ctx, settings, msg.To, msg.Body); err != nil {
		d.logger.Warn("WhatsApp delivery failed",
			zap.String("message_id", msg.ID.String()),
			zap.String("restaurant_id", msg.RestaurantID.String()),
			zap.Error(err))
		return err
	}

	d.logger.Info("WhatsApp message sent",
		zap.String("message_id", msg.ID.String()),
		zap.String("restaurant_id", msg.RestaurantID.String()),
		zap.String("order_number", msg.OrderNumber))
	return nil
}

// IsPermanent reports whether a delivery error should not be retried
func IsPermanent(err error) bool {
	return errors.Is(err, ErrIntegrationInactive)
}

// InlinePublisher delivers messages immediately instead of queueing them.
// It is used when no message broker is configured.
type InlinePublisher struct {
	dispatcher *Dispatcher
}

// NewInlinePublisher creates a publisher backed by dispatcher
func NewInlinePublisher(dispatcher *Dispatcher) *InlinePublisher {
	return &InlinePublisher{dispatcher: dispatcher}
}

// Publish delivers msg. Inactive integrations are not an error.
func (p *InlinePublisher) Publish(ctx context.Context, msg NotificationMessage) error {
	if err := p.dispatcher.Deliver(ctx, msg); err != nil && !IsPermanent(err) {
		return err
	}
	return nil
}
