package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg NotificationMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) WhatsAppSettings(ctx context.Context, restaurantID uuid.UUID) (*restaurant.WhatsAppSettings, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*restaurant.WhatsAppSettings), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, settings *restaurant.WhatsAppSettings, to, body string) error {
	return m.Called(ctx, settings, to, body).Error(0)
}

func placedEvent(phone string) *ordering.OrderPlacedEvent {
	e := &ordering.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ordering.EventTypeOrderPlaced, ordering.AggregateTypeOrder, uuid.New(), uuid.New()),
		OrderNumber:     "PED-2026-00007",
		CustomerPhone:   phone,
		Items: []ordering.OrderItemInfo{
			{Name: "Pizza Margherita", Quantity: 2, UnitPrice: decimal.RequireFromString("28.50"), TotalPrice: decimal.RequireFromString("57.00")},
			{Name: "Refrigerante", Quantity: 1, UnitPrice: decimal.RequireFromString("6.00"), TotalPrice: decimal.RequireFromString("6.00")},
		},
		TotalAmount: decimal.RequireFromString("63.00"),
	}
	return e
}

func TestConfirmationBody(t *testing.T) {
	e := placedEvent("")
	body := ConfirmationBody(e.OrderNumber, e.Items, valueobject.NewMoney(e.TotalAmount))

	assert.Contains(t, body, "🍽️ *Pedido Confirmado!*\n\nPedido: PED-2026-00007\n\n")
	assert.Contains(t, body, "2x Pizza Margherita - R$ 57,00")
	assert.Contains(t, body, "1x Refrigerante - R$ 6,00")
	assert.Contains(t, body, "Total: R$ 63,00")
	assert.True(t, strings.HasSuffix(body, "Obrigado pela preferência! 😊"))
}

func TestStatusUpdateBody(t *testing.T) {
	tests := []struct {
		status ordering.OrderStatus
		want   string
	}{
		{ordering.OrderStatusConfirmed, "✅ Seu pedido foi confirmado e está sendo preparado!"},
		{ordering.OrderStatusPreparing, "👨‍🍳 Seu pedido está sendo preparado com carinho!"},
		{ordering.OrderStatusReady, "🎉 Seu pedido está pronto!"},
		{ordering.OrderStatusDelivering, "🚗 Seu pedido saiu para entrega!"},
		{ordering.OrderStatusDelivered, "✅ Pedido entregue! Obrigado pela preferência!"},
		{ordering.OrderStatusCancelled, "Status atualizado: cancelled"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			body := StatusUpdateBody("PED-2026-00001", tt.status, "")
			assert.Equal(t, "📦 *Atualização do Pedido PED-2026-00001*\n\n"+tt.want, body)
		})
	}

	withETA := StatusUpdateBody("PED-2026-00001", ordering.OrderStatusDelivering, "19:45")
	assert.Contains(t, withETA, "\n\n⏰ Tempo estimado: 19:45")
}

func TestOrderNotificationHandler_OrderPlaced(t *testing.T) {
	publisher := new(MockPublisher)
	h := NewOrderNotificationHandler(publisher, time.UTC, nil)
	e := placedEvent("(11) 99999-8888")

	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(msg NotificationMessage) bool {
		return msg.To == "11999998888" &&
			msg.RestaurantID == e.RestaurantID() &&
			msg.OrderNumber == "PED-2026-00007" &&
			msg.EventType == ordering.EventTypeOrderPlaced
	})).Return(nil)

	require.NoError(t, h.Handle(context.Background(), e))
	publisher.AssertExpectations(t)
}

func TestOrderNotificationHandler_StatusChanged(t *testing.T) {
	publisher := new(MockPublisher)
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	h := NewOrderNotificationHandler(publisher, saoPaulo, nil)

	eta := time.Date(2026, 3, 16, 22, 30, 0, 0, time.UTC)
	e := &ordering.OrderStatusChangedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(ordering.EventTypeOrderStatusChanged, ordering.AggregateTypeOrder, uuid.New(), uuid.New()),
		OrderNumber:           "PED-2026-00002",
		CustomerPhone:         "11988887777",
		FromStatus:            ordering.OrderStatusReady,
		ToStatus:              ordering.OrderStatusDelivering,
		EstimatedDeliveryTime: &eta,
	}

	var got NotificationMessage
	publisher.On("Publish", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(NotificationMessage) }).
		Return(nil)

	require.NoError(t, h.Handle(context.Background(), e))
	assert.Contains(t, got.Body, "🚗 Seu pedido saiu para entrega!")
	assert.Contains(t, got.Body, "Tempo estimado: 19:30")
}

func TestOrderNotificationHandler_Skips(t *testing.T) {
	publisher := new(MockPublisher)
	h := NewOrderNotificationHandler(publisher, nil, nil)

	require.NoError(t, h.Handle(context.Background(), placedEvent("")))

	other := &ordering.OrderPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(ordering.EventTypeOrderPaymentStatusChanged, ordering.AggregateTypeOrder, uuid.New(), uuid.New()),
	}
	require.NoError(t, h.Handle(context.Background(), other))

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderNotificationHandler_PublishError(t *testing.T) {
	publisher := new(MockPublisher)
	h := NewOrderNotificationHandler(publisher, nil, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	err := h.Handle(context.Background(), placedEvent("11999998888"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PED-2026-00007")
}

func TestDispatcher_Deliver(t *testing.T) {
	rid := uuid.New()
	msg := NewNotificationMessage(rid, "11999998888", "Olá")

	t.Run("sends when active", func(t *testing.T) {
		settingsRepo := new(MockSettingsProvider)
		sender := new(MockSender)
		d := NewDispatcher(settingsRepo, sender, nil)
		settings, _ := restaurant.NewWhatsAppSettings(rid, "1133334444")
		settingsRepo.On("WhatsAppSettings", mock.Anything, rid).Return(settings, nil)
		sender.On("Send", mock.Anything, settings, "11999998888", "Olá").Return(nil)

		require.NoError(t, d.Deliver(context.Background(), msg))
		sender.AssertExpectations(t)
	})

	t.Run("inactive integration", func(t *testing.T) {
		settingsRepo := new(MockSettingsProvider)
		sender := new(MockSender)
		d := NewDispatcher(settingsRepo, sender, nil)
		settings, _ := restaurant.NewWhatsAppSettings(rid, "1133334444")
		settings.IsActive = false
		settingsRepo.On("WhatsAppSettings", mock.Anything, rid).Return(settings, nil)

		err := d.Deliver(context.Background(), msg)
		assert.ErrorIs(t, err, ErrIntegrationInactive)
		assert.True(t, IsPermanent(err))
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		settingsRepo := new(MockSettingsProvider)
		d := NewDispatcher(settingsRepo, new(MockSender), nil)
		settingsRepo.On("WhatsAppSettings", mock.Anything, rid).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, d.Deliver(context.Background(), msg), ErrIntegrationInactive)
	})

	t.Run("sender failure is retryable", func(t *testing.T) {
		settingsRepo := new(MockSettingsProvider)
		sender := new(MockSender)
		d := NewDispatcher(settingsRepo, sender, nil)
		settings, _ := restaurant.NewWhatsAppSettings(rid, "1133334444")
		settingsRepo.On("WhatsAppSettings", mock.Anything, rid).Return(settings, nil)
		sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))

		err := d.Deliver(context.Background(), msg)
		require.Error(t, err)
		assert.False(t, IsPermanent(err))
	})
}

func TestInlinePublisher(t *testing.T) {
	rid := uuid.New()
	msg := NewNotificationMessage(rid, "11999998888", "oi")

	t.Run("inactive integration is swallowed", func(t *testing.T) {
		settingsRepo := new(MockSettingsProvider)
		settingsRepo.On("WhatsAppSettings", mock.Anything, rid).Return(nil, shared.ErrNotFound)
		p := NewInlinePublisher(NewDispatcher(settingsRepo, new(MockSender), nil))

		assert.NoError(t, p.Publish(context.Background(), msg))
	})

	t.Run("send failure is returned", func(t *testing.T) {
		settingsRepo := new(MockSettingsProvider)
		sender := new(MockSender)
		settings, _ := restaurant.NewWhatsAppSettings(rid, "1133334444")
		settingsRepo.On("WhatsAppSettings", mock.Anything, rid).Return(settings, nil)
		sender.On("Send", mock.Anything, settings, "11999998888", "oi").Return(errors.New("timeout"))
		p := NewInlinePublisher(NewDispatcher(settingsRepo, sender, nil))

		assert.EqualError(t, p.Publish(context.Background(), msg), "timeout")
	})
}
