// Package notification turns order events into WhatsApp messages for the
// customer and delivers them through the restaurant's WhatsApp integration.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
)

// NotificationMessage is a text message queued for delivery to a customer
type NotificationMessage struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	To           string    `json:"to"`
	Body         string    `json:"body"`
	OrderNumber  string    `json:"order_number,omitempty"`
	EventType    string    `json:"event_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewNotificationMessage creates a message with a fresh ID
func NewNotificationMessage(restaurantID uuid.UUID, to, body string) NotificationMessage {
	return NotificationMessage{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		To:           to,
		Body:         body,
		CreatedAt:    time.Now(),
	}
}

var statusTexts = map[ordering.OrderStatus]string{
	ordering.OrderStatusConfirmed:  "✅ Seu pedido foi confirmado e está sendo preparado!",
	ordering.OrderStatusPreparing:  "👨‍🍳 Seu pedido está sendo preparado com carinho!",
	ordering.OrderStatusReady:      "🎉 Seu pedido está pronto!",
	ordering.OrderStatusDelivering: "🚗 Seu pedido saiu para entrega!",
	ordering.OrderStatusDelivered:  "✅ Pedido entregue! Obrigado pela preferência!",
}

// ConfirmationBody renders the order confirmation text
func ConfirmationBody(orderNumber string, items []ordering.OrderItemInfo, total valueobject.Money) string {
	return fmt.Sprintf("🍽️ *Pedido Confirmado!*\n\nPedido: %s\n\n%s\n\nObrigado pela preferência! 😊",
		orderNumber, OrderDetails(items, total))
}

// OrderDetails renders one line per item ("2x Pizza - R$ 57,00") followed by the total
func OrderDetails(items []ordering.OrderItemInfo, total valueobject.Money) string {
	lines := make([]string, 0, len(items)+2)
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%dx %s - %s",
			item.Quantity, item.Name, valueobject.NewMoney(item.TotalPrice).Format()))
	}
	lines = append(lines, "", "Total: "+total.Format())
	return strings.Join(lines, "\n")
}

// StatusUpdateBody renders the status change text. estimatedTime may be empty.
func StatusUpdateBody(orderNumber string, status ordering.OrderStatus, estimatedTime string) string {
	text, ok := statusTexts[status]
	if !ok {
		text = "Status atualizado: " + string(status)
	}
	body := fmt.Sprintf("📦 *Atualização do Pedido %s*\n\n%s", orderNumber, text)
	if estimatedTime != "" {
		body += "\n\n⏰ Tempo estimado: " + estimatedTime
	}
	return body
}
