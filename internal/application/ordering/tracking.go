package ordering

import (
	"context"
	"fmt"
	"net/url"

	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Estimate used by the tracking page: 45 minutes at received, minus 8 per
// step already completed.
const (
	trackingBaseMinutes = 45
	trackingStepMinutes = 8
)

// EstimatedMinutes returns the remaining minutes shown to the customer
func EstimatedMinutes(status ordering.OrderStatus) int {
	if status.IsTerminal() {
		return 0
	}
	remaining := trackingBaseMinutes - trackingStepMinutes*status.Position()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ContactURL builds the wa.me link a customer uses to ask about an order
func ContactURL(phone, orderNumber string) string {
	digits := valueobject.DigitsOnly(phone)
	if digits == "" {
		return ""
	}
	if len(digits) <= 11 {
		digits = "55" + digits
	}
	q := url.Values{}
	q.Set("text", fmt.Sprintf("Olá! Gostaria de saber sobre meu pedido %s", orderNumber))
	return fmt.Sprintf("https://wa.me/%s?%s", digits, q.Encode())
}

// Tracking returns the public view of an order looked up by number
func (s *OrderService) Tracking(ctx context.Context, orderNumber string) (*TrackingResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = toItemResponse(item)
	}

	resp := &TrackingResponse{
		OrderNumber:      order.OrderNumber,
		Status:           order.Status.DisplayName(),
		StatusMessage:    ordering.StatusMessage(order.Status),
		CustomerName:     order.CustomerName,
		PaymentMethod:    order.PaymentMethod.Label(),
		TotalAmount:      order.TotalAmount,
		DeliveryAddress:  order.DeliveryAddress,
		Items:            items,
		History:          toHistoryResponses(order.StatusHistory, true),
		EstimatedMinutes: EstimatedMinutes(order.Status),
		CreatedAt:        order.CreatedAt,
	}

	if s.contacts != nil {
		phone, err := s.contacts.ContactPhone(ctx, order.RestaurantID)
		if err != nil {
			s.logger.Warn("failed to load restaurant contact phone",
				zap.String("restaurant_id", order.RestaurantID.String()),
				zap.Error(err),
			)
		} else {
			resp.ContactURL = ContactURL(phone, order.OrderNumber)
		}
	}
	return resp, nil
}
