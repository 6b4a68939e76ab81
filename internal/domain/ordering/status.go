package ordering

import (
	"fmt"
	"strings"

	"github.com/restaurant/backend/internal/domain/shared"
)

// OrderStatus is the fulfillment status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// StatusReceived is the customer-facing name of OrderStatusPending
const StatusReceived = "received"

// lifecycle is the only forward path an order may take
var lifecycle = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivering,
	OrderStatusDelivered,
}

// Lifecycle returns the forward sequence of statuses, excluding cancelled
func Lifecycle() []OrderStatus {
	out := make([]OrderStatus, len(lifecycle))
	copy(out, lifecycle)
	return out
}

// AllStatuses returns every status including cancelled, in board order
func AllStatuses() []OrderStatus {
	return append(Lifecycle(), OrderStatusCancelled)
}

// ParseOrderStatus parses a status name. "received" is accepted as pending.
func ParseOrderStatus(s string) (OrderStatus, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == StatusReceived {
		return OrderStatusPending, nil
	}
	status := OrderStatus(v)
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status: %s", s))
	}
	return status, nil
}

// IsValid checks if the status is one of the seven defined statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
		OrderStatusDelivering, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// DisplayName returns the name shown to customers on the tracking page
func (s OrderStatus) DisplayName() string {
	if s == OrderStatusPending {
		return StatusReceived
	}
	return string(s)
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Position returns the index of s in the lifecycle, or -1 for cancelled/unknown
func (s OrderStatus) Position() int {
	for i, st := range lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status following s in the lifecycle
func (s OrderStatus) Next() (OrderStatus, bool) {
	pos := s.Position()
	if pos < 0 || pos >= len(lifecycle)-1 {
		return "", false
	}
	return lifecycle[pos+1], true
}

// CanTransitionTo allows exactly one forward step, or cancellation from
// any non-terminal status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	next, ok := s.Next()
	return ok && next == target
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodPix          PaymentMethod = "pix"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMoney        PaymentMethod = "money"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid checks the payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCard, PaymentMethodMoney, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Label returns the Portuguese label used in messages and tickets
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodPix:
		return "PIX"
	case PaymentMethodCard:
		return "Cartão (na entrega)"
	case PaymentMethodMoney:
		return "Dinheiro (na entrega)"
	case PaymentMethodBankTransfer:
		return "Transferência bancária"
	}
	return string(m)
}

// PaymentStatus is the settlement status of an order's payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks the payment status
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo checks if the payment status can move to target
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch p {
	case PaymentStatusPending:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusFailed:
		return target == PaymentStatusPending || target == PaymentStatusPaid
	case PaymentStatusPaid:
		return target == PaymentStatusRefunded
	}
	return false
}
