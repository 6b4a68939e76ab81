package ordering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// statusMessages are the history messages shown on the tracking page
var statusMessages = map[OrderStatus]string{
	OrderStatusPending:    "Seu pedido foi recebido e está sendo processado",
	OrderStatusConfirmed:  "Pedido confirmado! Iniciando o preparo",
	OrderStatusPreparing:  "Seu pedido está sendo preparado com carinho",
	OrderStatusReady:      "Pedido pronto! Saindo para entrega",
	OrderStatusDelivering: "Pedido a caminho!",
	OrderStatusDelivered:  "Pedido entregue com sucesso! Obrigado pela preferência",
	OrderStatusCancelled:  "Pedido cancelado",
}

// StatusMessage returns the tracking message for a status
func StatusMessage(s OrderStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "Status atualizado"
}

// OrderItem is a line of an order. UnitPrice is the menu price captured
// when the order was placed, not the live menu price.
type OrderItem struct {
	ID                  uuid.UUID
	OrderID             uuid.UUID
	MenuItemID          uuid.UUID
	ItemName            string
	Quantity            int
	UnitPrice           decimal.Decimal
	TotalPrice          decimal.Decimal
	SpecialInstructions string
	CreatedAt           time.Time
}

// NewOrderItem creates a new order line
func NewOrderItem(orderID, menuItemID uuid.UUID, name string, quantity int, unitPrice valueobject.Money, instructions string) (*OrderItem, error) {
	if menuItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MENU_ITEM", "Menu item ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}

	return &OrderItem{
		ID:                  uuid.New(),
		OrderID:             orderID,
		MenuItemID:          menuItemID,
		ItemName:            name,
		Quantity:            quantity,
		UnitPrice:           unitPrice.Amount(),
		TotalPrice:          unitPrice.MultiplyByInt(quantity).Amount(),
		SpecialInstructions: strings.TrimSpace(instructions),
		CreatedAt:           time.Now(),
	}, nil
}

// StatusHistoryEntry records one status change of an order
type StatusHistoryEntry struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Status    OrderStatus
	Message   string
	ChangedBy *uuid.UUID
	ChangedAt time.Time
}

// Order is the aggregate root for a customer order.
// Status only moves forward one step at a time; cancelled is reachable
// from any non-terminal status and is absorbing.
type Order struct {
	shared.RestaurantAggregateRoot
	OrderNumber           string
	CustomerID            *uuid.UUID
	CustomerName          string
	CustomerPhone         string
	Status                OrderStatus
	PaymentMethod         PaymentMethod
	PaymentStatus         PaymentStatus
	Subtotal              decimal.Decimal
	TaxAmount             decimal.Decimal
	DeliveryFee           decimal.Decimal
	TotalAmount           decimal.Decimal // Subtotal + TaxAmount + DeliveryFee
	DeliveryAddress       string
	CustomerNotes         string
	EstimatedDeliveryTime *time.Time
	DeliveredAt           *time.Time
	CancelledAt           *time.Time
	CancelReason          string
	Items                 []OrderItem
	StatusHistory         []StatusHistoryEntry
}

// NewOrder creates a pending order with its initial history entry
func NewOrder(restaurantID uuid.UUID, orderNumber, customerName, customerPhone string, method PaymentMethod) (*Order, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if strings.TrimSpace(customerName) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Invalid payment method: %s", method))
	}

	order := &Order{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		OrderNumber:             orderNumber,
		CustomerName:            strings.TrimSpace(customerName),
		CustomerPhone:           valueobject.NormalizePhone(customerPhone),
		Status:                  OrderStatusPending,
		PaymentMethod:           method,
		PaymentStatus:           PaymentStatusPending,
		Subtotal:                decimal.Zero,
		TaxAmount:               decimal.Zero,
		DeliveryFee:             decimal.Zero,
		TotalAmount:             decimal.Zero,
		Items:                   make([]OrderItem, 0),
		StatusHistory:           make([]StatusHistoryEntry, 0, len(lifecycle)),
	}
	order.appendHistory(OrderStatusPending, StatusMessage(OrderStatusPending), nil, order.CreatedAt)

	return order, nil
}

// SetCustomer links the order to a customer record
func (o *Order) SetCustomer(customerID uuid.UUID) {
	o.CustomerID = &customerID
	o.Touch()
}

// AddItem adds a line to a pending order
func (o *Order) AddItem(menuItemID uuid.UUID, name string, quantity int, unitPrice valueobject.Money, instructions string) (*OrderItem, error) {
	if o.Status != OrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to an order that is no longer pending")
	}

	item, err := NewOrderItem(o.ID, menuItemID, name, quantity, unitPrice, instructions)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.Touch()

	return item, nil
}

// SetDeliveryFee sets the delivery fee of a pending order
func (o *Order) SetDeliveryFee(fee valueobject.Money) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change fees of an order that is no longer pending")
	}
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_DELIVERY_FEE", "Delivery fee cannot be negative")
	}
	o.DeliveryFee = fee.Amount()
	o.recalculateTotals()
	o.Touch()
	return nil
}

// SetTaxAmount sets the tax of a pending order
func (o *Order) SetTaxAmount(tax valueobject.Money) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change taxes of an order that is no longer pending")
	}
	if tax.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax amount cannot be negative")
	}
	o.TaxAmount = tax.Amount()
	o.recalculateTotals()
	o.Touch()
	return nil
}

// SetDeliveryAddress sets the single-line delivery address
func (o *Order) SetDeliveryAddress(address string) {
	o.DeliveryAddress = strings.TrimSpace(address)
	o.Touch()
}

// SetCustomerNotes sets free-form notes such as the change request
func (o *Order) SetCustomerNotes(notes string) {
	o.CustomerNotes = strings.TrimSpace(notes)
	o.Touch()
}

// SetEstimatedDeliveryTime records when the order is expected to arrive
func (o *Order) SetEstimatedDeliveryTime(at time.Time) error {
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change estimate of a %s order", o.Status))
	}
	o.EstimatedDeliveryTime = &at
	o.Touch()
	return nil
}

// Place finalizes a new order and raises OrderPlaced.
// The order must have at least one item.
func (o *Order) Place() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can be placed")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot place an order without items")
	}
	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// Advance moves the order to the next status of the lifecycle
func (o *Order) Advance(changedBy *uuid.UUID) error {
	next, ok := o.Status.Next()
	if !ok {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot advance a %s order", o.Status))
	}
	return o.AdvanceTo(next, changedBy)
}

// AdvanceTo moves the order to target. Only the adjacent next status is
// accepted; moving to cancelled delegates to Cancel.
func (o *Order) AdvanceTo(target OrderStatus, changedBy *uuid.UUID) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status: %s", target))
	}
	if target == OrderStatusCancelled {
		return o.Cancel("", changedBy)
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change status of a %s order", o.Status))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	if target == OrderStatusConfirmed && len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	from := o.Status
	o.Status = target
	if target == OrderStatusDelivered {
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	o.appendHistory(target, StatusMessage(target), changedBy, now)

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, changedBy))

	return nil
}

// Cancel cancels the order from any non-terminal status
func (o *Order) Cancel(reason string, changedBy *uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	from := o.Status
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = strings.TrimSpace(reason)
	o.UpdatedAt = now

	msg := StatusMessage(OrderStatusCancelled)
	if o.CancelReason != "" {
		msg += ": " + o.CancelReason
	}
	o.appendHistory(OrderStatusCancelled, msg, changedBy, now)

	o.AddDomainEvent(NewOrderCancelledEvent(o, from, changedBy))

	return nil
}

// UpdatePaymentStatus changes the payment status following the payment rules
func (o *Order) UpdatePaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", fmt.Sprintf("Unknown payment status: %s", status))
	}
	if !o.PaymentStatus.CanTransitionTo(status) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change payment from %s to %s", o.PaymentStatus, status))
	}

	from := o.PaymentStatus
	o.PaymentStatus = status
	o.Touch()

	o.AddDomainEvent(NewOrderPaymentStatusChangedEvent(o, from))

	return nil
}

func (o *Order) appendHistory(status OrderStatus, message string, changedBy *uuid.UUID, at time.Time) {
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		Message:   message,
		ChangedBy: changedBy,
		ChangedAt: at,
	})
}

// recalculateTotals keeps TotalAmount == Subtotal + TaxAmount + DeliveryFee
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.TotalAmount = o.Subtotal.Add(o.TaxAmount).Add(o.DeliveryFee)
}

// TotalMoney returns the order total as Money
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoney(o.TotalAmount)
}

// ItemCount returns the number of lines
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all line quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// IsPending returns true if the order has not been confirmed yet
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsDelivered returns true if the order reached the customer
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}

// IsCancelled returns true if the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsTerminal returns true if no further status change is possible
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// HasCustomer reports whether the order is linked to a customer record
func (o *Order) HasCustomer() bool {
	return o.CustomerID != nil && *o.CustomerID != uuid.Nil
}
