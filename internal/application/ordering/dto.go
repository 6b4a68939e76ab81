package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/checkout"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// PlaceOrderRequest is the checkout submission of a customer
type PlaceOrderRequest struct {
	checkout.Form
	IdempotencyKey string `json:"-"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	MenuItemID          uuid.UUID       `json:"menu_item_id"`
	ItemName            string          `json:"item_name"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// StatusHistoryResponse represents a status history entry
type StatusHistoryResponse struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	ChangedBy *uuid.UUID `json:"changed_by,omitempty"`
	ChangedAt time.Time  `json:"changed_at"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                    uuid.UUID               `json:"id"`
	RestaurantID          uuid.UUID               `json:"restaurant_id"`
	OrderNumber           string                  `json:"order_number"`
	CustomerID            *uuid.UUID              `json:"customer_id,omitempty"`
	CustomerName          string                  `json:"customer_name"`
	CustomerPhone         string                  `json:"customer_phone"`
	Status                string                  `json:"status"`
	PaymentMethod         string                  `json:"payment_method"`
	PaymentStatus         string                  `json:"payment_status"`
	Subtotal              decimal.Decimal         `json:"subtotal"`
	TaxAmount             decimal.Decimal         `json:"tax_amount"`
	DeliveryFee           decimal.Decimal         `json:"delivery_fee"`
	TotalAmount           decimal.Decimal         `json:"total_amount"`
	DeliveryAddress       string                  `json:"delivery_address"`
	CustomerNotes         string                  `json:"customer_notes,omitempty"`
	EstimatedDeliveryTime *time.Time              `json:"estimated_delivery_time,omitempty"`
	DeliveredAt           *time.Time              `json:"delivered_at,omitempty"`
	CancelledAt           *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason          string                  `json:"cancel_reason,omitempty"`
	Items                 []OrderItemResponse     `json:"items"`
	StatusHistory         []StatusHistoryResponse `json:"status_history"`
	Version               int                     `json:"version"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

// OrderListFilter narrows order listings
type OrderListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// UpdateStatusRequest moves an order to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// CancelOrderRequest cancels an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdatePaymentStatusRequest changes the payment status
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending paid failed refunded"`
}

// StatsResponse is the order overview of a period
type StatsResponse struct {
	Days              int              `json:"days"`
	TotalOrders       int64            `json:"total_orders"`
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
	StatusCounts      map[string]int64 `json:"status_counts"`
}

// BoardColumn is one kanban column
type BoardColumn struct {
	Status string          `json:"status"`
	Orders []OrderResponse `json:"orders"`
}

// BoardResponse is the kanban board, one column per status
type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}

// TrackingResponse is what a customer sees on the tracking page
type TrackingResponse struct {
	OrderNumber      string                  `json:"order_number"`
	Status           string                  `json:"status"`
	StatusMessage    string                  `json:"status_message"`
	CustomerName     string                  `json:"customer_name"`
	PaymentMethod    string                  `json:"payment_method"`
	TotalAmount      decimal.Decimal         `json:"total_amount"`
	DeliveryAddress  string                  `json:"delivery_address"`
	Items            []OrderItemResponse     `json:"items"`
	History          []StatusHistoryResponse `json:"history"`
	EstimatedMinutes int                     `json:"estimated_minutes"`
	ContactURL       string                  `json:"contact_url,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ToOrderResponse converts a domain order to a response
func ToOrderResponse(o *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = toItemResponse(item)
	}
	return OrderResponse{
		ID:                    o.ID,
		RestaurantID:          o.RestaurantID,
		OrderNumber:           o.OrderNumber,
		CustomerID:            o.CustomerID,
		CustomerName:          o.CustomerName,
		CustomerPhone:         o.CustomerPhone,
		Status:                string(o.Status),
		PaymentMethod:         string(o.PaymentMethod),
		PaymentStatus:         string(o.PaymentStatus),
		Subtotal:              o.Subtotal,
		TaxAmount:             o.TaxAmount,
		DeliveryFee:           o.DeliveryFee,
		TotalAmount:           o.TotalAmount,
		DeliveryAddress:       o.DeliveryAddress,
		CustomerNotes:         o.CustomerNotes,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
		DeliveredAt:           o.DeliveredAt,
		CancelledAt:           o.CancelledAt,
		CancelReason:          o.CancelReason,
		Items:                 items,
		StatusHistory:         toHistoryResponses(o.StatusHistory, false),
		Version:               o.Version,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

// ToOrderResponses converts a list of domain orders
func ToOrderResponses(orders []ordering.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

func toItemResponse(item ordering.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:                  item.ID,
		MenuItemID:          item.MenuItemID,
		ItemName:            item.ItemName,
		Quantity:            item.Quantity,
		UnitPrice:           item.UnitPrice,
		TotalPrice:          item.TotalPrice,
		SpecialInstructions: item.SpecialInstructions,
	}
}

// toHistoryResponses converts history entries; public hides staff ids and
// shows pending as "received".
func toHistoryResponses(entries []ordering.StatusHistoryEntry, public bool) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, len(entries))
	for i, e := range entries {
		r := StatusHistoryResponse{
			Status:    string(e.Status),
			Message:   e.Message,
			ChangedAt: e.ChangedAt,
		}
		if public {
			r.Status = e.Status.DisplayName()
		} else {
			r.ChangedBy = e.ChangedBy
		}
		out[i] = r
	}
	return out
}
