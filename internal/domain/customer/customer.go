package customer

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultTopLimit is the default size of the top customers list
const DefaultTopLimit = 10

// Customer is a person who ordered from a restaurant, keyed by phone
type Customer struct {
	shared.RestaurantAggregateRoot
	Name        string
	Phone       string // digits only, unique per restaurant
	Email       string
	Address     string
	Notes       string
	TotalOrders int
	TotalSpent  decimal.Decimal
	LastOrderAt *time.Time
}

// NewCustomer creates a customer with no orders yet
func NewCustomer(restaurantID uuid.UUID, name, phone string) (*Customer, error) {
	if restaurantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RESTAURANT", "Restaurant ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	digits := valueobject.NormalizePhone(phone)
	if !valueobject.IsValidPhone(digits) {
		return nil, shared.NewDomainError("INVALID_PHONE", "Phone must have at least 10 digits")
	}

	c := &Customer{
		RestaurantAggregateRoot: shared.NewRestaurantAggregateRoot(restaurantID),
		Name:                    name,
		Phone:                   digits,
		TotalSpent:              decimal.Zero,
	}
	c.AddDomainEvent(NewCustomerChangedEvent(c, EventTypeCustomerCreated))
	return c, nil
}

// UpdateContact applies non-empty values that differ from the stored ones.
// It reports whether anything changed.
func (c *Customer) UpdateContact(name, email, address string) (bool, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	address = strings.TrimSpace(address)

	if email != "" {
		if !valueobject.IsValidEmail(email) {
			return false, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
		email = valueobject.NormalizeEmail(email)
	}

	changed := false
	if name != "" && name != c.Name {
		c.Name = name
		changed = true
	}
	if email != "" && email != c.Email {
		c.Email = email
		changed = true
	}
	if address != "" && address != c.Address {
		c.Address = address
		changed = true
	}

	if changed {
		c.Touch()
		c.AddDomainEvent(NewCustomerChangedEvent(c, EventTypeCustomerUpdated))
	}
	return changed, nil
}

// SetNotes sets staff notes about the customer
func (c *Customer) SetNotes(notes string) {
	c.Notes = strings.TrimSpace(notes)
	c.Touch()
}

// ValidateOrderAmount rejects negative order totals
func ValidateOrderAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Order amount cannot be negative")
	}
	return nil
}

// OrderRecorded raises the update event once the store has added an order to
// the customer's totals.
func (c *Customer) OrderRecorded() {
	c.AddDomainEvent(NewCustomerChangedEvent(c, EventTypeCustomerUpdated))
}

// AverageTicket returns TotalSpent / TotalOrders
func (c *Customer) AverageTicket() decimal.Decimal {
	if c.TotalOrders == 0 {
		return decimal.Zero
	}
	return c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalOrders))).Round(2)
}

// FormattedPhone returns the phone with the display mask
func (c *Customer) FormattedPhone() string {
	return valueobject.FormatPhone(c.Phone)
}
