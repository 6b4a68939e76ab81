// Package checkout holds the rules of the customer checkout wizard:
// cart totals, change calculation, address rendering and per-step validation.
package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PixTiming is when a pix payment is made
type PixTiming string

const (
	PixTimingNow    PixTiming = "now"
	PixTimingPickup PixTiming = "pickup"
)

// CartLine is one menu item in the customer's cart
type CartLine struct {
	MenuItemID uuid.UUID       `json:"menu_item_id" validate:"required"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity" validate:"gt=0"`
	Notes      string          `json:"notes"`
}

// LineTotal returns price × quantity
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal returns Σ price × quantity, rounded to cents
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total.Round(2)
}

// CartQuantity returns the number of units in the cart
func CartQuantity(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// ParseChangeAmount reads a masked currency input ("R$ 100,00", "10000")
// as its digits divided by 100.
func ParseChangeAmount(s string) decimal.Decimal {
	digits := valueobject.DigitsOnly(s)
	if digits == "" {
		return decimal.Zero
	}
	cents, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return cents.Shift(-2).Round(2)
}

// ErrChangeTooLow is returned when the cash given does not exceed the total
var ErrChangeTooLow = shared.NewDomainError("CHANGE_TOO_LOW", "value must be greater than total")

// Change returns the change due for a cash payment
func Change(changeAmount, total decimal.Decimal) (decimal.Decimal, error) {
	if !changeAmount.GreaterThan(total) {
		return decimal.Zero, ErrChangeTooLow
	}
	return changeAmount.Sub(total).Round(2), nil
}

// ChangeNote renders the note attached to cash orders that need change
func ChangeNote(changeAmount decimal.Decimal) string {
	return "Troco para: " + valueobject.NewMoney(changeAmount).Format()
}

// Form is the data collected by the checkout wizard
type Form struct {
	CustomerName  string     `json:"customer_name" validate:"required,notblank,max=200"`
	CEP           string     `json:"cep" validate:"required,notblank"`
	Address       string     `json:"address" validate:"required,notblank"`
	Number        string     `json:"number"`
	Complement    string     `json:"complement"`
	Neighborhood  string     `json:"neighborhood"`
	City          string     `json:"city"`
	State         string     `json:"state" validate:"max=2"`
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=pix card money bank_transfer"`
	PixTiming     PixTiming  `json:"pix_timing"`
	NeedsChange   bool       `json:"needs_change"`
	ChangeAmount  string     `json:"change_amount"`
	Phone         string     `json:"phone" validate:"required,br_phone"`
	Email         string     `json:"email" validate:"omitempty,email"`
	Notes         string     `json:"notes"`
	Items         []CartLine `json:"items"`
}

// Total returns the cart total of the form
func (f Form) Total() decimal.Decimal {
	return CartTotal(f.Items)
}

// DeliveryAddress renders the single-line address stored on the order
func (f Form) DeliveryAddress() (string, error) {
	addr, err := valueobject.NewDeliveryAddress(f.Address, f.Number, f.Neighborhood, f.City, f.State, f.CEP,
		valueobject.WithComplement(f.Complement))
	if err != nil {
		return "", shared.NewValidationError(StepAddress, "address", err.Error())
	}
	return addr.String(), nil
}

// CustomerNotes combines the free-form notes with the change request
func (f Form) CustomerNotes() string {
	notes := strings.TrimSpace(f.Notes)
	if f.PaymentMethod == "money" && f.NeedsChange {
		note := ChangeNote(ParseChangeAmount(f.ChangeAmount))
		if notes == "" {
			return note
		}
		return notes + "\n" + note
	}
	return notes
}

// Normalize applies the input masks to phone and CEP
func (f *Form) Normalize() {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.Phone = valueobject.FormatPhone(f.Phone)
	f.CEP = valueobject.FormatCEP(f.CEP)
	f.State = strings.ToUpper(strings.TrimSpace(f.State))
}
