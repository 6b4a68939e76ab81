package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MoneyPlaces is the number of decimal places kept for monetary amounts
const MoneyPlaces = 2

// Money is an immutable amount in the restaurant's currency (BRL).
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money rounded to cents
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(MoneyPlaces)}
}

// NewMoneyFromFloat creates Money from a float64 value
func NewMoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// NewMoneyFromCents creates Money from an integer number of cents
func NewMoneyFromCents(cents int64) Money {
	return Money{amount: decimal.New(cents, -MoneyPlaces)}
}

// NewMoneyFromString parses a decimal string such as "35.90"
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d), nil
}

// ZeroMoney returns a zero amount
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsNegative returns true if the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

// Subtract returns m - other
func (m Money) Subtract(other Money) Money {
	return NewMoney(m.amount.Sub(other.amount))
}

// MultiplyByInt returns m × n, used for line totals
func (m Money) MultiplyByInt(n int) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(n))))
}

// Multiply returns m × factor rounded to cents
func (m Money) Multiply(factor decimal.Decimal) Money {
	return NewMoney(m.amount.Mul(factor))
}

// GreaterThan compares two amounts
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Equals compares two amounts
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String returns the plain amount with two decimals, e.g. "92.90"
func (m Money) String() string {
	return m.amount.StringFixed(MoneyPlaces)
}

// Float64 returns the amount as float64, for API responses only
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// Format renders the amount for Brazilian customers, e.g. "R$ 1.234,50"
func (m Money) Format() string {
	symbol := brPrinter.Sprint(currency.Symbol(currency.BRL))
	return symbol + " " + brPrinter.Sprintf("%.2f", m.Float64())
}

// MarshalJSON encodes the amount as a JSON number string with two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.StringFixed(MoneyPlaces))
}

// UnmarshalJSON accepts either a JSON number or a string
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money value: %w", err)
	}
	*m = NewMoney(d)
	return nil
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.amount.StringFixed(MoneyPlaces), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}
