package models

import (
	"time"

	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	RestaurantAggregateModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Phone       string          `gorm:"type:varchar(20);not null;index"`
	Email       string          `gorm:"type:varchar(200)"`
	Address     string          `gorm:"type:text"`
	Notes       string          `gorm:"type:text"`
	TotalOrders int             `gorm:"not null;default:0"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastOrderAt *time.Time
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		RestaurantAggregateRoot: m.ToRestaurantAggregateRoot(),
		Name:                    m.Name,
		Phone:                   m.Phone,
		Email:                   m.Email,
		Address:                 m.Address,
		Notes:                   m.Notes,
		TotalOrders:             m.TotalOrders,
		TotalSpent:              m.TotalSpent,
		LastOrderAt:             m.LastOrderAt,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *customer.Customer) {
	m.FromDomainRestaurantAggregateRoot(c.RestaurantAggregateRoot)
	m.Name = c.Name
	m.Phone = c.Phone
	m.Email = c.Email
	m.Address = c.Address
	m.Notes = c.Notes
	m.TotalOrders = c.TotalOrders
	m.TotalSpent = c.TotalSpent
	m.LastOrderAt = c.LastOrderAt
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
