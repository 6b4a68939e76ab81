package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/customer"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerService handles customer records built from checkouts
type CustomerService struct {
	customerRepo   customer.CustomerRepository
	eventPublisher shared.EventPublisher
	location       *time.Location
	logger         *zap.Logger
	now            func() time.Time
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo customer.CustomerRepository, location *time.Location, logger *zap.Logger) *CustomerService {
	if location == nil {
		location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		location:     location,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// FindOrCreate returns the customer with the given phone, creating it when
// missing. Changed contact data of an existing customer is saved.
func (s *CustomerService) FindOrCreate(ctx context.Context, restaurantID uuid.UUID, phone, name, email, address string) (*customer.Customer, error) {
	digits := valueobject.NormalizePhone(phone)

	c, err := s.customerRepo.FindByPhone(ctx, restaurantID, digits)
	if errors.Is(err, shared.ErrNotFound) {
		c, err = s.create(ctx, restaurantID, digits, name, email, address)
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return c, err
		}
		// Another checkout registered the phone between lookup and insert
		c, err = s.customerRepo.FindByPhone(ctx, restaurantID, digits)
	}
	if err != nil {
		return nil, err
	}

	changed, err := c.UpdateContact(name, email, address)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}
	if err := s.customerRepo.UpdateContact(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)
	return c, nil
}

func (s *CustomerService) create(ctx context.Context, restaurantID uuid.UUID, phone, name, email, address string) (*customer.Customer, error) {
	c, err := customer.NewCustomer(restaurantID, name, phone)
	if err != nil {
		return nil, err
	}
	if _, err := c.UpdateContact("", email, address); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, c)
	return c, nil
}

// RecordOrder adds a placed order to the customer's totals
func (s *CustomerService) RecordOrder(ctx context.Context, restaurantID, customerID uuid.UUID, amount decimal.Decimal, at time.Time) error {
	if err := customer.ValidateOrderAmount(amount); err != nil {
		return err
	}
	c, err := s.customerRepo.AddOrder(ctx, restaurantID, customerID, amount, at)
	if err != nil {
		return err
	}
	c.OrderRecorded()
	s.publish(ctx, c)
	return nil
}

// Get retrieves a customer
func (s *CustomerService) Get(ctx context.Context, restaurantID, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(c)
	return &response, nil
}

// List retrieves customers ordered by name
func (s *CustomerService) List(ctx context.Context, restaurantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.OrderBy = "name"
	domainFilter.OrderDir = "asc"
	domainFilter.Search = filter.Search
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	customers, err := s.customerRepo.FindAllForRestaurant(ctx, restaurantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.CountForRestaurant(ctx, restaurantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCustomerResponses(customers), total, nil
}

// Stats returns the customer overview; new customers count from the first
// day of the current local month.
func (s *CustomerService) Stats(ctx context.Context, restaurantID uuid.UUID) (*StatsResponse, error) {
	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)

	stats, err := s.customerRepo.Stats(ctx, restaurantID, monthStart)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		TotalCustomers:        stats.TotalCustomers,
		TotalRevenue:          stats.TotalRevenue,
		TotalOrders:           stats.TotalOrders,
		AverageOrderValue:     stats.AverageOrderValue(),
		NewCustomersThisMonth: stats.NewCustomersThisMonth,
	}, nil
}

// Top returns the customers who spent the most
func (s *CustomerService) Top(ctx context.Context, restaurantID uuid.UUID, limit int) ([]CustomerResponse, error) {
	if limit <= 0 {
		limit = customer.DefaultTopLimit
	}
	customers, err := s.customerRepo.FindTop(ctx, restaurantID, limit)
	if err != nil {
		return nil, err
	}
	return ToCustomerResponses(customers), nil
}

func (s *CustomerService) publish(ctx context.Context, c *customer.Customer) {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish customer events", zap.String("customer_id", c.ID.String()), zap.Error(err))
	}
}
