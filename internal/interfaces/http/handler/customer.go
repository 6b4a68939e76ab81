package handler

import (
	"github.com/gin-gonic/gin"
	customerapp "github.com/restaurant/backend/internal/application/customer"
)

const (
	defaultCustomerPageSize = 20
	defaultTopCustomers     = 10
)

// CustomerHandler exposes the customer records built from orders
type CustomerHandler struct {
	BaseHandler
	customerService *customerapp.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *customerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List godoc
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Param        search query string false "Name or phone"
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]customerapp.CustomerResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	var filter customerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultCustomerPageSize
	}

	customers, total, err := h.customerService.List(c.Request.Context(), restaurantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} dto.Response{data=customerapp.CustomerResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.Get(c.Request.Context(), restaurantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// Stats godoc
// @Summary      Customer overview
// @Tags         customers
// @Produce      json
// @Success      200 {object} dto.Response{data=customerapp.StatsResponse}
// @Security     BearerAuth
// @Router       /customers/stats [get]
func (h *CustomerHandler) Stats(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	stats, err := h.customerService.Stats(c.Request.Context(), restaurantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Top godoc
// @Summary      Top customers
// @Description  Customers ordered by total spent
// @Tags         customers
// @Produce      json
// @Param        limit query int false "Maximum customers" default(10)
// @Success      200 {object} dto.Response{data=[]customerapp.CustomerResponse}
// @Security     BearerAuth
// @Router       /customers/top [get]
func (h *CustomerHandler) Top(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}

	customers, err := h.customerService.Top(c.Request.Context(), restaurantID, queryInt(c, "limit", defaultTopCustomers))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customers)
}
