package handler

import (
	customerapp "github.com/autocare/platform/internal/application/customer"
	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *customerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *customerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create adds a customer
// POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req customerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), partnerID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID returns a customer
// GET /api/v1/customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List returns a page of customers
// GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	customers, err := h.customerService.List(c.Request.Context(), partnerID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, customers)
}

// Update changes a customer
// PUT /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	var req customerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), partnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete removes a customer
// DELETE /api/v1/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), partnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
