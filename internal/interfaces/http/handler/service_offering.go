package handler

import (
	catalogapp "github.com/autocare/platform/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ServiceOfferingHandler handles the workshop service endpoints
type ServiceOfferingHandler struct {
	BaseHandler
	service *catalogapp.ServiceOfferingService
}

// NewServiceOfferingHandler creates a new ServiceOfferingHandler
func NewServiceOfferingHandler(service *catalogapp.ServiceOfferingService) *ServiceOfferingHandler {
	return &ServiceOfferingHandler{
		service: service,
	}
}

// List returns services. Without partner_id every partner's active
// services are listed.
// GET /api/v1/services
func (h *ServiceOfferingHandler) List(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var filter catalogapp.ServiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	services, err := h.service.List(c.Request.Context(), partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, services)
}

// GetByID returns one of the caller's services
// GET /api/v1/services/:id
func (h *ServiceOfferingHandler) GetByID(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "service")
	if !ok {
		return
	}

	svc, err := h.service.GetByID(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, svc)
}

// Create adds a service
// POST /api/v1/services
func (h *ServiceOfferingHandler) Create(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var req catalogapp.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	svc, err := h.service.Create(c.Request.Context(), partnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, svc)
}

// Update changes a service
// PUT /api/v1/services/:id
func (h *ServiceOfferingHandler) Update(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "service")
	if !ok {
		return
	}

	var req catalogapp.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	svc, err := h.service.Update(c.Request.Context(), partnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, svc)
}

// Delete removes a service
// DELETE /api/v1/services/:id
func (h *ServiceOfferingHandler) Delete(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "service")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), partnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
