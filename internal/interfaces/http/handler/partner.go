package handler

import (
	"github.com/autocare/platform/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// PartnerHandler handles partner administration and the public
// service-center directory
type PartnerHandler struct {
	BaseHandler
	partnerService *identity.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerService *identity.PartnerService) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
	}
}

// List returns a page of partners
// GET /api/v1/partners
func (h *PartnerHandler) List(c *gin.Context) {
	var filter identity.PartnerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	partners, err := h.partnerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, partners)
}

// ListServiceCenters returns active service centers
// GET /api/v1/service-centers
func (h *PartnerHandler) ListServiceCenters(c *gin.Context) {
	var filter identity.PartnerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	centers, err := h.partnerService.ListServiceCenters(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, centers)
}

// GetByID returns one partner
// GET /api/v1/partners/:id
func (h *PartnerHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	partner, err := h.partnerService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// Create registers a partner
// POST /api/v1/partners
func (h *PartnerHandler) Create(c *gin.Context) {
	var req identity.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	partner, err := h.partnerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, partner)
}

// Update changes a partner's contact details
// PUT /api/v1/partners/:id
func (h *PartnerHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	var req identity.UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	partner, err := h.partnerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// Suspend blocks a partner's users from logging in
// POST /api/v1/partners/:id/suspend
func (h *PartnerHandler) Suspend(c *gin.Context) {
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	partner, err := h.partnerService.Suspend(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// Activate lifts a suspension
// POST /api/v1/partners/:id/activate
func (h *PartnerHandler) Activate(c *gin.Context) {
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	partner, err := h.partnerService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, partner)
}

// Delete removes a partner
// DELETE /api/v1/partners/:id
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}

	if err := h.partnerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
