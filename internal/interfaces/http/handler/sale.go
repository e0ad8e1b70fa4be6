package handler

import (
	"github.com/autocare/platform/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles point-of-sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService *trade.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *trade.SaleService) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
	}
}

// Create rings up a sale. A completed sale deducts stock immediately.
// POST /api/v1/sales
func (h *SaleHandler) Create(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req trade.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), partnerID, &userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Complete completes a pending sale
// POST /api/v1/sales/:id/complete
func (h *SaleHandler) Complete(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.Complete(c.Request.Context(), partnerID, id, &userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Refund refunds a completed sale and restores its stock
// POST /api/v1/sales/:id/refund
func (h *SaleHandler) Refund(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	var req trade.RefundSaleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Invalid(c, err)
			return
		}
	}

	sale, err := h.saleService.Refund(c.Request.Context(), partnerID, id, &userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetByID returns a sale
// GET /api/v1/sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List returns a page of sales
// GET /api/v1/sales
func (h *SaleHandler) List(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var filter trade.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	sales, err := h.saleService.List(c.Request.Context(), partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, sales)
}
