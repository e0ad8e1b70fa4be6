package handler

import (
	"context"

	"github.com/autocare/platform/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *trade.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *trade.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		orderService: orderService,
	}
}

// Create opens a draft order
// POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req trade.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), partnerID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// AddItem adds a line to a draft order
// POST /api/v1/purchase-orders/:id/items
func (h *PurchaseOrderHandler) AddItem(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}

	var req trade.AddPurchaseOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	order, err := h.orderService.AddItem(c.Request.Context(), partnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByID returns an order
// GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List returns a page of orders
// GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var filter trade.PurchaseOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	orders, err := h.orderService.List(c.Request.Context(), partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, orders)
}

// Submit places a draft order with the supplier
// POST /api/v1/purchase-orders/:id/submit
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.orderService.Submit)
}

// Cancel cancels a draft or ordered order
// POST /api/v1/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, h.orderService.Cancel)
}

// Receive books an ordered order into stock
// POST /api/v1/purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}

	order, err := h.orderService.Receive(c.Request.Context(), partnerID, id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete removes a draft order
// DELETE /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), partnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

type orderTransition func(ctx context.Context, partnerID, orderID uuid.UUID) (*trade.PurchaseOrderResponse, error)

func (h *PurchaseOrderHandler) transition(c *gin.Context, apply orderTransition) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "purchase order")
	if !ok {
		return
	}

	order, err := apply(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
