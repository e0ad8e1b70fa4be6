package handler

import (
	catalogapp "github.com/autocare/platform/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create adds a product to the caller's catalog
// POST /api/v1/catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	partnerID, userID, ok := h.caller(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), partnerID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID returns a product
// GET /api/v1/catalog/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// GetBySKU looks a product up by SKU
// GET /api/v1/catalog/products/sku/:sku
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	sku := c.Param("sku")
	if sku == "" {
		h.BadRequest(c, "SKU is required")
		return
	}

	product, err := h.productService.GetBySKU(c.Request.Context(), partnerID, sku)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List returns a page of products
// GET /api/v1/catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	products, err := h.productService.List(c.Request.Context(), partnerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, products)
}

// Update changes a product
// PUT /api/v1/catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), partnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete removes a product
// DELETE /api/v1/catalog/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), partnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
