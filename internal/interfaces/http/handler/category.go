package handler

import (
	catalogapp "github.com/autocare/platform/internal/application/catalog"
	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category-related API endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// Create adds a category
// POST /api/v1/catalog/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), partnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, category)
}

// GetByID returns a category
// GET /api/v1/catalog/categories/:id
func (h *CategoryHandler) GetByID(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(c.Request.Context(), partnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// List returns a page of categories
// GET /api/v1/catalog/categories
func (h *CategoryHandler) List(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	categories, err := h.categoryService.List(c.Request.Context(), partnerID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, categories)
}

// Update changes a category
// PUT /api/v1/catalog/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}

	var req catalogapp.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), partnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, category)
}

// Delete removes a category that no product references
// DELETE /api/v1/catalog/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	partnerID, _, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), partnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
