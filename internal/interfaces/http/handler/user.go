package handler

import (
	"github.com/autocare/platform/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// List returns the users the caller may see
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter identity.UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Invalid(c, err)
		return
	}

	users, err := h.userService.List(c.Request.Context(), a, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page(&h.BaseHandler, c, users)
}

// GetByID returns one user
// GET /api/v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), a, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Create adds a user
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), a, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Update changes a user's profile, role, password or status
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	var req identity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), a, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Delete removes a user
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.pathID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), a, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
