package handler

import (
	settingsapp "github.com/autocare/platform/internal/application/settings"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettingsHandler serves partner preferences. On the agent the partner is
// fixed by configuration instead of taken from the token.
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.SettingsService
	localPartner    *uuid.UUID
}

// NewSettingsHandler creates a SettingsHandler scoped to the caller's partner
func NewSettingsHandler(settingsService *settingsapp.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

// NewLocalSettingsHandler creates a SettingsHandler for the agent's device partner
func NewLocalSettingsHandler(settingsService *settingsapp.SettingsService, partnerID uuid.UUID) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		localPartner:    &partnerID,
	}
}

// SetSettingRequest is the body of PUT /settings/:key
type SetSettingRequest struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) partner(c *gin.Context) (uuid.UUID, bool) {
	if h.localPartner != nil {
		return *h.localPartner, true
	}
	partnerID, _, ok := h.caller(c)
	return partnerID, ok
}

// GetAll returns every setting as a key/value map
// GET /settings
func (h *SettingsHandler) GetAll(c *gin.Context) {
	partnerID, ok := h.partner(c)
	if !ok {
		return
	}

	values, err := h.settingsService.Values(c.Request.Context(), partnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, values)
}

// UpdateAll upserts the given keys
// PUT /settings
func (h *SettingsHandler) UpdateAll(c *gin.Context) {
	partnerID, ok := h.partner(c)
	if !ok {
		return
	}

	var req settingsapp.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	items, err := h.settingsService.Update(c.Request.Context(), partnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// Get returns one setting
// GET /settings/:key
func (h *SettingsHandler) Get(c *gin.Context) {
	partnerID, ok := h.partner(c)
	if !ok {
		return
	}

	item, err := h.settingsService.Get(c.Request.Context(), partnerID, c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Set writes one setting
// PUT /settings/:key
func (h *SettingsHandler) Set(c *gin.Context) {
	partnerID, ok := h.partner(c)
	if !ok {
		return
	}

	var req SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	key := c.Param("key")
	ctx := c.Request.Context()
	if _, err := h.settingsService.Update(ctx, partnerID, settingsapp.UpdateSettingsRequest{
		Values: map[string]string{key: req.Value},
	}); err != nil {
		h.HandleError(c, err)
		return
	}

	item, err := h.settingsService.Get(ctx, partnerID, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}

// Delete removes a setting
// DELETE /settings/:key
func (h *SettingsHandler) Delete(c *gin.Context) {
	partnerID, ok := h.partner(c)
	if !ok {
		return
	}

	if err := h.settingsService.Delete(c.Request.Context(), partnerID, c.Param("key")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
