package handler

import (
	"errors"
	"net/http"

	"github.com/autocare/platform/internal/application/broadcast"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/logger"
	"github.com/autocare/platform/internal/infrastructure/realtime"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SocketServer upgrades and runs a WebSocket connection
type SocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, id realtime.Identity) error
}

// BroadcastHandler handles operator broadcasts and the WebSocket endpoint
type BroadcastHandler struct {
	BaseHandler
	service *broadcast.Service
	sockets SocketServer
}

// NewBroadcastHandler creates a new BroadcastHandler
func NewBroadcastHandler(service *broadcast.Service, sockets SocketServer) *BroadcastHandler {
	return &BroadcastHandler{
		service: service,
		sockets: sockets,
	}
}

// Publish sends a message to the matching connections. Managers are pinned
// to their own partner.
// POST /api/v1/broadcast
func (h *BroadcastHandler) Publish(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req broadcast.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Invalid(c, err)
		return
	}

	result, err := h.service.Publish(c.Request.Context(), a.Role, a.PartnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Stats reports connection and delivery counters
// GET /api/v1/broadcast/stats
func (h *BroadcastHandler) Stats(c *gin.Context) {
	h.Success(c, h.service.Stats())
}

// Connect upgrades the request to a WebSocket bound to the caller
// GET /ws
func (h *BroadcastHandler) Connect(c *gin.Context) {
	a, err := actor(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	err = h.sockets.Serve(c.Writer, c.Request, realtime.Identity{
		UserID:    a.UserID,
		PartnerID: a.PartnerID,
		Role:      a.Role,
	})
	if err == nil {
		return
	}
	if errors.Is(err, shared.ErrUnavailable) {
		h.HandleError(c, err)
		return
	}
	// the upgrader has already answered the client
	logger.GetGinLogger(c).Debug("WebSocket connection failed", zap.Error(err))
}
