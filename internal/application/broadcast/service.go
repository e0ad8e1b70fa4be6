package broadcast

import (
	"context"
	"encoding/json"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router delivers messages to connected sockets
type Router interface {
	Publish(ctx context.Context, msg *broadcast.Message) (int, error)
	Stats() broadcast.Stats
}

// PublishRequest is the body of POST /broadcast
type PublishRequest struct {
	Type      string          `json:"type" binding:"required,max=100"`
	Payload   json.RawMessage `json:"payload"`
	Channel   string          `json:"channel" binding:"omitempty,channel"`
	UserID    *uuid.UUID      `json:"user_id"`
	Role      string          `json:"role" binding:"omitempty,oneof=admin manager cashier technician"`
	PartnerID *uuid.UUID      `json:"partner_id"`
}

// PublishResult reports the local delivery of a broadcast
type PublishResult struct {
	MessageID uuid.UUID `json:"message_id"`
	Delivered int       `json:"delivered"`
}

// Service publishes operator broadcasts
type Service struct {
	router Router
	logger *zap.Logger
}

// NewService creates a new broadcast Service
func NewService(router Router, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{router: router, logger: logger}
}

// Publish sends a message on behalf of the caller. Only admins may address
// other partners; everybody else is pinned to their own partner.
func (s *Service) Publish(ctx context.Context, callerRole identity.Role, callerPartnerID uuid.UUID, req PublishRequest) (*PublishResult, error) {
	target := broadcast.Target{
		Channel:   req.Channel,
		UserID:    req.UserID,
		Role:      identity.Role(req.Role),
		PartnerID: req.PartnerID,
	}
	if callerRole != identity.RoleAdmin {
		own := callerPartnerID
		target.PartnerID = &own
	}

	var payload any
	if len(req.Payload) > 0 {
		payload = req.Payload
	}
	msg, err := broadcast.NewMessage(req.Type, payload, target)
	if err != nil {
		return nil, err
	}
	n, err := s.router.Publish(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Broadcast published",
		zap.String("message_id", msg.ID.String()),
		zap.String("type", msg.Type),
		zap.Int("delivered", n))
	return &PublishResult{MessageID: msg.ID, Delivered: n}, nil
}

// Stats returns the router state
func (s *Service) Stats() broadcast.Stats {
	return s.router.Stats()
}
