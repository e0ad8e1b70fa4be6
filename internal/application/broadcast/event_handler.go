package broadcast

import (
	"context"
	"errors"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertPolicy tells whether a partner wants stock.low alerts
type AlertPolicy interface {
	LowStockAlerts(ctx context.Context, partnerID uuid.UUID) bool
}

// EventForwarder pushes selected domain events to the owning partner's channel
type EventForwarder struct {
	router Router
	alerts AlertPolicy
	logger *zap.Logger
}

// NewEventForwarder creates a new EventForwarder
func NewEventForwarder(router Router, logger *zap.Logger) *EventForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventForwarder{router: router, logger: logger}
}

// SetAlertPolicy makes stock.low forwarding follow the partner's low_stock_alerts
func (h *EventForwarder) SetAlertPolicy(p AlertPolicy) {
	h.alerts = p
}

// EventTypes returns the event types this handler is interested in
func (h *EventForwarder) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCompleted,
		catalog.EventTypeStockLow,
		trade.EventTypePurchaseOrderReceived,
	}
}

// Handle broadcasts the event with the event itself as payload
func (h *EventForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	if event.EventType() == catalog.EventTypeStockLow && h.alerts != nil &&
		!h.alerts.LowStockAlerts(ctx, event.PartnerID()) {
		h.logger.Debug("Low stock alerts disabled, event not broadcast",
			zap.String("partner_id", event.PartnerID().String()))
		return nil
	}
	msg, err := broadcast.NewMessage(event.EventType(), event, broadcast.Target{
		Channel: broadcast.PartnerChannel(event.PartnerID()),
	})
	if err != nil {
		return err
	}
	n, err := h.router.Publish(ctx, msg)
	if errors.Is(err, shared.ErrUnavailable) {
		// the router is shut down; events are not queued for later
		h.logger.Debug("Broadcast router stopped, event dropped", zap.String("event_type", event.EventType()))
		return nil
	}
	if err != nil {
		return err
	}
	h.logger.Debug("Event broadcast",
		zap.String("event_type", event.EventType()),
		zap.String("partner_id", event.PartnerID().String()),
		zap.Int("delivered", n))
	return nil
}
