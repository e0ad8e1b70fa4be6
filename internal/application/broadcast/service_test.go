package broadcast

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/catalog"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRouter struct {
	mock.Mock
}

func (m *MockRouter) Publish(ctx context.Context, msg *broadcast.Message) (int, error) {
	args := m.Called(ctx, msg)
	return args.Int(0), args.Error(1)
}

func (m *MockRouter) Stats() broadcast.Stats {
	args := m.Called()
	return args.Get(0).(broadcast.Stats)
}

func TestService_PublishPinsManagerToOwnPartner(t *testing.T) {
	ctx := context.Background()
	router := new(MockRouter)
	svc := NewService(router, nil)
	own, other := uuid.New(), uuid.New()
	router.On("Publish", ctx, mock.MatchedBy(func(m *broadcast.Message) bool {
		return m.Target.PartnerID != nil && *m.Target.PartnerID == own && m.Type == "promo"
	})).Return(3, nil)

	res, err := svc.Publish(ctx, identity.RoleManager, own, PublishRequest{
		Type: "promo", Payload: json.RawMessage(`{"text":"10% off"}`), PartnerID: &other,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Delivered)
	router.AssertExpectations(t)
}

func TestService_PublishAdminKeepsTarget(t *testing.T) {
	ctx := context.Background()
	router := new(MockRouter)
	svc := NewService(router, nil)
	router.On("Publish", ctx, mock.MatchedBy(func(m *broadcast.Message) bool {
		return m.Target.PartnerID == nil && m.Target.Role == identity.RoleCashier
	})).Return(0, nil)

	_, err := svc.Publish(ctx, identity.RoleAdmin, uuid.New(), PublishRequest{Type: "maintenance", Role: "cashier"})
	require.NoError(t, err)
	router.AssertExpectations(t)
}

func TestService_PublishInvalidChannel(t *testing.T) {
	router := new(MockRouter)
	svc := NewService(router, nil)

	_, err := svc.Publish(context.Background(), identity.RoleAdmin, uuid.New(), PublishRequest{Type: "x", Channel: "Not Valid"})
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_CHANNEL", de.Code)
	router.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestService_PublishWhenStopped(t *testing.T) {
	ctx := context.Background()
	router := new(MockRouter)
	svc := NewService(router, nil)
	router.On("Publish", ctx, mock.Anything).Return(0, shared.ErrUnavailable)

	_, err := svc.Publish(ctx, identity.RoleAdmin, uuid.New(), PublishRequest{Type: "x"})
	assert.ErrorIs(t, err, shared.ErrUnavailable)
}

func TestEventForwarder_SendsToPartnerChannel(t *testing.T) {
	ctx := context.Background()
	router := new(MockRouter)
	h := NewEventForwarder(router, nil)
	partnerID := uuid.New()
	sale := &trade.Sale{Number: "S-1", Total: decimal.NewFromInt(50)}
	sale.ID = uuid.New()
	sale.PartnerID = partnerID
	evt := trade.NewSaleCompletedEvent(sale)

	router.On("Publish", ctx, mock.MatchedBy(func(m *broadcast.Message) bool {
		var body map[string]any
		_ = json.Unmarshal(m.Payload, &body)
		return m.Type == trade.EventTypeSaleCompleted &&
			m.Target.Channel == broadcast.PartnerChannel(partnerID) &&
			body["number"] == "S-1"
	})).Return(1, nil)

	require.NoError(t, h.Handle(ctx, evt))
	router.AssertExpectations(t)
	assert.Contains(t, h.EventTypes(), "stock.low")
}

func TestEventForwarder_IgnoresStoppedRouter(t *testing.T) {
	ctx := context.Background()
	router := new(MockRouter)
	h := NewEventForwarder(router, nil)
	router.On("Publish", ctx, mock.Anything).Return(0, shared.ErrUnavailable)

	o := &trade.PurchaseOrder{Number: "PO-1"}
	o.ID = uuid.New()
	o.PartnerID = uuid.New()
	assert.NoError(t, h.Handle(ctx, trade.NewPurchaseOrderReceivedEvent(o)))
}

type alertSwitch map[uuid.UUID]bool

func (a alertSwitch) LowStockAlerts(_ context.Context, partnerID uuid.UUID) bool {
	on, ok := a[partnerID]
	return !ok || on
}

func TestEventForwarder_LowStockAlertsSetting(t *testing.T) {
	ctx := context.Background()
	muted, loud := uuid.New(), uuid.New()
	router := new(MockRouter)
	h := NewEventForwarder(router, nil)
	h.SetAlertPolicy(alertSwitch{muted: false, loud: true})

	lowStock := func(partnerID uuid.UUID) shared.DomainEvent {
		p := &catalog.Product{Name: "Oil filter"}
		p.ID = uuid.New()
		p.PartnerID = partnerID
		return catalog.NewStockLowEvent(p)
	}
	router.On("Publish", ctx, mock.MatchedBy(func(m *broadcast.Message) bool {
		return m.Target.Channel == broadcast.PartnerChannel(loud)
	})).Return(1, nil)

	require.NoError(t, h.Handle(ctx, lowStock(muted)))
	require.NoError(t, h.Handle(ctx, lowStock(loud)))
	router.AssertNumberOfCalls(t, "Publish", 1)

	// Other events ignore the setting
	sale := &trade.Sale{Number: "S-2"}
	sale.ID = uuid.New()
	sale.PartnerID = muted
	router.On("Publish", ctx, mock.MatchedBy(func(m *broadcast.Message) bool {
		return m.Type == trade.EventTypeSaleCompleted
	})).Return(1, nil)
	require.NoError(t, h.Handle(ctx, trade.NewSaleCompletedEvent(sale)))
	router.AssertNumberOfCalls(t, "Publish", 2)
}
