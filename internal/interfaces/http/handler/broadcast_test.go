package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	broadcastapp "github.com/autocare/platform/internal/application/broadcast"
	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/realtime"
	"github.com/autocare/platform/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBroadcastRouter implements broadcastapp.Router for testing
type MockBroadcastRouter struct {
	mock.Mock
}

func (m *MockBroadcastRouter) Publish(ctx context.Context, msg *broadcast.Message) (int, error) {
	args := m.Called(ctx, msg)
	return args.Int(0), args.Error(1)
}

func (m *MockBroadcastRouter) Stats() broadcast.Stats {
	return m.Called().Get(0).(broadcast.Stats)
}

// stubSockets records the identity a connection was bound to
type stubSockets struct {
	got realtime.Identity
	err error
}

func (s *stubSockets) Serve(_ http.ResponseWriter, _ *http.Request, id realtime.Identity) error {
	s.got = id
	return s.err
}

func TestBroadcastHandler_PublishPinsManagerToPartner(t *testing.T) {
	router := new(MockBroadcastRouter)
	h := NewBroadcastHandler(broadcastapp.NewService(router, nil), &stubSockets{})
	partnerID, otherPartner := uuid.New(), uuid.New()

	router.On("Publish", mock.Anything, mock.MatchedBy(func(msg *broadcast.Message) bool {
		return msg.Type == "promo" && msg.Target.PartnerID != nil && *msg.Target.PartnerID == partnerID
	})).Return(4, nil)

	c, w := newTestContext(http.MethodPost, "/api/v1/broadcast", map[string]any{
		"type":       "promo",
		"payload":    map[string]string{"text": "Oil change 20% off"},
		"partner_id": otherPartner.String(),
	})
	setJWTContext(c, partnerID, uuid.New(), identity.RoleManager)

	h.Publish(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeResponse(t, w).Data.(map[string]any)["delivered"])
	router.AssertExpectations(t)
}

func TestBroadcastHandler_PublishRejectsBadChannel(t *testing.T) {
	router := new(MockBroadcastRouter)
	h := NewBroadcastHandler(broadcastapp.NewService(router, nil), &stubSockets{})

	c, w := newTestContext(http.MethodPost, "/api/v1/broadcast", map[string]any{"type": "promo", "channel": "Bad Channel!"})
	setJWTContext(c, uuid.New(), uuid.New(), identity.RoleAdmin)

	h.Publish(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error)
	router.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestBroadcastHandler_Stats(t *testing.T) {
	router := new(MockBroadcastRouter)
	router.On("Stats").Return(broadcast.Stats{Running: true, Connections: 2, Channels: map[string]int{"partner:x": 2}})
	h := NewBroadcastHandler(broadcastapp.NewService(router, nil), &stubSockets{})

	c, w := newTestContext(http.MethodGet, "/api/v1/broadcast/stats", nil)
	h.Stats(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, true, data["running"])
	assert.Equal(t, float64(2), data["connections"])
}

func TestBroadcastHandler_Connect(t *testing.T) {
	partnerID, userID := uuid.New(), uuid.New()

	t.Run("binds the caller identity", func(t *testing.T) {
		sockets := &stubSockets{}
		h := NewBroadcastHandler(broadcastapp.NewService(new(MockBroadcastRouter), nil), sockets)
		c, _ := newTestContext(http.MethodGet, "/ws", nil)
		setJWTContext(c, partnerID, userID, identity.RoleTechnician)

		h.Connect(c)

		assert.Equal(t, realtime.Identity{UserID: userID, PartnerID: partnerID, Role: identity.RoleTechnician}, sockets.got)
	})

	t.Run("stopped hub answers 503", func(t *testing.T) {
		h := NewBroadcastHandler(broadcastapp.NewService(new(MockBroadcastRouter), nil), &stubSockets{err: shared.ErrUnavailable})
		c, w := newTestContext(http.MethodGet, "/ws", nil)
		setJWTContext(c, partnerID, userID, identity.RoleCashier)

		h.Connect(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, dto.ErrCodeUnavailable, decodeResponse(t, w).Error)
	})

	t.Run("upgrade failure writes nothing more", func(t *testing.T) {
		h := NewBroadcastHandler(broadcastapp.NewService(new(MockBroadcastRouter), nil), &stubSockets{err: errors.New("bad handshake")})
		c, w := newTestContext(http.MethodGet, "/ws", nil)
		setJWTContext(c, partnerID, userID, identity.RoleCashier)

		h.Connect(c)

		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("anonymous", func(t *testing.T) {
		h := NewBroadcastHandler(broadcastapp.NewService(new(MockBroadcastRouter), nil), &stubSockets{})
		c, w := newTestContext(http.MethodGet, "/ws", nil)

		h.Connect(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
