package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T, opts ...HubOption) *Hub {
	t.Helper()
	h := NewHub(config.BroadcastConfig{SendBuffer: 2, PingInterval: time.Second, WriteTimeout: time.Second}, zap.NewNop(), opts...)
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { _ = h.Stop(context.Background()) })
	return h
}

func newIdentity(role identity.Role) Identity {
	return Identity{UserID: uuid.New(), PartnerID: uuid.New(), Role: role}
}

func drain(c *Conn) []broadcast.Message {
	var out []broadcast.Message
	for {
		select {
		case frame := <-c.send:
			var m broadcast.Message
			if json.Unmarshal(frame, &m) == nil && m.Type != "" {
				out = append(out, m)
			}
		default:
			return out
		}
	}
}

func mustMessage(t *testing.T, target broadcast.Target) *broadcast.Message {
	t.Helper()
	msg, err := broadcast.NewMessage("sale.completed", map[string]string{"number": "S-1"}, target)
	require.NoError(t, err)
	return msg
}

func TestNewConn_AutoJoinsOwnChannels(t *testing.T) {
	id := newIdentity(identity.RoleCashier)
	c := NewConn(nil, id, 4)

	assert.ElementsMatch(t, []string{
		broadcast.PartnerChannel(id.PartnerID),
		broadcast.UserChannel(id.UserID),
		broadcast.RoleChannel(identity.RoleCashier),
	}, c.Channels())
}

func TestConn_SubscribeRejectsOtherRoleChannel(t *testing.T) {
	cashier := NewConn(nil, newIdentity(identity.RoleCashier), 4)
	assert.ErrorIs(t, cashier.Subscribe(broadcast.RoleChannel(identity.RoleAdmin)), shared.ErrForbidden)
	assert.False(t, cashier.IsSubscribed(broadcast.RoleChannel(identity.RoleAdmin)))

	admin := NewConn(nil, newIdentity(identity.RoleAdmin), 4)
	require.NoError(t, admin.Subscribe(broadcast.RoleChannel(identity.RoleCashier)))
	assert.True(t, admin.IsSubscribed(broadcast.RoleChannel(identity.RoleCashier)))
}

func TestHub_DeliverRouting(t *testing.T) {
	h := newTestHub(t)

	shopA := uuid.New()
	cashierA := NewConn(nil, Identity{UserID: uuid.New(), PartnerID: shopA, Role: identity.RoleCashier}, 8)
	managerA := NewConn(nil, Identity{UserID: uuid.New(), PartnerID: shopA, Role: identity.RoleManager}, 8)
	cashierB := NewConn(nil, newIdentity(identity.RoleCashier), 8)
	for _, c := range []*Conn{cashierA, managerA, cashierB} {
		require.NoError(t, h.Register(c))
	}
	require.NoError(t, cashierB.Subscribe("promotions"))

	tests := []struct {
		name   string
		target broadcast.Target
		want   []*Conn
	}{
		{"empty target reaches everyone", broadcast.Target{}, []*Conn{cashierA, managerA, cashierB}},
		{"partner channel", broadcast.Target{Channel: broadcast.PartnerChannel(shopA)}, []*Conn{cashierA, managerA}},
		{"partner and role", broadcast.Target{PartnerID: &shopA, Role: identity.RoleCashier}, []*Conn{cashierA}},
		{"role across partners", broadcast.Target{Role: identity.RoleCashier}, []*Conn{cashierA, cashierB}},
		{"custom channel", broadcast.Target{Channel: "promotions"}, []*Conn{cashierB}},
		{"user", broadcast.Target{UserID: ptr(managerA.UserID())}, []*Conn{managerA}},
		{"no match", broadcast.Target{Channel: "nobody-here"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := h.Deliver(context.Background(), mustMessage(t, tt.target))
			assert.Equal(t, len(tt.want), n)
			for _, c := range []*Conn{cashierA, managerA, cashierB} {
				got := drain(c)
				if contains(tt.want, c) {
					assert.Len(t, got, 1)
				} else {
					assert.Empty(t, got)
				}
			}
		})
	}
}

func TestHub_FullQueueDropsForThatConnectionOnly(t *testing.T) {
	h := newTestHub(t)
	slow := NewConn(nil, newIdentity(identity.RoleCashier), 1)
	fast := NewConn(nil, newIdentity(identity.RoleCashier), 8)
	require.NoError(t, h.Register(slow))
	require.NoError(t, h.Register(fast))

	msg := mustMessage(t, broadcast.Target{Role: identity.RoleCashier})
	assert.Equal(t, 2, h.Deliver(context.Background(), msg))
	assert.Equal(t, 1, h.Deliver(context.Background(), msg))

	stats := h.Stats()
	assert.Equal(t, uint64(3), stats.Delivered)
	assert.Equal(t, uint64(1), stats.Dropped)
	assert.Len(t, drain(fast), 2)
}

func TestHub_StoppedHubIsUnavailable(t *testing.T) {
	h := NewHub(config.BroadcastConfig{}, nil)

	err := h.Register(NewConn(nil, newIdentity(identity.RoleAdmin), 1))
	assert.ErrorIs(t, err, shared.ErrUnavailable)

	_, err = h.Publish(context.Background(), mustMessage(t, broadcast.Target{}))
	assert.ErrorIs(t, err, shared.ErrUnavailable)
	assert.False(t, h.Stats().Running)
}

func TestHub_UnregisterAndStats(t *testing.T) {
	h := newTestHub(t)
	id := newIdentity(identity.RoleManager)
	a := NewConn(nil, id, 1)
	b := NewConn(nil, Identity{UserID: uuid.New(), PartnerID: id.PartnerID, Role: identity.RoleCashier}, 1)
	require.NoError(t, h.Register(a))
	require.NoError(t, h.Register(b))

	stats := h.Stats()
	assert.True(t, stats.Running)
	assert.Equal(t, 2, stats.Connections)
	assert.Equal(t, 2, stats.Channels[broadcast.PartnerChannel(id.PartnerID)])

	h.Unregister(a)
	assert.Equal(t, 1, h.Stats().Connections)
	assert.False(t, a.enqueue([]byte("x")), "closed connections accept nothing")
}

type fakeRelay struct {
	mu        sync.Mutex
	published []*broadcast.Message
	inbound   chan *broadcast.Message
}

func (r *fakeRelay) Publish(ctx context.Context, msg *broadcast.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, msg)
	return nil
}

func (r *fakeRelay) Subscribe(ctx context.Context, deliver func(*broadcast.Message)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-r.inbound:
			deliver(m)
		}
	}
}

func (r *fakeRelay) Close() error { return nil }

func TestHub_Relay(t *testing.T) {
	relay := &fakeRelay{inbound: make(chan *broadcast.Message)}
	h := newTestHub(t, WithRelay(relay))
	c := NewConn(nil, newIdentity(identity.RoleCashier), 8)
	require.NoError(t, h.Register(c))

	n, err := h.Publish(context.Background(), mustMessage(t, broadcast.Target{}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	relay.mu.Lock()
	assert.Len(t, relay.published, 1)
	relay.mu.Unlock()
	assert.Len(t, drain(c), 1)

	relay.inbound <- mustMessage(t, broadcast.Target{})
	assert.Eventually(t, func() bool { return len(c.send) == 1 }, time.Second, 5*time.Millisecond)
}

func TestRedisRelay_SkipsOwnMessages(t *testing.T) {
	r := NewRedisRelay(nil, "test", nil)
	msg := mustMessage(t, broadcast.Target{})

	own, _ := json.Marshal(envelope{Origin: r.instance, Message: msg})
	assert.Nil(t, r.decode(string(own)))

	other, _ := json.Marshal(envelope{Origin: "other-instance", Message: msg})
	got := r.decode(string(other))
	require.NotNil(t, got)
	assert.Equal(t, msg.ID, got.ID)

	assert.Nil(t, r.decode("{not json"))
}

func TestHub_ServeWebSocket(t *testing.T) {
	h := newTestHub(t)
	id := newIdentity(identity.RoleManager)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r, id)
	}))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer ws.Close()

	readFrame := func() map[string]any {
		_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f map[string]any
		require.NoError(t, ws.ReadJSON(&f))
		return f
	}

	assert.Equal(t, "connected", readFrame()["type"])

	require.NoError(t, ws.WriteJSON(ClientFrame{Action: ActionPing}))
	assert.Equal(t, "pong", readFrame()["type"])

	require.NoError(t, ws.WriteJSON(ClientFrame{Action: ActionSubscribe, Channel: "partner:" + uuid.NewString()}))
	assert.Equal(t, "error", readFrame()["type"])

	require.NoError(t, ws.WriteJSON(ClientFrame{Action: ActionSubscribe, Channel: "workshop-bay-2"}))
	assert.Equal(t, "subscribed", readFrame()["type"])

	n, err := h.Publish(context.Background(), mustMessage(t, broadcast.Target{Channel: "workshop-bay-2"}))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f := readFrame()
	assert.Equal(t, "sale.completed", f["type"])
}

func ptr[T any](v T) *T { return &v }

func contains(list []*Conn, c *Conn) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
