package realtime

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	maxFrameSize = 4096
	pongWait     = 60 * time.Second
)

// Client frame actions
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionPing        = "ping"
)

// ClientFrame is what a socket sends to the router
type ClientFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}

// ServerFrame is a control reply to a client frame
type ServerFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

// Identity is the authenticated owner of a connection
type Identity struct {
	UserID    uuid.UUID
	PartnerID uuid.UUID
	Role      identity.Role
}

// Conn is one WebSocket connection registered with the hub
type Conn struct {
	id       string
	identity Identity
	ws       *websocket.Conn
	send     chan []byte

	mu       sync.RWMutex
	channels map[string]struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

// NewConn wraps ws. The connection starts subscribed to its partner, user and role channels.
func NewConn(ws *websocket.Conn, id Identity, sendBuffer int) *Conn {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	c := &Conn{
		id:       uuid.NewString(),
		identity: id,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		channels: make(map[string]struct{}),
		closed:   make(chan struct{}),
	}
	c.channels[broadcast.PartnerChannel(id.PartnerID)] = struct{}{}
	c.channels[broadcast.UserChannel(id.UserID)] = struct{}{}
	if id.Role != "" {
		c.channels[broadcast.RoleChannel(id.Role)] = struct{}{}
	}
	return c
}

// ID returns the connection id
func (c *Conn) ID() string { return c.id }

// UserID implements broadcast.Recipient
func (c *Conn) UserID() uuid.UUID { return c.identity.UserID }

// PartnerID implements broadcast.Recipient
func (c *Conn) PartnerID() uuid.UUID { return c.identity.PartnerID }

// Role implements broadcast.Recipient
func (c *Conn) Role() identity.Role { return c.identity.Role }

// IsSubscribed implements broadcast.Recipient
func (c *Conn) IsSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.channels[channel]
	return ok
}

// Subscribe joins a channel after checking the caller may see it
func (c *Conn) Subscribe(channel string) error {
	if err := broadcast.CanSubscribe(c.identity.Role, c.identity.UserID, c.identity.PartnerID, channel); err != nil {
		return err
	}
	c.mu.Lock()
	c.channels[channel] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Unsubscribe leaves a channel
func (c *Conn) Unsubscribe(channel string) {
	c.mu.Lock()
	delete(c.channels, channel)
	c.mu.Unlock()
}

// Channels returns the subscribed channels in sorted order
func (c *Conn) Channels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

// enqueue queues a frame without blocking. False means the queue is full or closed.
func (c *Conn) enqueue(frame []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Conn) reply(f ServerFrame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	c.enqueue(b)
}

// Close signals the write pump to send a close frame and release the socket
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// readPump handles client frames until the socket fails
func (c *Conn) readPump(logger *zap.Logger) {
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}
		c.handleFrame(data)
	}
}

func (c *Conn) handleFrame(data []byte) {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		c.reply(ServerFrame{Type: "error", Message: "invalid frame"})
		return
	}
	switch f.Action {
	case ActionSubscribe:
		if err := c.Subscribe(f.Channel); err != nil {
			c.reply(ServerFrame{Type: "error", Channel: f.Channel, Message: err.Error()})
			return
		}
		c.reply(ServerFrame{Type: "subscribed", Channel: f.Channel})
	case ActionUnsubscribe:
		c.Unsubscribe(f.Channel)
		c.reply(ServerFrame{Type: "unsubscribed", Channel: f.Channel})
	case ActionPing:
		c.reply(ServerFrame{Type: "pong"})
	default:
		c.reply(ServerFrame{Type: "error", Message: "unknown action: " + f.Action})
	}
}

// writePump drains the send queue and keeps the socket alive with pings
func (c *Conn) writePump(pingInterval, writeTimeout time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.closed:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					logger.Debug("websocket write failed", zap.String("conn_id", c.id), zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
