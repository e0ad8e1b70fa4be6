// Package realtime is the WebSocket broadcast router. Messages are matched
// against every registered connection and queued without blocking; a full
// queue drops the message for that connection only.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/autocare/platform/internal/domain/shared"
	"github.com/autocare/platform/internal/infrastructure/config"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Metrics receives router counters. Implemented by the telemetry package.
type Metrics interface {
	RecordBroadcastDelivered(ctx context.Context, delivered, dropped int)
	SetOpenSockets(n int)
}

type nopMetrics struct{}

func (nopMetrics) RecordBroadcastDelivered(context.Context, int, int) {}
func (nopMetrics) SetOpenSockets(int)                                 {}

// Relay carries messages between server instances
type Relay interface {
	Publish(ctx context.Context, msg *broadcast.Message) error
	// Subscribe calls deliver for messages published by other instances until ctx ends
	Subscribe(ctx context.Context, deliver func(*broadcast.Message)) error
	Close() error
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithRelay fans published messages out to other instances
func WithRelay(r Relay) HubOption {
	return func(h *Hub) { h.relay = r }
}

// WithMetrics reports delivery counters
func WithMetrics(m Metrics) HubOption {
	return func(h *Hub) {
		if m != nil {
			h.metrics = m
		}
	}
}

// Hub tracks connections and routes messages to them
type Hub struct {
	cfg      config.BroadcastConfig
	logger   *zap.Logger
	relay    Relay
	metrics  Metrics
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*Conn

	running   atomic.Bool
	delivered atomic.Uint64
	dropped   atomic.Uint64
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewHub creates a stopped hub
func NewHub(cfg config.BroadcastConfig, logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	h := &Hub{
		cfg:     cfg,
		logger:  logger.Named("broadcast"),
		metrics: nopMetrics{},
		conns:   make(map[string]*Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers are authenticated by token, not cookies
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start accepts connections and, with a relay, listens for remote messages
func (h *Hub) Start(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return nil
	}
	if h.relay != nil {
		relayCtx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			if err := h.relay.Subscribe(relayCtx, func(msg *broadcast.Message) {
				h.Deliver(relayCtx, msg)
			}); err != nil && relayCtx.Err() == nil {
				h.logger.Error("broadcast relay stopped", zap.Error(err))
			}
		}()
	}
	h.logger.Info("broadcast router started", zap.Bool("relay", h.relay != nil))
	return nil
}

// Stop closes every connection and the relay subscription
func (h *Hub) Stop(ctx context.Context) error {
	if !h.running.CompareAndSwap(true, false) {
		return nil
	}
	if h.cancel != nil {
		h.cancel()
	}

	h.mu.Lock()
	for id, c := range h.conns {
		c.Close()
		delete(h.conns, id)
	}
	h.mu.Unlock()
	h.metrics.SetOpenSockets(0)

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	h.logger.Info("broadcast router stopped",
		zap.Uint64("delivered", h.delivered.Load()),
		zap.Uint64("dropped", h.dropped.Load()),
	)
	return nil
}

// Running reports whether the hub accepts connections
func (h *Hub) Running() bool {
	return h.running.Load()
}

// Register adds a connection. Fails with ErrUnavailable when the hub is stopped.
func (h *Hub) Register(c *Conn) error {
	if !h.Running() {
		return shared.ErrUnavailable
	}
	h.mu.Lock()
	h.conns[c.ID()] = c
	n := len(h.conns)
	h.mu.Unlock()
	h.metrics.SetOpenSockets(n)
	h.logger.Debug("connection registered",
		zap.String("conn_id", c.ID()),
		zap.String("user_id", c.UserID().String()),
		zap.String("partner_id", c.PartnerID().String()),
	)
	return nil
}

// Unregister removes and closes a connection
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	_, ok := h.conns[c.ID()]
	delete(h.conns, c.ID())
	n := len(h.conns)
	h.mu.Unlock()
	c.Close()
	if ok {
		h.metrics.SetOpenSockets(n)
		h.logger.Debug("connection unregistered", zap.String("conn_id", c.ID()))
	}
}

// Publish delivers to local connections, then hands the message to the relay.
// It returns the number of local connections the message was queued for.
func (h *Hub) Publish(ctx context.Context, msg *broadcast.Message) (int, error) {
	if !h.Running() {
		return 0, shared.ErrUnavailable
	}
	n := h.Deliver(ctx, msg)
	if h.relay != nil {
		if err := h.relay.Publish(ctx, msg); err != nil {
			h.logger.Warn("broadcast relay publish failed",
				zap.String("message_id", msg.ID.String()),
				zap.Error(err),
			)
		}
	}
	return n, nil
}

// Deliver queues msg on every matching local connection
func (h *Hub) Deliver(ctx context.Context, msg *broadcast.Message) int {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode broadcast message", zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		if msg.Target.Matches(c) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, c := range targets {
		if c.enqueue(frame) {
			delivered++
			continue
		}
		dropped++
		h.logger.Warn("broadcast dropped for slow connection",
			zap.String("conn_id", c.ID()),
			zap.String("message_type", msg.Type),
		)
	}
	h.delivered.Add(uint64(delivered))
	h.dropped.Add(uint64(dropped))
	h.metrics.RecordBroadcastDelivered(ctx, delivered, dropped)
	return delivered
}

// Stats returns a snapshot of connections and per-channel subscriber counts
func (h *Hub) Stats() broadcast.Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	channels := make(map[string]int)
	for _, c := range h.conns {
		for _, ch := range c.Channels() {
			channels[ch]++
		}
	}
	return broadcast.Stats{
		Running:     h.Running(),
		Connections: len(h.conns),
		Channels:    channels,
		Delivered:   h.delivered.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// Serve upgrades the request and runs the connection until it closes
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, id Identity) error {
	if !h.Running() {
		return shared.ErrUnavailable
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	c := NewConn(ws, id, h.cfg.SendBuffer)
	if err := h.Register(c); err != nil {
		_ = ws.Close()
		return err
	}
	c.reply(ServerFrame{Type: "connected", Message: c.ID()})

	go c.writePump(h.cfg.PingInterval, h.cfg.WriteTimeout, h.logger)
	c.readPump(h.logger)
	h.Unregister(c)
	return nil
}
