package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autocare/platform/internal/domain/broadcast"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type envelope struct {
	Origin  string             `json:"origin"`
	Message *broadcast.Message `json:"message"`
}

// RedisRelay shares broadcast messages between instances over Redis Pub/Sub.
// Each instance skips its own messages since they were delivered locally.
type RedisRelay struct {
	client   redis.UniversalClient
	channel  string
	instance string
	logger   *zap.Logger
}

// NewRedisRelay creates a relay on the given pub/sub channel
func NewRedisRelay(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		logger:   logger,
	}
}

// Publish sends msg to the other instances
func (r *RedisRelay) Publish(ctx context.Context, msg *broadcast.Message) error {
	b, err := json.Marshal(envelope{Origin: r.instance, Message: msg})
	if err != nil {
		return fmt.Errorf("encode relay envelope: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", r.channel, err)
	}
	return nil
}

// Subscribe blocks until ctx is done
func (r *RedisRelay) Subscribe(ctx context.Context, deliver func(*broadcast.Message)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if msg := r.decode(m.Payload); msg != nil {
				deliver(msg)
			}
		}
	}
}

func (r *RedisRelay) decode(payload string) *broadcast.Message {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.logger.Warn("discarding malformed relay message", zap.Error(err))
		return nil
	}
	if env.Origin == r.instance || env.Message == nil {
		return nil
	}
	return env.Message
}

// Close is a no-op; the Redis client is owned by the caller
func (r *RedisRelay) Close() error {
	return nil
}

var _ Relay = (*RedisRelay)(nil)
