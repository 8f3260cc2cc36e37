// Package eventbus carries SSE events between server instances over Redis
// pub/sub. Without Redis it hands events straight to the local manager.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfieapp/shelfie-server/internal/sse"
)

// Bus is an sse.Emitter that may span instances.
type Bus interface {
	sse.Emitter
	// Run relays remote events to the local sink until ctx is done.
	Run(ctx context.Context) error
	Close() error
}

// Local delivers to a single in-process sink.
type Local struct {
	sink sse.Emitter
}

// NewLocal returns a Bus that forwards every event to sink.
func NewLocal(sink sse.Emitter) *Local {
	return &Local{sink: sink}
}

// Emit forwards event to the sink.
func (l *Local) Emit(event sse.Event) { l.sink.Emit(event) }

// Run blocks until ctx is done.
func (l *Local) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Close is a no-op.
func (l *Local) Close() error { return nil }

// message is the JSON published on the channel. UserID travels explicitly
// because sse.Event hides it from clients.
type message struct {
	Origin    string          `json:"origin"`
	UserID    string          `json:"userId,omitempty"`
	Type      sse.EventType   `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func encode(origin string, event sse.Event) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal event data: %w", err)
	}
	return json.Marshal(message{
		Origin:    origin,
		UserID:    event.UserID,
		Type:      event.Type,
		Timestamp: event.Timestamp,
		Data:      data,
	})
}

func decode(payload []byte) (string, sse.Event, error) {
	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", sse.Event{}, fmt.Errorf("unmarshal bus message: %w", err)
	}
	return m.Origin, sse.Event{
		Type:      m.Type,
		UserID:    m.UserID,
		Timestamp: m.Timestamp,
		Data:      m.Data,
	}, nil
}

// Redis publishes events on a channel so that every instance relays them to
// its own sink. Events emitted here are delivered locally at once; messages
// carrying this instance's origin are skipped when they come back.
type Redis struct {
	client  *redis.Client
	sub     *redis.PubSub
	channel string
	origin  string
	sink    sse.Emitter
	logger  *slog.Logger

	closeOnce sync.Once
}

// NewRedis connects to url (redis://...) and subscribes to channel before
// returning, so no message published after it returns is missed.
func NewRedis(ctx context.Context, url, channel, origin string, sink sse.Emitter, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	logger.Info("event bus connected", "addr", opts.Addr, "channel", channel, "origin", origin)

	return &Redis{
		client:  client,
		sub:     sub,
		channel: channel,
		origin:  origin,
		sink:    sink,
		logger:  logger,
	}, nil
}

// Emit delivers event to the local sink and publishes it for other instances.
func (b *Redis) Emit(event sse.Event) {
	b.sink.Emit(event)

	payload, err := encode(b.origin, event)
	if err != nil {
		b.logger.Warn("failed to encode bus event", "event_type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		b.logger.Warn("failed to publish bus event",
			"event_type", event.Type,
			"error", err)
	}
}

// Run relays events from other instances until ctx is done.
func (b *Redis) Run(ctx context.Context) error {
	ch := b.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.relay([]byte(msg.Payload))
		}
	}
}

// relay hands a published message to the sink unless this instance sent it.
func (b *Redis) relay(payload []byte) {
	origin, event, err := decode(payload)
	if err != nil {
		b.logger.Warn("dropping malformed bus message", "error", err)
		return
	}
	if origin == b.origin {
		return
	}
	b.logger.Debug("bus event received", "event_type", event.Type, "origin", origin)
	b.sink.Emit(event)
}

// Close unsubscribes and releases the Redis connection.
func (b *Redis) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = errors.Join(b.sub.Close(), b.client.Close())
	})
	return err
}
