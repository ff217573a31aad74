package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mmynk/triplan/internal/metrics"
)

const (
	// DefaultChannel is the Redis pub/sub channel shared by all instances.
	DefaultChannel = "triplan:feed"

	// outboxSize bounds the events waiting to be published to Redis.
	outboxSize = 256

	publishTimeout = 2 * time.Second
)

// RedisBridge relays hub events between server instances over Redis pub/sub.
// Local events are queued and published by Run, so a slow Redis never
// holds up Hub.Publish.
type RedisBridge struct {
	client   *redis.Client
	hub      *Hub
	channel  string
	instance string
	outbox   chan Event
}

// NewRedisBridge connects to redisURL and verifies the connection.
func NewRedisBridge(ctx context.Context, redisURL string, hub *Hub) (*RedisBridge, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisBridge(client, hub, outboxSize), nil
}

func newRedisBridge(client *redis.Client, hub *Hub, size int) *RedisBridge {
	return &RedisBridge{
		client:   client,
		hub:      hub,
		channel:  DefaultChannel,
		instance: uuid.New().String(),
		outbox:   make(chan Event, size),
	}
}

// Run forwards local events to Redis and remote events into the hub until
// ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before forwarding
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	b.hub.SetForwarder(b.enqueue)
	defer b.hub.SetForwarder(nil)
	slog.Info("Feed bridge started", "channel", b.channel, "instance", b.instance)

	go b.drain(ctx)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.relay(msg.Payload)
		}
	}
}

// enqueue is the hub forwarder. It never blocks; when the outbox is full
// the event is dropped for other instances but was already delivered locally.
func (b *RedisBridge) enqueue(ev Event) {
	select {
	case b.outbox <- ev:
	default:
		metrics.FeedEventsDroppedTotal.Inc()
		slog.Warn("Feed bridge outbox full, dropping event", "resource", ev.Resource, "id", ev.ID)
	}
}

// drain publishes queued events until ctx is cancelled.
func (b *RedisBridge) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.outbox:
			b.forward(ctx, ev)
		}
	}
}

func (b *RedisBridge) forward(ctx context.Context, ev Event) {
	ev.Origin = b.instance
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to encode feed event", "error", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := b.client.Publish(pubCtx, b.channel, data).Err(); err != nil {
		slog.Warn("Failed to publish feed event to Redis", "error", err, "resource", ev.Resource)
	}
}

// relay delivers a remote event locally. Our own events were already
// delivered by Publish.
func (b *RedisBridge) relay(payload string) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.Warn("Ignoring malformed feed event", "error", err)
		return
	}
	if ev.Origin == b.instance {
		return
	}
	b.hub.deliver(ev)
}

// Close releases the Redis connection.
func (b *RedisBridge) Close() error {
	return b.client.Close()
}
