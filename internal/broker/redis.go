package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/pkg/logger"
)

// RedisBus carries events over a Redis pub/sub channel. Delivery is
// fire-and-forget: a subscriber that is not listening when a message
// is published never receives it, and there is no replay.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *logger.Logger
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisBus connects to Redis and verifies the connection. An
// unreachable broker at startup is a fatal error for the caller.
func NewRedisBus(cfg RedisConfig, lgr *logger.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	lgr.Info("redis broker connected", logger.String("addr", cfg.Addr), logger.String("channel", cfg.Channel))
	return &RedisBus{client: client, channel: cfg.Channel, logger: lgr}, nil
}

// Publish sends one event to currently-subscribed listeners. No
// acknowledgment is awaited beyond the broker accepting the message.
func (b *RedisBus) Publish(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	b.logger.Debug("event published",
		logger.String("channel", b.channel),
		logger.String("type", string(ev.Type)))
	return nil
}

// Subscribe opens a live subscription on the event channel.
func (b *RedisBus) Subscribe(ctx context.Context) (repository.Subscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)

	// Wait for the subscription confirmation so callers fail fast on
	// an unreachable broker.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	sub := &RedisSubscription{
		pubsub: ps,
		events: make(chan models.Event, 64),
		logger: b.logger,
	}
	go sub.pump()

	b.logger.Info("subscribed to event channel", logger.String("channel", b.channel))
	return sub, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

// RedisSubscription adapts a Redis pub/sub stream into an event
// channel. Malformed payloads are logged and dropped, never fatal.
type RedisSubscription struct {
	pubsub *redis.PubSub
	events chan models.Event
	logger *logger.Logger
}

func (s *RedisSubscription) pump() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		ev, err := models.ParseEvent([]byte(msg.Payload))
		if err != nil {
			s.logger.Warn("dropping malformed event", logger.Error(err))
			continue
		}
		s.events <- ev
	}
}

// Events yields messages until the subscription is closed.
func (s *RedisSubscription) Events() <-chan models.Event {
	return s.events
}

func (s *RedisSubscription) Close() error {
	return s.pubsub.Close()
}
