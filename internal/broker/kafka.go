package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/pkg/logger"
)

// KafkaBus carries events over a Kafka topic. Subscribers start at the
// latest offset so the channel keeps the same at-most-once,
// no-backlog semantics as the Redis backend.
type KafkaBus struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	groupID string
	logger  *logger.Logger
}

// KafkaConfig holds Kafka connection settings.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaBus builds a Kafka-backed event bus and verifies the
// connection. An unreachable broker at startup is a fatal error for
// the caller; the writer and readers dial lazily and would otherwise
// mask it.
func NewKafkaBus(cfg KafkaConfig, lgr *logger.Logger) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka dial %s: %w", cfg.Brokers[0], err)
	}
	_ = conn.Close()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}

	lgr.Info("kafka broker configured",
		logger.Strings("brokers", cfg.Brokers),
		logger.String("topic", cfg.Topic))
	return &KafkaBus{
		writer:  writer,
		brokers: cfg.Brokers,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		logger:  lgr,
	}, nil
}

// Publish sends one event to the topic.
func (b *KafkaBus) Publish(ctx context.Context, ev models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe opens a reader at the latest offset. Each subscription
// uses its own consumer group so every subscriber sees every message.
func (b *KafkaBus) Subscribe(ctx context.Context) (repository.Subscription, error) {
	groupID := b.groupID
	if groupID == "" {
		groupID = "ascent-stream-" + uuid.NewString()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		Topic:       b.topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
	})

	sub := &KafkaSubscription{
		reader: reader,
		events: make(chan models.Event, 64),
		logger: b.logger,
	}
	go sub.pump(ctx)

	b.logger.Info("subscribed to event topic",
		logger.String("topic", b.topic),
		logger.String("group_id", groupID))
	return sub, nil
}

func (b *KafkaBus) Close() error {
	return b.writer.Close()
}

// KafkaSubscription adapts a Kafka reader into an event channel.
type KafkaSubscription struct {
	reader *kafka.Reader
	events chan models.Event
	logger *logger.Logger
}

func (s *KafkaSubscription) pump(ctx context.Context) {
	defer close(s.events)
	for {
		msg, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				s.logger.Error("kafka read error", logger.Error(err))
			}
			return
		}
		ev, err := models.ParseEvent(msg.Value)
		if err != nil {
			s.logger.Warn("dropping malformed event", logger.Error(err))
			continue
		}
		s.events <- ev
	}
}

// Events yields messages until the subscription is closed.
func (s *KafkaSubscription) Events() <-chan models.Event {
	return s.events
}

func (s *KafkaSubscription) Close() error {
	return s.reader.Close()
}
