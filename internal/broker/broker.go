package broker

import (
	"fmt"

	"ascent/internal/domain/repository"
	"ascent/pkg/config"
	"ascent/pkg/logger"
)

// Bus is a broker backend serving both ends of the event channel.
type Bus interface {
	repository.Publisher
	repository.Subscriber
}

// New builds the configured broker backend.
func New(cfg *config.Config, lgr *logger.Logger) (Bus, error) {
	switch cfg.Broker.Backend {
	case "redis":
		return NewRedisBus(RedisConfig{
			Addr:     cfg.Broker.Redis.Addr,
			Password: cfg.Broker.Redis.Password,
			DB:       cfg.Broker.Redis.DB,
			Channel:  cfg.Broker.Channel,
		}, lgr)
	case "kafka":
		return NewKafkaBus(KafkaConfig{
			Brokers: cfg.Broker.Kafka.Brokers,
			Topic:   cfg.Broker.Channel,
			GroupID: cfg.Broker.Kafka.GroupID,
		}, lgr)
	default:
		return nil, fmt.Errorf("unknown broker backend: %q", cfg.Broker.Backend)
	}
}
