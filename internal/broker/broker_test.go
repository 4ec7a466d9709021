package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ascent/pkg/config"
	"ascent/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	lgr, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return lgr
}

func TestNewKafkaBusRequiresBrokers(t *testing.T) {
	_, err := NewKafkaBus(KafkaConfig{Topic: "trading_events"}, testLogger(t))
	assert.Error(t, err)
}

func TestNewKafkaBusUnreachableBrokerFails(t *testing.T) {
	// Port 1 has nothing listening; construction must surface the dial
	// failure instead of entering service with a dead feed.
	_, err := NewKafkaBus(KafkaConfig{
		Brokers: []string{"127.0.0.1:1"},
		Topic:   "trading_events",
	}, testLogger(t))
	assert.Error(t, err)
}

func TestNewRedisBusUnreachableFails(t *testing.T) {
	_, err := NewRedisBus(RedisConfig{
		Addr:    "127.0.0.1:1",
		Channel: "trading_events",
	}, testLogger(t))
	assert.Error(t, err)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Broker.Backend = "rabbitmq"

	_, err := New(cfg, testLogger(t))
	assert.Error(t, err)
}
