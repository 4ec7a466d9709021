package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
environment: test
scheduler:
  symbols: [AAPL, MSFT]
database:
  url: postgres://localhost:5432/test
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 8001, cfg.Stream.Port)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "momentum", cfg.Scheduler.Strategy)
	assert.Equal(t, "redis", cfg.Broker.Backend)
	assert.Equal(t, "trading_events", cfg.Broker.Channel)
	assert.Equal(t, "https://paper-api.alpaca.markets", cfg.Alpaca.BaseURL)
	assert.Equal(t, 64, cfg.Stream.SendBuffer)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: production
scheduler:
  interval: 1m
  symbols: [NVDA]
  strategy: rsi
broker:
  backend: kafka
  kafka:
    brokers: [localhost:9092]
database:
  url: postgres://localhost:5432/prod
`))
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "rsi", cfg.Scheduler.Strategy)
	assert.Equal(t, "kafka", cfg.Broker.Backend)
	assert.Equal(t, []string{"NVDA"}, cfg.Scheduler.Symbols)
}

func TestValidateRequiresEnvironment(t *testing.T) {
	_, err := Load(writeConfig(t, `
scheduler:
  symbols: [AAPL]
database:
  url: postgres://localhost:5432/test
`))
	assert.Error(t, err)
}

func TestValidateRequiresSymbols(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
database:
  url: postgres://localhost:5432/test
`))
	assert.Error(t, err)
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
scheduler:
  symbols: [AAPL]
broker:
  backend: rabbitmq
database:
  url: postgres://localhost:5432/test
`))
	assert.Error(t, err)
}

func TestValidateKafkaNeedsBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
scheduler:
  symbols: [AAPL]
broker:
  backend: kafka
database:
  url: postgres://localhost:5432/test
`))
	assert.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/env")
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("SYMBOLS", "TSLA,AMD")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Alpaca.APIKey)
	assert.Equal(t, "postgres://env-host:5432/env", cfg.Database.URL)
	assert.Equal(t, "env-redis:6379", cfg.Broker.Redis.Addr)
	assert.Equal(t, []string{"TSLA", "AMD"}, cfg.Scheduler.Symbols)
}
