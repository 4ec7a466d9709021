package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Logging     struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Stream struct {
		Port            int           `yaml:"port"`
		SendBuffer      int           `yaml:"send_buffer"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		PongTimeout     time.Duration `yaml:"pong_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"stream"`
	Scheduler struct {
		Interval   time.Duration `yaml:"interval"`
		Symbols    []string      `yaml:"symbols"`
		MarketType string        `yaml:"market_type"`
		BarLimit   int           `yaml:"bar_limit"`
		OrderQty   float64       `yaml:"order_qty"`
		Strategy   string        `yaml:"strategy"`
	} `yaml:"scheduler"`
	Alpaca struct {
		APIKey    string        `yaml:"api_key"`
		SecretKey string        `yaml:"secret_key"`
		BaseURL   string        `yaml:"base_url"`
		DataURL   string        `yaml:"data_url"`
		Timeout   time.Duration `yaml:"timeout"`
		RateRPS   float64       `yaml:"rate_rps"`
		RateBurst int           `yaml:"rate_burst"`
	} `yaml:"alpaca"`
	Database struct {
		URL            string        `yaml:"url"`
		MaxConns       int           `yaml:"max_conns"`
		ConnectTimeout time.Duration `yaml:"connect_timeout"`
		MigrateOnStart bool          `yaml:"migrate_on_start"`
	} `yaml:"database"`
	Broker struct {
		Backend string `yaml:"backend"` // redis or kafka
		Channel string `yaml:"channel"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
			GroupID string   `yaml:"group_id"`
		} `yaml:"kafka"`
	} `yaml:"broker"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		c.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_SECRET_KEY"); v != "" {
		c.Alpaca.SecretKey = v
	}
	if v := os.Getenv("APCA_API_BASE_URL"); v != "" {
		c.Alpaca.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Broker.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Broker.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Scheduler.Symbols = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Stream.Port <= 0 {
		c.Stream.Port = 8001
	}
	if c.Stream.ShutdownTimeout <= 0 {
		c.Stream.ShutdownTimeout = 10 * time.Second
	}
	if c.Scheduler.Interval <= 0 {
		c.Scheduler.Interval = 5 * time.Minute
	}
	if c.Scheduler.MarketType == "" {
		c.Scheduler.MarketType = "stock"
	}
	if c.Scheduler.BarLimit <= 0 {
		c.Scheduler.BarLimit = 5
	}
	if c.Scheduler.OrderQty <= 0 {
		c.Scheduler.OrderQty = 1
	}
	if c.Scheduler.Strategy == "" {
		c.Scheduler.Strategy = "momentum"
	}
	if c.Alpaca.BaseURL == "" {
		c.Alpaca.BaseURL = "https://paper-api.alpaca.markets"
	}
	if c.Alpaca.DataURL == "" {
		c.Alpaca.DataURL = "https://data.alpaca.markets"
	}
	if c.Alpaca.Timeout <= 0 {
		c.Alpaca.Timeout = 10 * time.Second
	}
	if c.Alpaca.RateRPS <= 0 {
		c.Alpaca.RateRPS = 3
	}
	if c.Alpaca.RateBurst <= 0 {
		c.Alpaca.RateBurst = 5
	}
	if c.Broker.Backend == "" {
		c.Broker.Backend = "redis"
	}
	if c.Broker.Channel == "" {
		c.Broker.Channel = "trading_events"
	}
	if c.Stream.SendBuffer <= 0 {
		c.Stream.SendBuffer = 64
	}
	if c.Stream.WriteTimeout <= 0 {
		c.Stream.WriteTimeout = 10 * time.Second
	}
	if c.Stream.PongTimeout <= 0 {
		c.Stream.PongTimeout = 60 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Scheduler.Symbols) == 0 {
		return fmt.Errorf("scheduler.symbols cannot be empty")
	}
	if c.Broker.Backend != "redis" && c.Broker.Backend != "kafka" {
		return fmt.Errorf("broker.backend must be 'redis' or 'kafka', got '%s'", c.Broker.Backend)
	}
	if c.Broker.Backend == "kafka" && len(c.Broker.Kafka.Brokers) == 0 {
		return fmt.Errorf("broker.kafka.brokers cannot be empty when backend is kafka")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	return nil
}
