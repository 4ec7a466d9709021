package di

import (
	"context"
	"fmt"

	"ascent/internal/bot"
	"ascent/internal/broadcast"
	"ascent/internal/broker"
	"ascent/internal/domain/repository"
	"ascent/internal/gateway/alpaca"
	apihandler "ascent/internal/handler/api"
	streamhandler "ascent/internal/handler/stream"
	internalrepo "ascent/internal/repository"
	"ascent/internal/scheduler"
	"ascent/pkg/config"
	xhttp "ascent/pkg/http"
	"ascent/pkg/logger"
	"ascent/pkg/metrics"
	"ascent/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStore connects to Postgres and runs schema migration when
// configured to do so.
func ProvideStore(cfg *config.Config, lgr *logger.Logger) (repository.Store, error) {
	ctx := context.Background()
	store, err := internalrepo.NewPostgresStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if cfg.Database.MigrateOnStart {
		if err := store.Init(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("store migration: %w", err)
		}
		lgr.Info("database schema ready")
	}
	return store, nil
}

// ProvideGateway creates the Alpaca brokerage gateway.
func ProvideGateway(cfg *config.Config, lgr *logger.Logger) (repository.Gateway, error) {
	return alpaca.New(alpaca.Config{
		APIKey:    cfg.Alpaca.APIKey,
		SecretKey: cfg.Alpaca.SecretKey,
		BaseURL:   cfg.Alpaca.BaseURL,
		DataURL:   cfg.Alpaca.DataURL,
		Timeout:   cfg.Alpaca.Timeout,
		RateRPS:   cfg.Alpaca.RateRPS,
		RateBurst: cfg.Alpaca.RateBurst,
	}, lgr)
}

// ProvideBus creates the configured broker backend.
func ProvideBus(cfg *config.Config, lgr *logger.Logger) (broker.Bus, error) {
	return broker.New(cfg, lgr)
}

// ProvidePublisher exposes the broker's publishing end.
func ProvidePublisher(bus broker.Bus) repository.Publisher {
	return bus
}

// ProvideSubscriber exposes the broker's subscribing end.
func ProvideSubscriber(bus broker.Bus) repository.Subscriber {
	return bus
}

// ProvideController builds the bot controller with persisted state.
func ProvideController(cfg *config.Config, store repository.Store, lgr *logger.Logger) *bot.Controller {
	return bot.NewController(context.Background(), store, lgr, cfg.Scheduler.Strategy)
}

// ProvideScheduler builds the trading tick loop.
func ProvideScheduler(
	cfg *config.Config,
	controller *bot.Controller,
	gateway repository.Gateway,
	store repository.Store,
	publisher repository.Publisher,
	m repository.Metrics,
	lgr *logger.Logger,
) *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{
		Interval:   cfg.Scheduler.Interval,
		Symbols:    cfg.Scheduler.Symbols,
		MarketType: cfg.Scheduler.MarketType,
		BarLimit:   cfg.Scheduler.BarLimit,
		OrderQty:   cfg.Scheduler.OrderQty,
	}, controller, gateway, store, publisher, m, lgr)
}

// ProvideBotHandler builds the control API handler.
func ProvideBotHandler(
	lgr *logger.Logger,
	controller *bot.Controller,
	gateway repository.Gateway,
	store repository.Store,
	publisher repository.Publisher,
	m repository.Metrics,
) xhttp.Handler {
	return apihandler.NewBotHandler(lgr, controller, gateway, store, publisher, m)
}

// ProvideApp creates the trading application.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	sched *scheduler.Scheduler,
	handler xhttp.Handler,
	store repository.Store,
	bus broker.Bus,
) *server.App {
	return server.New(cfg, lgr, sched, handler, store, bus)
}

// ProvideManager builds the observer broadcast manager.
func ProvideManager(
	cfg *config.Config,
	publisher repository.Publisher,
	subscriber repository.Subscriber,
	m repository.Metrics,
	lgr *logger.Logger,
) *broadcast.Manager {
	return broadcast.NewManager(broadcast.Config{
		SendBuffer:   cfg.Stream.SendBuffer,
		WriteTimeout: cfg.Stream.WriteTimeout,
		PongTimeout:  cfg.Stream.PongTimeout,
	}, publisher, subscriber, m, lgr)
}

// ProvideStreamHandler builds the websocket endpoint handler.
func ProvideStreamHandler(lgr *logger.Logger, manager *broadcast.Manager) xhttp.Handler {
	return streamhandler.NewHandler(lgr, manager)
}

// ProvideStreamApp creates the broadcast application.
func ProvideStreamApp(
	cfg *config.Config,
	lgr *logger.Logger,
	manager *broadcast.Manager,
	handler xhttp.Handler,
	bus broker.Bus,
) *server.StreamApp {
	return server.NewStream(cfg, lgr, manager, handler, bus)
}
