package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ascent/internal/broadcast"
	"ascent/internal/broker"
	"ascent/internal/domain/repository"
	"ascent/internal/scheduler"
	"ascent/pkg/config"
	xhttp "ascent/pkg/http"
	"ascent/pkg/logger"
)

// App is the trading process: the scheduler loop plus the control API.
type App struct {
	cfg       *config.Config
	logger    *logger.Logger
	scheduler *scheduler.Scheduler
	handler   xhttp.Handler
	store     repository.Store
	bus       broker.Bus

	httpServer *xhttp.Server
}

// New creates the trading application with all dependencies wired.
func New(
	cfg *config.Config,
	lgr *logger.Logger,
	sched *scheduler.Scheduler,
	handler xhttp.Handler,
	store repository.Store,
	bus broker.Bus,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		scheduler: sched,
		handler:   handler,
		store:     store,
		bus:       bus,
	}
}

// Run starts the scheduler and the HTTP API and blocks until an
// interrupt or termination signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.scheduler.Start(ctx)

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.logger.Info("trading service started",
		logger.Int("port", a.cfg.Server.Port),
		logger.String("broker", a.cfg.Broker.Backend))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", logger.Error(err))
	}
	if err := a.bus.Close(); err != nil {
		a.logger.Warn("broker close error", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close error", logger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}

// StreamApp is the broadcast process: the broker listener plus the
// websocket endpoint observers connect to.
type StreamApp struct {
	cfg     *config.Config
	logger  *logger.Logger
	manager *broadcast.Manager
	handler xhttp.Handler
	bus     broker.Bus

	httpServer *xhttp.Server
}

// NewStream creates the broadcast application with all dependencies
// wired.
func NewStream(
	cfg *config.Config,
	lgr *logger.Logger,
	manager *broadcast.Manager,
	handler xhttp.Handler,
	bus broker.Bus,
) *StreamApp {
	return &StreamApp{
		cfg:     cfg,
		logger:  lgr,
		manager: manager,
		handler: handler,
		bus:     bus,
	}
}

// Run starts the broadcast manager and the websocket server and blocks
// until an interrupt or termination signal arrives.
func (a *StreamApp) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.manager.Start(ctx); err != nil {
		a.logger.Error("failed to start broadcast manager", logger.Error(err))
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Stream.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Stream.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.logger.Info("broadcast service started",
		logger.Int("port", a.cfg.Stream.Port),
		logger.String("broker", a.cfg.Broker.Backend))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Stream.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", logger.Error(err))
	}
	if err := a.bus.Close(); err != nil {
		a.logger.Warn("broker close error", logger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
