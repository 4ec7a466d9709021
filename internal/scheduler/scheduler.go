package scheduler

import (
	"context"
	"time"

	"ascent/internal/bot"
	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/internal/strategy"
	"ascent/pkg/logger"
)

// Config holds scheduler tick parameters.
type Config struct {
	Interval   time.Duration
	Symbols    []string
	MarketType string
	BarLimit   int
	OrderQty   float64
}

// Scheduler drives the trading loop: on every interval it evaluates
// the active strategy per symbol, submits orders, persists results and
// publishes trade events. Ticks are assumed not to overlap; the
// interval is expected to exceed worst-case tick duration.
type Scheduler struct {
	cfg        Config
	controller *bot.Controller
	gateway    repository.Gateway
	store      repository.Store
	publisher  repository.Publisher
	metrics    repository.Metrics
	logger     *logger.Logger
}

func New(
	cfg Config,
	controller *bot.Controller,
	gateway repository.Gateway,
	store repository.Store,
	publisher repository.Publisher,
	metrics repository.Metrics,
	lgr *logger.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		controller: controller,
		gateway:    gateway,
		store:      store,
		publisher:  publisher,
		metrics:    metrics,
		logger:     lgr,
	}
}

// Start launches the tick loop. It returns immediately; the loop runs
// until ctx is cancelled. An in-flight tick is never cancelled: a
// paused bot simply skips future ticks.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.logger.Info("scheduler started",
			logger.Duration("interval", s.cfg.Interval),
			logger.Strings("symbols", s.cfg.Symbols))

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				s.runTick(ctx)
			}
		}
	}()
}

// runTick executes one trading pass over the symbol universe. The
// pause check happens once here, not per symbol, so a toggle while a
// tick is mid-flight never aborts in-flight symbol processing.
func (s *Scheduler) runTick(ctx context.Context) {
	status := s.controller.Status()
	s.logger.Info("running trading tick", logger.String("status", string(status)))

	if status != models.StatusRunning {
		s.logger.Info("bot is paused, skipping tick")
		return
	}

	s.metrics.RecordTick()
	start := time.Now()
	strat := s.controller.Strategy()

	for _, symbol := range s.cfg.Symbols {
		// Per-symbol fault isolation: one symbol failing never aborts
		// the rest of the tick.
		if err := s.processSymbol(ctx, symbol, strat); err != nil {
			s.metrics.RecordError("symbol_processing")
			s.logger.Error("symbol processing failed",
				logger.String("symbol", symbol),
				logger.Error(err))
		}
	}

	// One performance snapshot per tick, regardless of per-symbol
	// outcomes. Failure here never rolls back recorded trades.
	if err := s.capturePerformance(ctx, strat.Name()); err != nil {
		s.metrics.RecordError("performance_capture")
		s.logger.Error("failed to capture strategy performance", logger.Error(err))
	}

	s.metrics.RecordLatency("tick", time.Since(start).Seconds())
}

func (s *Scheduler) processSymbol(ctx context.Context, symbol string, strat strategy.Strategy) error {
	bars, err := s.gateway.GetRecentBars(ctx, symbol, s.cfg.MarketType, s.cfg.BarLimit)
	if err != nil {
		return err
	}
	if len(bars) > 0 {
		s.metrics.RecordLastPrice(symbol, bars[len(bars)-1].Close)
	}

	signal := strat.Evaluate(bars)
	s.logger.Info("strategy evaluated",
		logger.String("symbol", symbol),
		logger.String("strategy", strat.Name()),
		logger.String("signal", string(signal)))

	if !signal.Actionable() {
		return nil
	}

	order, err := s.gateway.SubmitMarketOrder(ctx, symbol, s.cfg.OrderQty, string(signal))
	if err != nil {
		return err
	}

	trade := &models.ExecutedTrade{
		Symbol:    symbol,
		Side:      string(signal),
		Price:     order.FilledAvgPrice,
		Qty:       s.cfg.OrderQty,
		Signal:    string(signal),
		Strategy:  strat.Name(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertTrade(ctx, trade); err != nil {
		return err
	}
	s.metrics.RecordTrade(symbol, trade.Side)
	s.logger.Info("trade executed and stored",
		logger.String("symbol", symbol),
		logger.String("side", trade.Side),
		logger.Float64("price", trade.Price))

	// Persistence and publication are not transactionally linked; a
	// crash between the two is an accepted inconsistency window.
	ev := models.NewTradeEvent(symbol, trade.Side, trade.Price, strat.Name())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.RecordError("event_publish")
		s.logger.Error("failed to publish trade event",
			logger.String("symbol", symbol),
			logger.Error(err))
		return nil // trade already recorded; publish is best-effort
	}
	s.metrics.RecordEventPublished(string(models.EventTrade))
	return nil
}

func (s *Scheduler) capturePerformance(ctx context.Context, strategyName string) error {
	account, err := s.gateway.GetAccount(ctx)
	if err != nil {
		return err
	}
	perf := &models.StrategyPerformance{
		Strategy:       strategyName,
		PortfolioValue: account.Cash,
		CapturedAt:     time.Now().UTC(),
	}
	return s.store.InsertPerformance(ctx, perf)
}
