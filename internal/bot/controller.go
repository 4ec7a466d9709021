package bot

import (
	"context"
	"sync"

	"ascent/internal/domain/models"
	"ascent/internal/domain/repository"
	"ascent/internal/strategy"
	"ascent/pkg/logger"
)

// Controller owns the run/pause state and the active strategy. The
// in-memory state mirrors the persisted BotState singleton and is
// written through on every mutation. Toggle, Status and SetStrategy
// are safe to call concurrently from scheduler and request contexts.
type Controller struct {
	store  repository.Store
	logger *logger.Logger

	mu       sync.Mutex
	running  bool
	strategy strategy.Strategy
}

// NewController builds a controller with state loaded from the store.
// A missing record is created with running=true; a failed load falls
// back to running=true for this process so the bot is never stuck.
func NewController(ctx context.Context, store repository.Store, lgr *logger.Logger, initialStrategy string) *Controller {
	c := &Controller{
		store:    store,
		logger:   lgr,
		running:  true,
		strategy: strategy.Get(initialStrategy),
	}

	state, err := store.LoadBotState(ctx)
	if err != nil {
		lgr.Error("failed to load bot state, defaulting to running", logger.Error(err))
		return c
	}
	c.running = state.Running
	lgr.Info("loaded bot state", logger.String("status", string(c.statusLocked())))
	return c
}

// Status returns the current run state from the in-memory mirror.
func (c *Controller) Status() models.BotStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Running reports whether the bot is currently running.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Toggle flips the run state and persists it before returning. A
// persistence failure is logged, not propagated: the in-memory flip is
// honored for this process so a toggle never half-applies.
func (c *Controller) Toggle(ctx context.Context) models.BotStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.running = !c.running
	status := c.statusLocked()

	state := &models.BotState{Running: c.running, ActiveStrategy: c.strategy.Name()}
	if err := c.store.SaveBotState(ctx, state); err != nil {
		c.logger.Error("failed to persist bot state", logger.Error(err))
	} else {
		c.logger.Info("saved bot state", logger.String("status", string(status)))
	}
	return status
}

// SetStrategy swaps the active strategy by name, falling back to the
// default variant for unknown names. The selection is per process
// lifetime and not persisted.
func (c *Controller) SetStrategy(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy.Get(name)
	c.logger.Info("strategy changed", logger.String("strategy", c.strategy.Name()))
	return c.strategy.Name()
}

// Strategy returns the active strategy.
func (c *Controller) Strategy() strategy.Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strategy
}

func (c *Controller) statusLocked() models.BotStatus {
	if c.running {
		return models.StatusRunning
	}
	return models.StatusPaused
}
