package repository

import (
	"context"

	"ascent/internal/domain/models"
)

// Gateway is the brokerage trading venue. All calls may fail; callers
// treat failures as recoverable within their unit of work.
type Gateway interface {
	GetAccount(ctx context.Context) (*models.Account, error)
	GetPositions(ctx context.Context) ([]models.Position, error)
	GetActivities(ctx context.Context, limit int) ([]models.Activity, error)
	GetRecentBars(ctx context.Context, symbol, marketType string, limit int) ([]models.Bar, error)
	SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side string) (*models.Order, error)
}

// Store is durable storage for control state and append-only records.
type Store interface {
	Init(ctx context.Context) error // ensure schema, health check
	LoadBotState(ctx context.Context) (*models.BotState, error)
	SaveBotState(ctx context.Context, state *models.BotState) error
	InsertTrade(ctx context.Context, trade *models.ExecutedTrade) error
	InsertPerformance(ctx context.Context, perf *models.StrategyPerformance) error
	RecentTrades(ctx context.Context, limit int) ([]*models.ExecutedTrade, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher sends events into the broker channel. Delivery is
// fire-and-forget: no acknowledgment, no replay.
type Publisher interface {
	Publish(ctx context.Context, ev models.Event) error
	Close() error
}

// Subscription is a live handle on the broker channel. Events() yields
// messages until Close; a subscriber that was not listening at publish
// time never sees the message.
type Subscription interface {
	Events() <-chan models.Event
	Close() error
}

// Subscriber opens subscriptions on the broker channel.
type Subscriber interface {
	Subscribe(ctx context.Context) (Subscription, error)
	Close() error
}

type Metrics interface {
	RecordTick()
	RecordTrade(symbol, side string)
	RecordEventPublished(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordBroadcast(delivered int)
	SetObserverCount(n int)
}
