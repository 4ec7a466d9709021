package models

import "time"

// BotState is the persisted singleton control record. Exactly one row
// exists; it is created lazily with running=true on first access.
type BotState struct {
	ID             int64
	Running        bool
	ActiveStrategy string
}

// ExecutedTrade is an append-only record of a filled order submission.
type ExecutedTrade struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Qty       float64   `json:"qty"`
	Signal    string    `json:"signal"`
	Strategy  string    `json:"strategy"`
	CreatedAt time.Time `json:"created_at"`
}

// StrategyPerformance is an append-only per-tick snapshot of account
// value, captured once per scheduler tick after all symbols processed.
type StrategyPerformance struct {
	ID             int64     `json:"id"`
	Strategy       string    `json:"strategy"`
	PortfolioValue float64   `json:"portfolio_value"`
	CapturedAt     time.Time `json:"captured_at"`
}
