package models

// StrategyRequest selects the active trading strategy.
type StrategyRequest struct {
	Strategy string `json:"strategy" validate:"required"`
}

// ExecuteTradeRequest submits a manual trade outside the scheduler.
type ExecuteTradeRequest struct {
	Symbol string  `json:"symbol" default:"AAPL" validate:"required"`
	Side   string  `json:"side" default:"buy" validate:"oneof=buy sell"`
	Qty    float64 `json:"qty" default:"1" validate:"gt=0"`
}
