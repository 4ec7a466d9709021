package models

import "time"

// Bar is one OHLCV observation for a symbol. Bars arrive chronologically
// ascending and are never mutated after fetch.
type Bar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    float64   `json:"v"`
}

// Signal is the output of a strategy evaluation.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Actionable reports whether the signal should result in an order.
func (s Signal) Actionable() bool {
	return s == SignalBuy || s == SignalSell
}

// BotStatus is the controller run state.
type BotStatus string

const (
	StatusRunning BotStatus = "Running"
	StatusPaused  BotStatus = "Paused"
)
