package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType discriminates event messages on the broker channel.
type EventType string

const (
	EventTrade          EventType = "trade"
	EventStatus         EventType = "status"
	EventStrategyChange EventType = "strategy_change"
)

// Event is the tagged message carried on the broker channel. It is
// transit-only: published fire-and-forget, delivered at most once to
// each currently-connected subscriber, never persisted or replayed.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp string    `json:"timestamp"`

	// trade
	Symbol   string  `json:"symbol,omitempty"`
	Side     string  `json:"side,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Strategy string  `json:"strategy,omitempty"`

	// status
	Status string `json:"status,omitempty"`
}

// NewTradeEvent builds a trade event for an executed order.
func NewTradeEvent(symbol, side string, price float64, strategy string) Event {
	return Event{
		Type:      EventTrade,
		Timestamp: time.Now().Format(time.RFC3339),
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Strategy:  strategy,
	}
}

// NewStatusEvent builds a bot status change event.
func NewStatusEvent(status BotStatus) Event {
	return Event{
		Type:      EventStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Status:    string(status),
	}
}

// NewStrategyChangeEvent builds a strategy change event.
func NewStrategyChangeEvent(strategy string) Event {
	return Event{
		Type:      EventStrategyChange,
		Timestamp: time.Now().Format(time.RFC3339),
		Strategy:  strategy,
	}
}

// ParseEvent decodes an event payload from the broker channel. Unknown
// or missing types are rejected so listeners can drop them.
func ParseEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	switch ev.Type {
	case EventTrade, EventStatus, EventStrategyChange:
		return ev, nil
	default:
		return Event{}, fmt.Errorf("unknown event type: %q", ev.Type)
	}
}
