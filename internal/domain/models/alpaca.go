package models

import "encoding/json"

// Account is the brokerage account snapshot used for performance
// capture and the account API endpoint.
type Account struct {
	ID           string  `json:"id"`
	Cash         float64 `json:"cash,string"`
	BuyingPower  float64 `json:"buying_power,string"`
	Equity       float64 `json:"equity,string"`
	CryptoStatus string  `json:"crypto_status"`
}

// Order is the brokerage order submission result.
type Order struct {
	ID             string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Qty            float64 `json:"qty,string"`
	Side           string  `json:"side"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	FilledAvgPrice float64 `json:"filled_avg_price,string"`
}

// Position is one open brokerage position.
type Position struct {
	Symbol        string  `json:"symbol"`
	Qty           float64 `json:"qty,string"`
	AvgEntryPrice float64 `json:"avg_entry_price,string"`
	MarketValue   float64 `json:"market_value,string"`
	UnrealizedPL  float64 `json:"unrealized_pl,string"`
}

// Activity is a raw brokerage account activity record, passed through
// to API consumers without interpretation.
type Activity = json.RawMessage
