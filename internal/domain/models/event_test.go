package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseEventTrade(t *testing.T) {
	data := []byte(`{"type":"trade","timestamp":"2026-01-02T15:04:05Z","symbol":"AAPL","side":"buy","price":123.45,"strategy":"momentum"}`)
	ev, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ev.Type != EventTrade || ev.Symbol != "AAPL" || ev.Side != "buy" || ev.Price != 123.45 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestParseEventUnknownType(t *testing.T) {
	if _, err := ParseEvent([]byte(`{"type":"heartbeat"}`)); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestParseEventMalformed(t *testing.T) {
	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestNewTradeEventRoundTrip(t *testing.T) {
	ev := NewTradeEvent("MSFT", "sell", 321.5, "rsi")

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Symbol != "MSFT" || got.Side != "sell" || got.Price != 321.5 || got.Strategy != "rsi" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if _, err := time.Parse(time.RFC3339, got.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", got.Timestamp)
	}
}

func TestNewStatusEvent(t *testing.T) {
	ev := NewStatusEvent(StatusPaused)
	if ev.Type != EventStatus || ev.Status != string(StatusPaused) {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestStatusEventOmitsTradeFields(t *testing.T) {
	data, err := json.Marshal(NewStatusEvent(StatusRunning))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"symbol", "side", "price", "strategy"} {
		if _, ok := raw[field]; ok {
			t.Fatalf("status event should not carry %q: %s", field, data)
		}
	}
}
