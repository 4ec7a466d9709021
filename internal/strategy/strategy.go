package strategy

import (
	"sort"

	"ascent/internal/domain/models"
)

// Strategy evaluates a chronological bar history into a trade signal.
// Implementations are pure: no I/O, no shared state. A history shorter
// than the strategy's lookback yields SignalHold, and any tie between
// compared quantities resolves to SignalHold.
type Strategy interface {
	Name() string
	Evaluate(bars []models.Bar) models.Signal
}

// DefaultName is the variant an unknown name resolves to.
const DefaultName = "momentum"

var registry = map[string]func() Strategy{
	"momentum":      func() Strategy { return NewMomentum() },
	"rsi":           func() Strategy { return NewRSI() },
	"breakout":      func() Strategy { return NewBreakout() },
	"sma_crossover": func() Strategy { return NewSMACrossover() },
}

// Get resolves a strategy by name. Unknown names fall back to the
// default variant rather than failing.
func Get(name string) Strategy {
	if build, ok := registry[name]; ok {
		return build()
	}
	return registry[DefaultName]()
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
