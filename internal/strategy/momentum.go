package strategy

import "ascent/internal/domain/models"

// Momentum compares a fast against a slow moving average of closes.
type Momentum struct {
	fast int
	slow int
}

func NewMomentum() *Momentum {
	return &Momentum{fast: 50, slow: 200}
}

func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Evaluate(bars []models.Bar) models.Signal {
	cs := closes(bars)
	if len(cs) < m.slow {
		return models.SignalHold
	}
	fastAvg := mean(cs[len(cs)-m.fast:])
	slowAvg := mean(cs[len(cs)-m.slow:])
	switch {
	case fastAvg > slowAvg:
		return models.SignalBuy
	case fastAvg < slowAvg:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}
