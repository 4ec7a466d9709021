package strategy

import "ascent/internal/domain/models"

// SMACrossover compares a short against a long simple moving average
// of closes.
type SMACrossover struct {
	short int
	long  int
}

func NewSMACrossover() *SMACrossover {
	return &SMACrossover{short: 3, long: 5}
}

func (s *SMACrossover) Name() string { return "sma_crossover" }

func (s *SMACrossover) Evaluate(bars []models.Bar) models.Signal {
	cs := closes(bars)
	if len(cs) < s.long {
		return models.SignalHold
	}
	shortAvg := mean(cs[len(cs)-s.short:])
	longAvg := mean(cs[len(cs)-s.long:])
	switch {
	case shortAvg > longAvg:
		return models.SignalBuy
	case shortAvg < longAvg:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}
