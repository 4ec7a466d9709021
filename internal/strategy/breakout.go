package strategy

import "ascent/internal/domain/models"

// Breakout signals when the latest bar escapes the rolling high/low
// channel formed by the preceding bars.
type Breakout struct {
	window int
}

func NewBreakout() *Breakout {
	return &Breakout{window: 20}
}

func (b *Breakout) Name() string { return "breakout" }

func (b *Breakout) Evaluate(bars []models.Bar) models.Signal {
	if len(bars) < b.window+1 {
		return models.SignalHold
	}

	// Channel over the window ending at the previous bar.
	prev := bars[len(bars)-1-b.window : len(bars)-1]
	high := prev[0].High
	low := prev[0].Low
	for _, bar := range prev[1:] {
		if bar.High > high {
			high = bar.High
		}
		if bar.Low < low {
			low = bar.Low
		}
	}

	last := bars[len(bars)-1]
	switch {
	case last.High > high:
		return models.SignalBuy
	case last.Low < low:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}
