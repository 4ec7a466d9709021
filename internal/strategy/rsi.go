package strategy

import "ascent/internal/domain/models"

// RSI is a mean-reversion strategy over Wilder's relative strength
// index: buy when oversold, sell when overbought.
type RSI struct {
	window     int
	oversold   float64
	overbought float64
}

func NewRSI() *RSI {
	return &RSI{window: 14, oversold: 30, overbought: 70}
}

func (r *RSI) Name() string { return "rsi" }

func (r *RSI) Evaluate(bars []models.Bar) models.Signal {
	cs := closes(bars)
	if len(cs) < r.window+1 {
		return models.SignalHold
	}

	rsi := wilderRSI(cs, r.window)
	switch {
	case rsi < r.oversold:
		return models.SignalBuy
	case rsi > r.overbought:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// wilderRSI computes the RSI of the last close using Wilder smoothing
// over the full delta history.
func wilderRSI(closes []float64, window int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	for i := window + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // flat history
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
