package calculator

import (
	"math"

	"SwingScanner/internal/model"
)

// RSI computes the Wilder-smoothed relative strength index.
// Average gain and loss are bias-corrected EMAs with center of mass window-1 over
// the day-over-day close changes (the first bar counts as a zero change), and
// need window observations before producing a value.
// When the average loss is zero the ratio is infinite and the row is left
// unavailable instead of being pinned to 100.
func RSI(closes []float64, window int) ([]model.Value, error) {
	if err := requirePositive("rsi window", window); err != nil {
		return nil, err
	}
	gains := make([]model.Value, len(closes))
	losses := make([]model.Value, len(closes))
	for i := range closes {
		var delta float64
		if i > 0 {
			delta = closes[i] - closes[i-1]
		}
		gains[i] = model.Some(math.Max(delta, 0))
		losses[i] = model.Some(math.Max(-delta, 0))
	}

	alpha := ComAlpha(float64(window - 1))
	avgGain := AdjustedEMA(gains, alpha, window)
	avgLoss := AdjustedEMA(losses, alpha, window)

	out := make([]model.Value, len(closes))
	for i := range closes {
		g, ok1 := avgGain[i].Get()
		l, ok2 := avgLoss[i].Get()
		if !ok1 || !ok2 || l == 0 {
			continue
		}
		rs := g / l
		out[i] = model.Some(100 - 100/(1+rs))
	}
	return out, nil
}
