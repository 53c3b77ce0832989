package calculator

import (
	"math"

	"SwingScanner/internal/model"
)

// ATRSeries holds true range, average true range and ATR as a percent of close.
type ATRSeries struct {
	TR      []model.Value
	ATR     []model.Value
	Percent []model.Value
}

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and is unavailable.
func TrueRange(bars []model.PriceBar) []model.Value {
	out := make([]model.Value, len(bars))
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		b := bars[i]
		out[i] = model.Some(math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev))))
	}
	return out
}

// ATR smooths the true range with an EMA of the given span, requiring window
// defined true ranges before producing a value.
func ATR(bars []model.PriceBar, window int) (ATRSeries, error) {
	if err := requirePositive("atr window", window); err != nil {
		return ATRSeries{}, err
	}
	tr := TrueRange(bars)
	atr := EMA(tr, SpanAlpha(window), window)
	pct := make([]model.Value, len(bars))
	for i, b := range bars {
		if a, ok := atr[i].Get(); ok && b.Close != 0 {
			pct[i] = model.Some(a / b.Close * 100)
		}
	}
	return ATRSeries{TR: tr, ATR: atr, Percent: pct}, nil
}
