package calculator

import (
	"SwingScanner/internal/model"

	"github.com/markcheno/go-talib"
)

// SMA computes the rolling simple moving average over period values.
// Rows before the first full window are unavailable.
func SMA(values []float64, period int) ([]model.Value, error) {
	if err := requirePositive("period", period); err != nil {
		return nil, err
	}
	out := make([]model.Value, len(values))
	if len(values) < period {
		return out, nil
	}
	sma := talib.Sma(values, period)
	for i := period - 1; i < len(values); i++ {
		out[i] = model.Some(sma[i])
	}
	return out, nil
}

// Slope returns ma[t] - ma[t-lag]. Rows where either side is unavailable stay unavailable.
func Slope(ma []model.Value, lag int) ([]model.Value, error) {
	if err := requirePositive("slope period", lag); err != nil {
		return nil, err
	}
	out := make([]model.Value, len(ma))
	for i := lag; i < len(ma); i++ {
		cur, ok1 := ma[i].Get()
		prev, ok2 := ma[i-lag].Get()
		if ok1 && ok2 {
			out[i] = model.Some(cur - prev)
		}
	}
	return out, nil
}
