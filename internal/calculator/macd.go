package calculator

import (
	"fmt"

	"SwingScanner/internal/model"
)

// MACDOption configures the MACD spans.
type MACDOption struct {
	Fast   int
	Slow   int
	Signal int
}

// DefaultMACDOption is the classic 12/26/9 setup.
var DefaultMACDOption = MACDOption{Fast: 12, Slow: 26, Signal: 9}

// Validate checks the spans.
func (o MACDOption) Validate() error {
	if err := requirePositive("macd fast", o.Fast); err != nil {
		return err
	}
	if o.Slow <= o.Fast {
		return &ValidationError{Field: "macd slow", Err: fmt.Errorf("must exceed fast span: %d <= %d", o.Slow, o.Fast)}
	}
	return requirePositive("macd signal", o.Signal)
}

// MACDSeries holds the three MACD columns.
type MACDSeries struct {
	MACD   []model.Value
	Signal []model.Value
	Hist   []model.Value
}

// MACD computes the MACD line, its signal line and the histogram.
// The EMAs have no warm-up gate and are defined from the first bar.
func MACD(closes []float64, opt MACDOption) (MACDSeries, error) {
	if err := opt.Validate(); err != nil {
		return MACDSeries{}, err
	}
	in := defined(closes)
	fast := EMA(in, SpanAlpha(opt.Fast), 0)
	slow := EMA(in, SpanAlpha(opt.Slow), 0)

	line := make([]model.Value, len(closes))
	for i := range closes {
		f, ok1 := fast[i].Get()
		s, ok2 := slow[i].Get()
		if ok1 && ok2 {
			line[i] = model.Some(f - s)
		}
	}
	signal := EMA(line, SpanAlpha(opt.Signal), 0)

	hist := make([]model.Value, len(closes))
	for i := range closes {
		m, ok1 := line[i].Get()
		s, ok2 := signal[i].Get()
		if ok1 && ok2 {
			hist[i] = model.Some(m - s)
		}
	}
	return MACDSeries{MACD: line, Signal: signal, Hist: hist}, nil
}
