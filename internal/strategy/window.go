package strategy

import "SwingScanner/internal/model"

// Point is one bar together with its indicator row.
type Point struct {
	Bar model.PriceBar
	Ind model.IndicatorRow
}

// Window gives bounds-checked access to the trailing rows of a series and its frame.
type Window struct {
	bars  []model.PriceBar
	frame *model.IndicatorFrame
}

// NewWindow pairs a series with its frame. Both must have the same length.
func NewWindow(series model.PriceSeries, frame *model.IndicatorFrame) Window {
	return Window{bars: series.Bars, frame: frame}
}

// Len returns the number of rows.
func (w Window) Len() int { return len(w.bars) }

// Lag returns the row k bars before the last one; Lag(0) is the current bar.
func (w Window) Lag(k int) (Point, bool) {
	i := len(w.bars) - 1 - k
	if k < 0 || i < 0 || w.frame == nil || i >= w.frame.Len() {
		return Point{}, false
	}
	return Point{Bar: w.bars[i], Ind: w.frame.Row(i)}, true
}

// Current returns the last row.
func (w Window) Current() (Point, bool) { return w.Lag(0) }

// Previous returns the second-to-last row.
func (w Window) Previous() (Point, bool) { return w.Lag(1) }

// ReadyRows counts rows past warmUp whose momentum inputs are computable.
func (w Window) ReadyRows(warmUp int) int {
	if w.frame == nil {
		return 0
	}
	n := 0
	for i := warmUp; i < w.frame.Len(); i++ {
		if i >= 0 && w.frame.MACDHist[i].Valid() {
			n++
		}
	}
	return n
}
