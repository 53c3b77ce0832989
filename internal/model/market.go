package model

import "time"

// DateLayout is the calendar-date format used by the price store.
const DateLayout = "2006-01-02"

// PriceBar is one trading day of data for one symbol.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds date-ordered, duplicate-free daily bars for one symbol.
type PriceSeries struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Tail returns a copy of the series holding at most the last n bars.
func (s PriceSeries) Tail(n int) PriceSeries {
	bars := s.Bars
	if n >= 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return PriceSeries{Symbol: s.Symbol, Bars: append([]PriceBar(nil), bars...)}
}

// Clone returns a deep copy of the series.
func (s PriceSeries) Clone() PriceSeries {
	return s.Tail(-1)
}

// Closes extracts the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// LastDate returns the date of the final bar, or the zero time for an empty series.
func (s PriceSeries) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}
