package collector

import (
	"context"
	"math"
	"sort"
	"time"

	"SwingScanner/internal/model"
)

// Fetcher downloads daily bars for an exchange ticker.
// A zero from requests the full available history; to is exclusive.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error)
	Name() string
}

// dayOf truncates t to its calendar date in UTC.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// cleanBars drops bars without a usable close, high or low, sorts by date and
// keeps the last bar for any repeated date.
func cleanBars(in []model.PriceBar) []model.PriceBar {
	out := make([]model.PriceBar, 0, len(in))
	for _, b := range in {
		if !usable(b.Close) || !usable(b.High) || !usable(b.Low) {
			continue
		}
		if math.IsNaN(b.Volume) || b.Volume < 0 {
			b.Volume = 0
		}
		b.Date = dayOf(b.Date)
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	dedup := out[:0]
	for _, b := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(b.Date) {
			dedup[n-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}
