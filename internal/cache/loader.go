package cache

import (
	"context"
	"fmt"

	"SwingScanner/internal/logging"
	"SwingScanner/internal/model"
)

// DefaultWindow is the number of trailing bars kept per symbol.
const DefaultWindow = 300

// SeriesSource loads stored history for a ticker.
type SeriesSource interface {
	LoadSeries(ctx context.Context, ticker string, limit int) (model.PriceSeries, error)
}

// Loader refills a Cache from the price store.
type Loader struct {
	Source SeriesSource
	Cache  Cache
	Window int
	// Suffix is appended to each symbol to form the stored ticker.
	Suffix string
}

// Reload replaces the cache content with the trailing window of every symbol
// that has stored bars. Symbols without data are left out. It returns the
// number of cached symbols.
func (l *Loader) Reload(ctx context.Context, symbols []string) (int, error) {
	log := logging.Component("cache")
	window := l.Window
	if window <= 0 {
		window = DefaultWindow
	}

	all := make(map[string]model.PriceSeries, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		series, err := l.Source.LoadSeries(ctx, sym+l.Suffix, window)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", sym, err)
		}
		if series.Len() == 0 {
			continue
		}
		series.Symbol = sym
		all[sym] = series
	}
	if err := l.Cache.Replace(ctx, all); err != nil {
		return 0, fmt.Errorf("replace cache: %w", err)
	}
	log.Info().Int("symbols", len(all)).Int("window", window).Msg("series cache loaded")
	return len(all), nil
}
