package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"SwingScanner/internal/logging"
	"SwingScanner/internal/model"

	"github.com/rs/zerolog"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Days  int
	// Bars, when set, is returned for every ticker instead of generated data.
	Bars  []model.PriceBar
	Calls []MockCall
}

// MockCall records one FetchDailyBars request.
type MockCall struct {
	Ticker   string
	From, To time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error) {
	m.Calls = append(m.Calls, MockCall{Ticker: ticker, From: from, To: to})
	bars := m.Bars
	if bars == nil {
		days := m.Days
		if days == 0 {
			days = 300
		}
		end := to
		if end.IsZero() {
			end = time.Now()
		}
		bars = generateMockBars(m.Price, days, dayOf(end))
	}
	out := make([]model.PriceBar, 0, len(bars))
	for _, b := range bars {
		if (!from.IsZero() && b.Date.Before(from)) || (!to.IsZero() && !b.Date.Before(to)) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// generateMockBars builds count daily bars ending the day before end.
func generateMockBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	if basePrice <= 0 {
		basePrice = 100
	}
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001 + 0.01*math.Sin(float64(i)/4))
		bars[i] = model.PriceBar{
			Date:   end.AddDate(0, 0, -(count - i)),
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1_000_000 + float64(i%7)*25_000,
		}
	}
	return bars
}

// BarStore persists fetched bars.
type BarStore interface {
	UpsertBars(ctx context.Context, ticker string, bars []model.PriceBar) (int, error)
	LastDate(ctx context.Context, ticker string) (time.Time, bool, error)
}

// Reloader refreshes the series cache after a sync.
type Reloader interface {
	Reload(ctx context.Context, symbols []string) (int, error)
}

// SyncResult is the outcome of syncing one symbol.
type SyncResult struct {
	Symbol   string `json:"symbol"`
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

// Collector downloads price history into the store.
type Collector struct {
	Fetcher Fetcher
	Store   BarStore
	Cache   Reloader // optional
	// Suffix turns a symbol into the exchange ticker, ".IS" for Borsa Istanbul.
	Suffix string
	Now    func() time.Time
	log    zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, store BarStore, cache Reloader, suffix string) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Store:   store,
		Cache:   cache,
		Suffix:  suffix,
		Now:     time.Now,
		log:     logging.Component("collector"),
	}
}

// Bootstrap downloads the full history of every symbol.
func (c *Collector) Bootstrap(ctx context.Context, symbols []string) []SyncResult {
	c.log.Info().Int("symbols", len(symbols)).Str("source", c.Fetcher.Name()).Msg("bootstrap started")
	return c.run(ctx, symbols, func(sym string) SyncResult {
		return c.fetchAndStore(ctx, sym, time.Time{}, time.Time{})
	})
}

// Update downloads the bars missing since the last stored date of every symbol.
func (c *Collector) Update(ctx context.Context, symbols []string) []SyncResult {
	c.log.Info().Int("symbols", len(symbols)).Str("source", c.Fetcher.Name()).Msg("update started")
	return c.run(ctx, symbols, func(sym string) SyncResult {
		return c.UpdateSymbol(ctx, sym)
	})
}

func (c *Collector) run(ctx context.Context, symbols []string, sync func(string) SyncResult) []SyncResult {
	results := make([]SyncResult, 0, len(symbols))
	for i, sym := range symbols {
		if ctx.Err() != nil {
			results = append(results, SyncResult{Symbol: sym, Message: ctx.Err().Error()})
			continue
		}
		r := sync(sym)
		ev := c.log.Info()
		if !r.OK {
			ev = c.log.Warn()
		}
		ev.Str("symbol", sym).Int("n", i+1).Int("total", len(symbols)).Int("inserted", r.Inserted).Msg(r.Message)
		results = append(results, r)
	}
	if c.Cache != nil && ctx.Err() == nil {
		if _, err := c.Cache.Reload(ctx, symbols); err != nil {
			c.log.Error().Err(err).Msg("reload cache")
		}
	}
	return results
}

// UpdateSymbol fetches from the day after the last stored bar through tomorrow.
// A symbol with no stored bars is bootstrapped.
func (c *Collector) UpdateSymbol(ctx context.Context, symbol string) SyncResult {
	ticker := symbol + c.Suffix
	last, ok, err := c.Store.LastDate(ctx, ticker)
	if err != nil {
		return SyncResult{Symbol: symbol, Message: fmt.Sprintf("read last date: %v", err)}
	}
	if !ok {
		c.log.Info().Str("symbol", symbol).Msg("no stored bars, full bootstrap")
		return c.fetchAndStore(ctx, symbol, time.Time{}, time.Time{})
	}
	today := dayOf(c.Now())
	if !last.Before(today) {
		return SyncResult{Symbol: symbol, OK: true, Message: "up to date"}
	}
	return c.fetchAndStore(ctx, symbol, last.AddDate(0, 0, 1), today.AddDate(0, 0, 1))
}

func (c *Collector) fetchAndStore(ctx context.Context, symbol string, from, to time.Time) SyncResult {
	ticker := symbol + c.Suffix
	bars, err := c.Fetcher.FetchDailyBars(ctx, ticker, from, to)
	if err != nil {
		return SyncResult{Symbol: symbol, Message: fmt.Sprintf("download error: %v", err)}
	}
	bars = cleanBars(bars)
	if len(bars) == 0 {
		if !from.IsZero() {
			// nothing traded since the last stored day
			return SyncResult{Symbol: symbol, OK: true, Message: "no new bars"}
		}
		return SyncResult{Symbol: symbol, Message: "no data returned"}
	}
	n, err := c.Store.UpsertBars(ctx, ticker, bars)
	if err != nil {
		return SyncResult{Symbol: symbol, Message: fmt.Sprintf("store error: %v", err)}
	}
	return SyncResult{Symbol: symbol, OK: true, Inserted: n, Message: fmt.Sprintf("ok inserted: %d rows", n)}
}
