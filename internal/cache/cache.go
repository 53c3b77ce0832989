package cache

import (
	"context"
	"sync"

	"SwingScanner/internal/model"
)

// Cache holds the trailing price window per symbol.
// Get always hands out a copy so concurrent evaluations never share bars.
type Cache interface {
	Get(ctx context.Context, symbol string) (model.PriceSeries, bool, error)
	Put(ctx context.Context, series model.PriceSeries) error
	Replace(ctx context.Context, all map[string]model.PriceSeries) error
	Len(ctx context.Context) (int, error)
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu     sync.RWMutex
	series map[string]model.PriceSeries
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{series: make(map[string]model.PriceSeries)}
}

func (c *MemoryCache) Get(_ context.Context, symbol string) (model.PriceSeries, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.series[symbol]
	if !ok {
		return model.PriceSeries{}, false, nil
	}
	return s.Clone(), true, nil
}

func (c *MemoryCache) Put(_ context.Context, series model.PriceSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[series.Symbol] = series.Clone()
	return nil
}

// Replace swaps the whole content in one step.
func (c *MemoryCache) Replace(_ context.Context, all map[string]model.PriceSeries) error {
	next := make(map[string]model.PriceSeries, len(all))
	for sym, s := range all {
		next[sym] = s.Clone()
	}
	c.mu.Lock()
	c.series = next
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.series), nil
}
