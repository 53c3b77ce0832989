package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"SwingScanner/internal/model"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "swing:series:"

// RedisCache stores each series as JSON under swing:series:<symbol>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to addr. A zero ttl keeps keys until the next Replace.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Get(ctx context.Context, symbol string) (model.PriceSeries, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.PriceSeries{}, false, nil
	}
	if err != nil {
		return model.PriceSeries{}, false, fmt.Errorf("redis get %s: %w", symbol, err)
	}
	var s model.PriceSeries
	if err := json.Unmarshal(data, &s); err != nil {
		return model.PriceSeries{}, false, fmt.Errorf("decode %s: %w", symbol, err)
	}
	return s, true, nil
}

func (c *RedisCache) Put(ctx context.Context, series model.PriceSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+series.Symbol, data, c.ttl).Err()
}

// Replace writes every series and removes keys for symbols no longer present.
func (c *RedisCache) Replace(ctx context.Context, all map[string]model.PriceSeries) error {
	existing, err := c.keys(ctx)
	if err != nil {
		return err
	}
	payload := make(map[string][]byte, len(all))
	for sym, s := range all {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("encode %s: %w", sym, err)
		}
		payload[keyPrefix+sym] = data
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range existing {
			if _, keep := payload[k]; !keep {
				pipe.Del(ctx, k)
			}
		}
		for k, data := range payload {
			pipe.Set(ctx, k, data, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis replace: %w", err)
	}
	return nil
}

func (c *RedisCache) Len(ctx context.Context) (int, error) {
	keys, err := c.keys(ctx)
	return len(keys), err
}

func (c *RedisCache) keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
