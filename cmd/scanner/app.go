package main

import (
	"context"
	"fmt"

	"SwingScanner/internal/cache"
	"SwingScanner/internal/collector"
	"SwingScanner/internal/config"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/logging"
	"SwingScanner/internal/recorder"
	"SwingScanner/internal/scanner"
	"SwingScanner/internal/store"
	"SwingScanner/internal/strategy"
	"SwingScanner/internal/symbols"

	"github.com/rs/zerolog/log"
)

// app wires the components shared by every command.
type app struct {
	cfg       *config.Config
	store     *store.Store
	cache     cache.Cache
	loader    *cache.Loader
	collector *collector.Collector
	scanner   *scanner.Scanner
	settings  *fund.SettingsManager
	recorder  recorder.Recorder
	closers   []func() error
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(config.Path(path))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	switch cfg.Cache.Backend {
	case "redis":
		rc := cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		a.closers = append(a.closers, rc.Close)
		if err := rc.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Cache.RedisAddr, err)
		}
		a.cache = rc
	default:
		a.cache = cache.NewMemoryCache()
	}
	a.loader = &cache.Loader{Source: st, Cache: a.cache, Window: cfg.Cache.Window, Suffix: cfg.DataSource.TickerSuffix}

	a.collector = collector.NewCollector(newFetcher(cfg.DataSource), st, a.loader, cfg.DataSource.TickerSuffix)

	engine, err := strategy.NewEngine(cfg.StrategyConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("signal config: %w", err)
	}
	a.scanner = scanner.New(engine, a.cache, cfg.Scan.Workers)

	if a.settings, err = newSettings(cfg); err != nil {
		a.Close()
		return nil, err
	}

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Recorder.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Recorder.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	}
	return a, nil
}

func newSettings(cfg *config.Config) (*fund.SettingsManager, error) {
	m, err := fund.NewSettingsManager(cfg.Risk.StateFile, cfg.RiskDefaults())
	if err != nil {
		return nil, fmt.Errorf("load risk settings: %w", err)
	}
	return m, nil
}

func newFetcher(ds config.DataSourceConfig) collector.Fetcher {
	opts := collector.ClientOptions{
		Timeout:        ds.Timeout,
		RequestsPerSec: ds.RequestsPerSec,
		Proxy:          ds.Proxy,
	}
	switch ds.Source {
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, opts)
	case "mock":
		return &collector.MockFetcher{Price: 100, Days: 400}
	default:
		return collector.NewYahooFetcher(ds.BaseURL, !ds.Unadjusted, opts)
	}
}

func (a *app) symbols() ([]string, error) {
	syms, err := symbols.Load(a.cfg.Symbols.Files...)
	if err != nil {
		return nil, err
	}
	if len(syms) == 0 {
		return nil, fmt.Errorf("no symbols found in %v", a.cfg.Symbols.Files)
	}
	return syms, nil
}

// warmCache fills an empty cache from the price store.
func (a *app) warmCache(ctx context.Context, syms []string) error {
	n, err := a.cache.Len(ctx)
	if err != nil {
		return fmt.Errorf("cache size: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := a.loader.Reload(ctx, syms); err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
}
