package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"SwingScanner/internal/fund"
	"SwingScanner/internal/strategy"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SWING_RISK_PORTFOLIO_SIZE.
const EnvPrefix = "SWING"

// DefaultPath is used when neither a flag nor CONFIG_PATH names a file.
const DefaultPath = "configs/config.yaml"

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redis_addr" split_words:"true"`
	RedisPassword string        `yaml:"redis_password" split_words:"true"`
	RedisDB       int           `yaml:"redis_db" split_words:"true"`
	TTL           time.Duration `yaml:"ttl"`
	Window        int           `yaml:"window"`
}

type DataSourceConfig struct {
	Source         string        `yaml:"source"`
	BaseURL        string        `yaml:"base_url" split_words:"true"`
	APIKey         string        `yaml:"api_key" split_words:"true"`
	TickerSuffix   string        `yaml:"ticker_suffix" split_words:"true"`
	Unadjusted     bool          `yaml:"unadjusted"`
	RequestsPerSec float64       `yaml:"requests_per_sec" split_words:"true"`
	Timeout        time.Duration `yaml:"timeout"`
	Proxy          string        `yaml:"proxy"`
}

type SymbolsConfig struct {
	Files []string `yaml:"files"`
}

type RiskConfig struct {
	RiskPerTrade  float64 `yaml:"risk_per_trade" split_words:"true"`
	PortfolioSize float64 `yaml:"portfolio_size" split_words:"true"`
	StateFile     string  `yaml:"state_file" split_words:"true"`
}

type SignalConfig struct {
	VolumeZScoreThreshold float64 `yaml:"volume_zscore_threshold" split_words:"true"`
	MASlopePeriod         int     `yaml:"ma_slope_period" split_words:"true"`
	MinHistory            int     `yaml:"min_history" split_words:"true"`
}

type ScanConfig struct {
	Workers int `yaml:"workers"`
}

type ScheduleConfig struct {
	UpdateCron string `yaml:"update_cron" split_words:"true"`
	ScanCron   string `yaml:"scan_cron" split_words:"true"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" split_words:"true"`
	ChatID   int64  `yaml:"chat_id" split_words:"true"`
}

type RecorderConfig struct {
	SQLitePath string `yaml:"sqlite_path" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	DataSource DataSourceConfig `yaml:"data_source" split_words:"true"`
	Symbols    SymbolsConfig    `yaml:"symbols"`
	Risk       RiskConfig       `yaml:"risk"`
	Signal     SignalConfig     `yaml:"signal"`
	Scan       ScanConfig       `yaml:"scan"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Recorder   RecorderConfig   `yaml:"recorder"`
	Log        LogConfig        `yaml:"log"`
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Path resolves the config file path: flag value, then $CONFIG_PATH, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then .env, then SWING_* environment
// overrides. A missing YAML or .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/prices.db"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Cache.Window == 0 {
		c.Cache.Window = 300
	}
	if c.DataSource.Source == "" {
		c.DataSource.Source = "yahoo"
	}
	if c.DataSource.TickerSuffix == "" {
		c.DataSource.TickerSuffix = ".IS"
	}
	if c.DataSource.RequestsPerSec == 0 {
		c.DataSource.RequestsPerSec = 2
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if len(c.Symbols.Files) == 0 {
		c.Symbols.Files = []string{"hisseler.csv"}
	}
	if c.Risk.RiskPerTrade == 0 {
		c.Risk.RiskPerTrade = 0.025
	}
	if c.Risk.PortfolioSize == 0 {
		c.Risk.PortfolioSize = 50000
	}
	if c.Risk.StateFile == "" {
		c.Risk.StateFile = "data/risk_settings.json"
	}
	if c.Signal.VolumeZScoreThreshold == 0 {
		c.Signal.VolumeZScoreThreshold = 1.0
	}
	if c.Signal.MASlopePeriod == 0 {
		c.Signal.MASlopePeriod = 5
	}
	if c.Signal.MinHistory == 0 {
		c.Signal.MinHistory = strategy.DefaultMinHistory
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 8
	}
	if c.Schedule.UpdateCron == "" {
		c.Schedule.UpdateCron = "0 0 19 * * 1-5"
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 15 19 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks every value the scanner depends on. Telegram and the
// recorder are optional.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return &ValidationError{Field: "database.driver", Err: fmt.Errorf("unknown driver %q", c.Database.Driver)}
	}
	if c.Database.DSN == "" {
		return &ValidationError{Field: "database.dsn", Err: errors.New("is required")}
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return &ValidationError{Field: "cache.backend", Err: fmt.Errorf("unknown backend %q", c.Cache.Backend)}
	}
	if c.Cache.Window < c.Signal.MinHistory {
		return &ValidationError{Field: "cache.window", Err: fmt.Errorf("must be at least signal.min_history (%d), got %d", c.Signal.MinHistory, c.Cache.Window)}
	}
	switch c.DataSource.Source {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return &ValidationError{Field: "data_source.base_url", Err: errors.New("is required for the rest source")}
		}
	default:
		return &ValidationError{Field: "data_source.source", Err: fmt.Errorf("unknown source %q", c.DataSource.Source)}
	}
	if err := c.RiskDefaults().Validate(); err != nil {
		return &ValidationError{Field: "risk", Err: err}
	}
	if c.Scan.Workers <= 0 {
		return &ValidationError{Field: "scan.workers", Err: fmt.Errorf("must be positive, got %d", c.Scan.Workers)}
	}
	if c.Signal.VolumeZScoreThreshold <= 0 {
		return &ValidationError{Field: "signal.volume_zscore_threshold", Err: fmt.Errorf("must be positive, got %v", c.Signal.VolumeZScoreThreshold)}
	}
	return nil
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

// RiskDefaults returns the configured risk parameters.
func (c *Config) RiskDefaults() fund.RiskParams {
	return fund.RiskParams{RiskPerTrade: c.Risk.RiskPerTrade, PortfolioSize: c.Risk.PortfolioSize}
}

// StrategyConfig builds the engine settings.
func (c *Config) StrategyConfig() strategy.Config {
	sc := strategy.DefaultConfig()
	sc.VolumeZScoreThreshold = c.Signal.VolumeZScoreThreshold
	sc.MinHistory = c.Signal.MinHistory
	sc.Indicators.SlopePeriod = c.Signal.MASlopePeriod
	return sc
}
