package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"SwingScanner/internal/fund"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// chdir moves into an empty directory so no stray .env is picked up.
func chdir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 300, cfg.Cache.Window)
	assert.Equal(t, ".IS", cfg.DataSource.TickerSuffix)
	assert.Equal(t, []string{"hisseler.csv"}, cfg.Symbols.Files)
	assert.Equal(t, fund.DefaultRiskParams(), cfg.RiskDefaults())
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.False(t, cfg.TelegramEnabled())

	sc := cfg.StrategyConfig()
	assert.Equal(t, 1.0, sc.VolumeZScoreThreshold)
	assert.Equal(t, 200, sc.MinHistory)
	assert.Equal(t, 5, sc.Indicators.SlopePeriod)
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	chdir(t)
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://localhost/swing
cache:
  backend: redis
  ttl: 6h
data_source:
  source: rest
  base_url: http://bars.local
symbols:
  files: ["lists/*.csv"]
risk:
  portfolio_size: 75000
telegram:
  chat_id: 99
`)
	t.Setenv("SWING_RISK_RISK_PER_TRADE", "0.01")
	t.Setenv("SWING_DATA_SOURCE_API_KEY", "secret")
	t.Setenv("SWING_TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("SWING_SCAN_WORKERS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "secret", cfg.DataSource.APIKey)
	assert.Equal(t, []string{"lists/*.csv"}, cfg.Symbols.Files)
	assert.Equal(t, fund.RiskParams{RiskPerTrade: 0.01, PortfolioSize: 75000}, cfg.RiskDefaults())
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadDotEnv(t *testing.T) {
	chdir(t)
	require.NoError(t, os.WriteFile(".env", []byte("SWING_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SWING_LOG_LEVEL") })

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	chdir(t)
	_, err := Load(writeConfig(t, "risk: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t)
	cases := []struct {
		field  string
		mutate func(*Config)
	}{
		{"database.driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"cache.backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"cache.window", func(c *Config) { c.Cache.Window = 150 }},
		{"data_source.source", func(c *Config) { c.DataSource.Source = "bloomberg" }},
		{"data_source.base_url", func(c *Config) { c.DataSource.Source = "rest" }},
		{"risk", func(c *Config) { c.Risk.RiskPerTrade = -0.01 }},
		{"risk", func(c *Config) { c.Risk.PortfolioSize = -1 }},
		{"scan.workers", func(c *Config) { c.Scan.Workers = -2 }},
	}
	for _, tc := range cases {
		cfg, err := Load("missing.yaml")
		require.NoError(t, err)
		tc.mutate(cfg)
		err = cfg.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, tc.field)
		assert.Equal(t, tc.field, verr.Field)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path(""))
	t.Setenv("CONFIG_PATH", "/etc/swing.yaml")
	assert.Equal(t, "/etc/swing.yaml", Path(""))
	assert.Equal(t, "x.yaml", Path("x.yaml"))
}
