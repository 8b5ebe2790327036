package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/cache"
	"MarketScreener/internal/config"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "backtest", "schedule", "history"}, names)
}

func TestBacktest_RejectsBadDate(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"backtest", "--date", "01/01/2024"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--date")
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers: [MSFT]\nlog_level: info\n"), 0o644))

	cfg, logger, err := loadConfig(&rootFlags{configPath: path, tickers: "aapl, nvda", logLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, cfg.Tickers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "debug", logger.GetLevel().String())

	_, _, err = loadConfig(&rootFlags{configPath: path, logLevel: "loud"})
	assert.Error(t, err)
}

func TestHistory_EmptyDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	db := filepath.Join(dir, "screener.db")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  sqlite_path: "+db+"\n"), 0o644))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "history", "aapl"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "no recorded runs for AAPL\n", out.String())
}

func TestNewApp_CacheFallbacks(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	tests := []struct {
		name     string
		kind     string
		cacheDir string
		want     cache.SeriesCache
	}{
		{"unreachable redis uses file cache", config.CacheRedis, filepath.Join(dir, "cache"), &cache.FileCache{}},
		{"unusable cache dir disables caching", config.CacheFile, filepath.Join(blocker, "cache"), cache.Noop{}},
		{"unreachable redis and unusable dir", config.CacheRedis, filepath.Join(blocker, "cache"), cache.Noop{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
			require.NoError(t, err)
			cfg.Cache.Kind = tt.kind
			cfg.Cache.RedisAddr = "127.0.0.1:1"
			cfg.Cache.Dir = tt.cacheDir
			cfg.Database.SQLitePath = "none"
			require.NoError(t, cfg.Validate())

			a, err := newApp(context.Background(), cfg, zerolog.Nop())
			require.NoError(t, err)
			defer a.Close()
			assert.NotNil(t, a.screener)
			assert.IsType(t, tt.want, a.cache)
		})
	}
}
