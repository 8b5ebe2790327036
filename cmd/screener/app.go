package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"MarketScreener/internal/cache"
	"MarketScreener/internal/collector"
	"MarketScreener/internal/config"
	"MarketScreener/internal/metrics"
	"MarketScreener/internal/notifier"
	"MarketScreener/internal/recorder"
	"MarketScreener/internal/report"
	"MarketScreener/internal/screener"
)

// app holds the wired components of one process.
type app struct {
	screener *screener.Screener
	recorder recorder.Recorder
	metrics  *metrics.Registry
	cache    cache.SeriesCache
	telegram *notifier.TelegramNotifier // nil when not configured

	closers []func() error
	log     zerolog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{metrics: metrics.New(), log: logger}

	a.cache = a.openCache(ctx, cfg, logger)

	fetcher := collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.DataSource.Proxy, cfg.DataSource.Timeout)
	logger.Info().Str("source", fetcher.Name()).Str("base_url", fetcher.BaseURL).Msg("data source")
	col := collector.NewCollector(fetcher, a.cache, collector.Options{
		RequestsPerSecond: cfg.DataSource.RequestsPerSecond,
		Burst:             cfg.DataSource.Burst,
		MaxRetries:        cfg.DataSource.MaxRetries,
		RetryBackoff:      cfg.DataSource.RetryBackoff,
		Observer:          a.metrics,
	}, logger)

	rec, err := openRecorder(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		rec = recorder.NewNoopRecorder()
	}
	a.recorder = rec
	a.closers = append(a.closers, rec.Close)

	var notify notifier.Notifier = notifier.Noop{}
	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy, logger)
		notify = a.telegram
	} else {
		logger.Info().Msg("telegram not configured, notifications disabled")
	}

	a.screener = screener.New(col, report.NewExcelSink(logger), rec, notify, a.metrics, screener.Options{
		Tickers:    cfg.Tickers,
		Timeframes: cfg.Timeframes,
		ChunkSize:  cfg.Batch.ChunkSize,
		Pause:      cfg.Batch.Pause,
		TopN:       cfg.Report.TopN,
	}, logger)
	return a, nil
}

// openCache returns the configured series cache. An unreachable redis falls
// back to the file cache and an unusable cache dir to no caching.
func (a *app) openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) cache.SeriesCache {
	switch cfg.Cache.Kind {
	case config.CacheNone:
		return cache.Noop{}
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL, logger)
		if err == nil {
			a.closers = append(a.closers, rc.Close)
			logger.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis series cache")
			return rc
		}
		logger.Warn().Err(err).Msg("redis unavailable, falling back to file cache")
	}
	fc, err := cache.NewFileCache(cfg.Cache.Dir, cfg.Cache.TTL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("file cache unavailable, caching disabled")
		return cache.Noop{}
	}
	logger.Info().Str("dir", cfg.Cache.Dir).Dur("ttl", cfg.Cache.TTL).Msg("using file series cache")
	return fc
}

func openRecorder(cfg *config.Config, logger zerolog.Logger) (recorder.Recorder, error) {
	if cfg.Database.SQLitePath == "none" {
		logger.Info().Msg("run history disabled")
		return recorder.NewNoopRecorder(), nil
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open recorder: %w", err)
	}
	return rec, nil
}

// Close releases every opened resource in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}
