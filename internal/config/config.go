package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MarketScreener/internal/model"
	"MarketScreener/internal/report"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds all application configuration.
type Config struct {
	Tickers    []string          `yaml:"tickers"`
	Timeframes []model.Timeframe `yaml:"timeframes"`
	DataSource struct {
		BaseURL           string        `yaml:"base_url"`
		Proxy             string        `yaml:"proxy"`
		RequestsPerSecond float64       `yaml:"requests_per_second"` // negative disables throttling
		Burst             int           `yaml:"burst"`
		MaxRetries        int           `yaml:"max_retries"`
		RetryBackoff      time.Duration `yaml:"retry_backoff"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Batch struct {
		ChunkSize int           `yaml:"chunk_size"`
		Pause     time.Duration `yaml:"pause"` // negative disables the pause
	} `yaml:"batch"`
	Cache struct {
		Kind          string        `yaml:"kind"`
		Dir           string        `yaml:"dir"`
		TTL           time.Duration `yaml:"ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Report struct {
		Output string `yaml:"output"`
		TopN   int    `yaml:"top_n"`
	} `yaml:"report"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron       string `yaml:"cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	LogLevel string `yaml:"log_level"`
}

// DefaultTimeframes are the three analysis windows blended into the master score.
func DefaultTimeframes() []model.Timeframe {
	return []model.Timeframe{
		{Label: "Short_Term_Analysis", Period: "6mo", Interval: "1d", Horizon: model.HorizonShort},
		{Label: "Medium_Term_Analysis", Period: "2y", Interval: "1d", Horizon: model.HorizonMedium},
		{Label: "Long_Term_Analysis", Period: "5y", Interval: "1wk", Horizon: model.HorizonLong},
	}
}

// Load reads an optional .env file and the YAML config at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SCREENER_TICKERS"); v != "" {
		c.Tickers = splitList(v)
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("CACHE_KIND"); v != "" {
		c.Cache.Kind = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("REPORT_OUTPUT"); v != "" {
		c.Report.Output = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SCREENER_CRON"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Schedule.RunOnStart = b
		}
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if len(c.Tickers) == 0 {
		c.Tickers = append([]string(nil), DefaultTickers...)
	}
	if len(c.Timeframes) == 0 {
		c.Timeframes = DefaultTimeframes()
	}
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.DataSource.Burst == 0 {
		c.DataSource.Burst = 5
	}
	if c.DataSource.MaxRetries == 0 {
		c.DataSource.MaxRetries = 3
	}
	if c.DataSource.RetryBackoff == 0 {
		c.DataSource.RetryBackoff = time.Second
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Batch.ChunkSize == 0 {
		c.Batch.ChunkSize = 50
	}
	if c.Batch.Pause == 0 {
		c.Batch.Pause = 3 * time.Second
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = CacheFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Report.Output == "" {
		c.Report.Output = "stock_analysis_report.xlsx"
	}
	if c.Report.TopN == 0 {
		c.Report.TopN = 10
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/market_screener.db"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 22 * * 1-5"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the settings a run cannot proceed without.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.New("tickers: at least one ticker is required")
	}
	if len(c.Timeframes) != 3 {
		return fmt.Errorf("timeframes: exactly 3 required, got %d", len(c.Timeframes))
	}
	labels := make(map[string]bool)
	horizons := make(map[model.Horizon]bool)
	for i, tf := range c.Timeframes {
		if tf.Label == "" {
			return fmt.Errorf("timeframes[%d].label is required", i)
		}
		if labels[tf.Label] {
			return fmt.Errorf("timeframes[%d]: duplicate label %q", i, tf.Label)
		}
		labels[tf.Label] = true
		if tf.Period == "" {
			return fmt.Errorf("timeframes[%d].period is required", i)
		}
		switch tf.Interval {
		case "1d", "1wk", "1mo":
		default:
			return fmt.Errorf("timeframes[%d]: unsupported interval %q", i, tf.Interval)
		}
		if !tf.Horizon.Valid() {
			return fmt.Errorf("timeframes[%d]: unknown horizon %q", i, tf.Horizon)
		}
		if horizons[tf.Horizon] {
			return fmt.Errorf("timeframes[%d]: horizon %q used twice", i, tf.Horizon)
		}
		horizons[tf.Horizon] = true
	}
	switch c.Cache.Kind {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.kind: unknown backend %q", c.Cache.Kind)
	}
	if c.Batch.ChunkSize < 0 {
		return errors.New("batch.chunk_size must not be negative")
	}
	sheetLabels := make([]string, len(c.Timeframes))
	for i, tf := range c.Timeframes {
		sheetLabels[i] = tf.Label
	}
	if err := report.CheckSheetNames(sheetLabels...); err != nil {
		return fmt.Errorf("timeframes: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether ranking notifications should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}
