package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"MarketScreener/internal/cache"
	"MarketScreener/internal/model"
)

// DateLayout formats backtest dates in cache keys and file names.
const DateLayout = "2006-01-02"

// Observer receives data-access events, typically for metrics.
type Observer interface {
	CacheLookup(hit bool)
	FetchDone(source string, err error, elapsed time.Duration)
	Retry(source string)
}

type nopObserver struct{}

func (nopObserver) CacheLookup(bool)                       {}
func (nopObserver) FetchDone(string, error, time.Duration) {}
func (nopObserver) Retry(string)                           {}

// Options tunes the Collector's network behaviour.
type Options struct {
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int // total attempts per fetch
	RetryBackoff      time.Duration
	BreakerTimeout    time.Duration // how long the breaker stays open
	Observer          Observer
}

// Collector loads validated series, serving from cache when possible and
// otherwise fetching under a rate limit, retries and a circuit breaker.
type Collector struct {
	fetcher Fetcher
	cache   cache.SeriesCache
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retries int
	backoff time.Duration
	obs     Observer
	log     zerolog.Logger
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, c cache.SeriesCache, opts Options, logger zerolog.Logger) *Collector {
	if c == nil {
		c = cache.Noop{}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 60 * time.Second
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	log := logger.With().Str("component", "collector").Str("source", fetcher.Name()).Logger()

	st := gobreaker.Settings{
		Name:     fetcher.Name(),
		Interval: 60 * time.Second,
		Timeout:  opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		// Unknown tickers and bad payloads say nothing about source health.
		IsSuccessful: func(err error) bool { return err == nil || !Retryable(err) },
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}

	return &Collector{
		fetcher: fetcher,
		cache:   c,
		limiter: rate.NewLimiter(limit, opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(st),
		retries: opts.MaxRetries,
		backoff: opts.RetryBackoff,
		obs:     opts.Observer,
		log:     log,
	}
}

// Load returns ticker's series for tf. A zero asOf loads the trailing
// period up to now; otherwise bars end before asOf.
func (c *Collector) Load(ctx context.Context, ticker string, tf model.Timeframe, asOf time.Time) (model.Series, error) {
	req := Request{Ticker: ticker, Interval: tf.Interval, Period: tf.Period}
	key := cache.Key{Ticker: ticker, Timeframe: tf.Label}
	if !asOf.IsZero() {
		start, err := BacktestStart(tf.Period, asOf)
		if err != nil {
			return model.Series{}, err
		}
		req.Start, req.End = start, asOf
		key.AsOf = asOf.Format(DateLayout)
	}

	s, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("cache lookup failed")
	}
	c.obs.CacheLookup(hit)
	if hit {
		return s, nil
	}

	s, err = c.fetch(ctx, req)
	if err != nil {
		return model.Series{}, err
	}
	if err := c.cache.Put(ctx, key, s); err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("cache store failed")
	}
	return s, nil
}

// fetch performs up to c.retries attempts with exponential backoff.
func (c *Collector) fetch(ctx context.Context, req Request) (model.Series, error) {
	var lastErr error
	for i := 0; i < c.retries; i++ {
		if i > 0 {
			c.obs.Retry(c.fetcher.Name())
			wait := c.backoff * time.Duration(1<<(i-1))
			c.log.Debug().Err(lastErr).Str("ticker", req.Ticker).Int("attempt", i+1).Dur("backoff", wait).Msg("retrying fetch")
			if err := Pause(ctx, wait); err != nil {
				return model.Series{}, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return model.Series{}, err
		}
		start := time.Now()
		out, err := c.breaker.Execute(func() (interface{}, error) {
			return c.fetchOnce(ctx, req)
		})
		c.obs.FetchDone(c.fetcher.Name(), err, time.Since(start))
		if err == nil {
			return out.(model.Series), nil
		}
		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) || !Retryable(err) {
			break
		}
	}
	return model.Series{}, fmt.Errorf("fetch %s: %w", req.Ticker, lastErr)
}

func (c *Collector) fetchOnce(ctx context.Context, req Request) (model.Series, error) {
	s, err := c.fetcher.FetchSeries(ctx, req)
	if err != nil {
		return model.Series{}, err
	}
	s.Ticker = req.Ticker
	if req.Ranged() {
		s.Bars = trimAfter(s.Bars, req.End)
	}
	if err := s.Validate(); err != nil {
		if errors.Is(err, model.ErrEmptySeries) {
			return model.Series{}, fmt.Errorf("%s: %w", req.Ticker, ErrNoData)
		}
		return model.Series{}, &ValidationError{Ticker: req.Ticker, Err: err}
	}
	return s, nil
}

// trimAfter drops bars at or after end; the end date is exclusive.
func trimAfter(bars []model.OHLCV, end time.Time) []model.OHLCV {
	n := len(bars)
	for n > 0 && !bars[n-1].Time.Before(end) {
		n--
	}
	return bars[:n]
}
