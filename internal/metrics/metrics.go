// Package metrics exposes screener run statistics to Prometheus. Every method
// is safe on a nil *Registry so callers can run without metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "screener"

// Registry holds all Prometheus metrics for the screener.
type Registry struct {
	reg *prometheus.Registry

	TickersScored  *prometheus.CounterVec
	TickersSkipped *prometheus.CounterVec
	StageFailures  *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	FetchRetries   *prometheus.CounterVec
	Runs           *prometheus.CounterVec
	LastRunTime    prometheus.Gauge
	LastRunSeconds prometheus.Gauge
}

// New creates a registry with all screener metrics registered.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		TickersScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tickers_scored_total",
				Help:      "Tickers that produced a result, by timeframe",
			},
			[]string{"timeframe"},
		),

		TickersSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tickers_skipped_total",
				Help:      "Tickers dropped from a timeframe, by reason",
			},
			[]string{"timeframe", "reason"},
		),

		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_failures_total",
				Help:      "Failures of best-effort run stages",
			},
			[]string{"stage"},
		),

		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Series cache lookups by result",
			},
			[]string{"result"},
		),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of data source requests",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"source", "result"},
		),

		FetchRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_retries_total",
				Help:      "Retried data source requests",
			},
			[]string{"source"},
		),

		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed screener runs by mode and status",
			},
			[]string{"mode", "status"},
		),

		LastRunTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),

		LastRunSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_duration_seconds",
				Help:      "Wall time of the last run",
			},
		),
	}

	r.reg.MustRegister(
		r.TickersScored,
		r.TickersSkipped,
		r.StageFailures,
		r.CacheLookups,
		r.FetchDuration,
		r.FetchRetries,
		r.Runs,
		r.LastRunTime,
		r.LastRunSeconds,
	)
	return r
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

func (r *Registry) Scored(timeframe string) {
	if r == nil {
		return
	}
	r.TickersScored.WithLabelValues(timeframe).Inc()
}

func (r *Registry) Skipped(timeframe, reason string) {
	if r == nil {
		return
	}
	r.TickersSkipped.WithLabelValues(timeframe, reason).Inc()
}

func (r *Registry) StageFailed(stage string) {
	if r == nil {
		return
	}
	r.StageFailures.WithLabelValues(stage).Inc()
}

// RunFinished records one run's outcome and timing.
func (r *Registry) RunFinished(mode string, err error, finished time.Time, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Runs.WithLabelValues(mode, status(err)).Inc()
	r.LastRunTime.Set(float64(finished.Unix()))
	r.LastRunSeconds.Set(elapsed.Seconds())
}

// CacheLookup, FetchDone and Retry satisfy collector.Observer.

func (r *Registry) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	r.CacheLookups.WithLabelValues("miss").Inc()
}

func (r *Registry) FetchDone(source string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.FetchDuration.WithLabelValues(source, status(err)).Observe(elapsed.Seconds())
}

func (r *Registry) Retry(source string) {
	if r == nil {
		return
	}
	r.FetchRetries.WithLabelValues(source).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Registry) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
