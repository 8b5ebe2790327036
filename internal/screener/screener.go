// Package screener runs the full analysis: load every ticker for every
// timeframe, score it, blend the scores into a ranking and hand the result
// to the report, recorder and notifier.
package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"MarketScreener/internal/collector"
	"MarketScreener/internal/metrics"
	"MarketScreener/internal/model"
	"MarketScreener/internal/notifier"
	"MarketScreener/internal/ranking"
	"MarketScreener/internal/recorder"
	"MarketScreener/internal/report"
	"MarketScreener/internal/strategy"
)

// Mode selects how far back data is loaded.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeBacktest Mode = "backtest"
)

// Skip reasons reported to metrics.
const (
	SkipFetch        = "fetch"
	SkipInsufficient = "insufficient_data"
)

// Loader supplies validated series; *collector.Collector is the production one.
type Loader interface {
	Load(ctx context.Context, ticker string, tf model.Timeframe, asOf time.Time) (model.Series, error)
}

// Options are the universe and batching settings of a run.
type Options struct {
	Tickers    []string
	Timeframes []model.Timeframe
	ChunkSize  int
	Pause      time.Duration // between chunks
	TopN       int           // entries in the notification
}

// Request describes one run.
type Request struct {
	Mode   Mode
	AsOf   time.Time // required for backtests
	Output string
}

// Outcome is everything a finished run produced.
type Outcome struct {
	Run        recorder.Run
	Timeframes []model.TimeframeResults
	Ranking    []model.RankingEntry
}

// Screener wires data access, scoring and the output stages together.
type Screener struct {
	loader  Loader
	sink    report.Sink
	rec     recorder.Recorder
	notify  notifier.Notifier
	metrics *metrics.Registry
	opts    Options
	log     zerolog.Logger
	now     func() time.Time

	mu   sync.RWMutex
	last *Outcome
}

// New creates a Screener. rec and notify may be nil; m may be nil.
func New(loader Loader, sink report.Sink, rec recorder.Recorder, notify notifier.Notifier, m *metrics.Registry, opts Options, logger zerolog.Logger) *Screener {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if notify == nil {
		notify = notifier.Noop{}
	}
	return &Screener{
		loader:  loader,
		sink:    sink,
		rec:     rec,
		notify:  notify,
		metrics: m,
		opts:    opts,
		log:     logger.With().Str("component", "screener").Logger(),
		now:     time.Now,
	}
}

// BacktestOutput is the default report name of a backtest ending at asOf.
func BacktestOutput(asOf time.Time) string {
	return fmt.Sprintf("backtest_report_%s.xlsx", asOf.Format(collector.DateLayout))
}

// Last returns the most recent completed run, or nil.
func (s *Screener) Last() *Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run executes one analysis and delivers its output. Per-ticker failures are
// logged and skipped; the report is required, recording and notification are
// best effort. report.ErrNoData is returned when no ticker could be scored.
func (s *Screener) Run(ctx context.Context, req Request) (*Outcome, error) {
	switch req.Mode {
	case ModeLive:
		req.AsOf = time.Time{}
	case ModeBacktest:
		if req.AsOf.IsZero() {
			return nil, errors.New("backtest requires an as-of date")
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}
	started := s.now()
	log := s.log.With().Str("mode", string(req.Mode)).Logger()
	if !req.AsOf.IsZero() {
		log = log.With().Str("as_of", req.AsOf.Format(collector.DateLayout)).Logger()
	}
	log.Info().Int("tickers", len(s.opts.Tickers)).Int("timeframes", len(s.opts.Timeframes)).Msg("starting analysis")

	timeframes, skipped, err := s.Analyze(ctx, req.AsOf)
	if err != nil {
		finished := s.now()
		s.metrics.RunFinished(string(req.Mode), err, finished, finished.Sub(started))
		return nil, err
	}

	log.Info().Msg("all timeframes analysed, calculating master score")
	ranked := ranking.Aggregate(timeframes)

	out := &Outcome{
		Run: recorder.Run{
			Mode:       string(req.Mode),
			AsOf:       req.AsOf,
			StartedAt:  started,
			Tickers:    len(s.opts.Tickers),
			Results:    countResults(timeframes),
			Skipped:    skipped,
			ReportPath: req.Output,
		},
		Timeframes: timeframes,
		Ranking:    ranked,
	}

	writeErr := s.sink.Write(ctx, report.Report{Timeframes: timeframes, Ranking: ranked, Path: req.Output})
	if writeErr != nil {
		out.Run.ReportPath = ""
		out.Run.Err = writeErr.Error()
		if errors.Is(writeErr, report.ErrNoData) {
			log.Warn().Msg("no data for any timeframe, report not written")
		} else {
			log.Error().Err(writeErr).Msg("write report")
			s.metrics.StageFailed("report")
		}
	}
	out.Run.FinishedAt = s.now()

	if err := s.rec.RecordRun(ctx, &out.Run, timeframes, ranked); err != nil {
		log.Error().Err(err).Msg("record run")
		s.metrics.StageFailed("record")
	}

	if writeErr == nil {
		msg := notifier.FormatRanking(notifier.RunSummary{
			Mode:     out.Run.Mode,
			AsOf:     req.AsOf,
			Finished: out.Run.FinishedAt,
			Tickers:  out.Run.Tickers,
			Skipped:  skipped,
		}, ranked, s.opts.TopN)
		if err := s.notify.Notify(ctx, msg); err != nil {
			log.Error().Err(err).Msg("send notification")
			s.metrics.StageFailed("notify")
		}

		s.mu.Lock()
		s.last = out
		s.mu.Unlock()
	}

	elapsed := out.Run.FinishedAt.Sub(started)
	s.metrics.RunFinished(string(req.Mode), writeErr, out.Run.FinishedAt, elapsed)
	log.Info().
		Int("results", out.Run.Results).
		Int("skipped", skipped).
		Int("ranked", len(ranked)).
		Dur("elapsed", elapsed).
		Msg("analysis complete")
	return out, writeErr
}

// Analyze scores every ticker for every configured timeframe, one timeframe
// at a time and one chunk of tickers at a time. It returns the results in
// configured order and the number of skipped ticker/timeframe pairs. Only
// cancellation aborts it.
func (s *Screener) Analyze(ctx context.Context, asOf time.Time) ([]model.TimeframeResults, int, error) {
	chunks := collector.Chunk(s.opts.Tickers, s.opts.ChunkSize)
	out := make([]model.TimeframeResults, 0, len(s.opts.Timeframes))
	skipped := 0

	for _, tf := range s.opts.Timeframes {
		log := s.log.With().Str("timeframe", tf.Label).Logger()
		log.Info().Int("chunks", len(chunks)).Int("chunk_size", s.opts.ChunkSize).Msg("processing timeframe")

		tr := model.TimeframeResults{Timeframe: tf}
		for i, chunk := range chunks {
			if i > 0 {
				log.Debug().Dur("pause", s.opts.Pause).Msg("chunk complete, pausing")
				if err := collector.Pause(ctx, s.opts.Pause); err != nil {
					return nil, skipped, err
				}
			}
			log.Debug().Int("chunk", i+1).Int("of", len(chunks)).Msg("processing chunk")

			for _, ticker := range chunk {
				if err := ctx.Err(); err != nil {
					return nil, skipped, err
				}
				res, reason, err := s.scoreOne(ctx, ticker, tf, asOf)
				if err != nil && ctx.Err() != nil {
					return nil, skipped, ctx.Err()
				}
				if reason != "" {
					skipped++
					s.metrics.Skipped(tf.Label, reason)
					log.Warn().Err(err).Str("ticker", ticker).Str("reason", reason).Msg("skipping ticker")
					continue
				}
				s.metrics.Scored(tf.Label)
				tr.Results = append(tr.Results, res)
			}
		}
		log.Info().Int("results", len(tr.Results)).Msg("timeframe complete")
		out = append(out, tr)
	}
	return out, skipped, nil
}

// scoreOne returns a result, or the reason the ticker was skipped.
func (s *Screener) scoreOne(ctx context.Context, ticker string, tf model.Timeframe, asOf time.Time) (model.Result, string, error) {
	series, err := s.loader.Load(ctx, ticker, tf, asOf)
	if err != nil {
		return model.Result{}, SkipFetch, err
	}
	res, ok := strategy.Compute(series, tf)
	if !ok {
		return model.Result{}, SkipInsufficient, nil
	}
	return res, "", nil
}

func countResults(tfs []model.TimeframeResults) int {
	n := 0
	for _, tf := range tfs {
		n += len(tf.Results)
	}
	return n
}
