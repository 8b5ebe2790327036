package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MarketScreener/internal/notifier"
	"MarketScreener/internal/recorder"
	"MarketScreener/internal/screener"
)

// ErrBusy is returned by RunNow while another run is in progress.
var ErrBusy = errors.New("a run is already in progress")

// Runner executes screener runs; *screener.Screener is the production one.
type Runner interface {
	Run(ctx context.Context, req screener.Request) (*screener.Outcome, error)
	Last() *screener.Outcome
}

// Scheduler triggers live runs on a cron schedule and on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Recorder recorder.Recorder
	Ctx      context.Context
	Output   string
	TopN     int

	running sync.Mutex
	log     zerolog.Logger
}

// NewScheduler creates a new Scheduler. Cron specs include seconds.
func NewScheduler(ctx context.Context, runner Runner, rec recorder.Recorder, output string, topN int, logger zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	log := logger.With().Str("component", "scheduler").Logger()
	cronLog := log
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.PrintfLogger(&cronLog)), cron.SkipIfStillRunning(cron.PrintfLogger(&cronLog))),
		),
		Runner:   runner,
		Recorder: rec,
		Ctx:      ctx,
		Output:   output,
		TopN:     topN,
		log:      log,
	}
}

// Register schedules the live run.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.liveTask); err != nil {
		return fmt.Errorf("register live task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// Next returns the next scheduled run time, or zero if nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.Cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow executes a live run immediately (manual trigger / run on start).
func (s *Scheduler) RunNow() error {
	if !s.running.TryLock() {
		return ErrBusy
	}
	defer s.running.Unlock()

	s.log.Info().Msg("running live analysis")
	_, err := s.Runner.Run(s.Ctx, screener.Request{Mode: screener.ModeLive, Output: s.Output})
	if err != nil {
		s.log.Error().Err(err).Msg("live run failed")
	}
	return err
}

func (s *Scheduler) liveTask() {
	if err := s.RunNow(); errors.Is(err, ErrBusy) {
		s.log.Warn().Msg("previous run still in progress, skipping")
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/run":
		go func() {
			if err := s.RunNow(); errors.Is(err, ErrBusy) {
				s.log.Warn().Msg("run requested while busy")
			}
		}()
		return "▶️ Live analysis started."
	case "/top":
		last := s.Runner.Last()
		if last == nil {
			return "No completed run yet."
		}
		n := s.TopN
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		return notifier.FormatRanking(notifier.RunSummary{
			Mode:     last.Run.Mode,
			AsOf:     last.Run.AsOf,
			Finished: last.Run.FinishedAt,
			Tickers:  last.Run.Tickers,
			Skipped:  last.Run.Skipped,
		}, last.Ranking, n)
	case "/history":
		if len(fields) < 2 {
			return "Usage: /history TICKER"
		}
		ticker := strings.ToUpper(fields[1])
		points, err := s.Recorder.TickerHistory(ctx, ticker, 10)
		if err != nil {
			s.log.Error().Err(err).Str("ticker", ticker).Msg("load history")
			return "❌ Could not load history."
		}
		return notifier.FormatHistory(ticker, points)
	case "/next":
		next := s.Next()
		if next.IsZero() {
			return "Nothing scheduled."
		}
		return "⏰ Next run: " + next.Format("2006-01-02 15:04 MST")
	}
	return helpText
}

const helpText = "Commands:\n• /run start a live analysis\n• /top [N] show the latest ranking\n• /history TICKER master score history\n• /next next scheduled run"
