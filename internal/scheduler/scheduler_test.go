package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketScreener/internal/model"
	"MarketScreener/internal/recorder"
	"MarketScreener/internal/screener"
)

type fakeRunner struct {
	calls   int32
	block   chan struct{}
	started chan struct{}
	mu      sync.Mutex
	reqs    []screener.Request
	last    *screener.Outcome
}

func (f *fakeRunner) Run(_ context.Context, req screener.Request) (*screener.Outcome, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return &screener.Outcome{}, nil
}

func (f *fakeRunner) Last() *screener.Outcome { return f.last }

type historyRecorder struct {
	recorder.NoopRecorder
	asked string
}

func (h *historyRecorder) TickerHistory(_ context.Context, ticker string, _ int) ([]recorder.RankingPoint, error) {
	h.asked = ticker
	return []recorder.RankingPoint{{Rank: 4, MasterScore: 2.5, FinishedAt: time.Unix(1700000000, 0)}}, nil
}

func TestRunNow_UsesLiveMode(t *testing.T) {
	r := &fakeRunner{}
	s := NewScheduler(context.Background(), r, nil, "out.xlsx", 10, zerolog.Nop())

	require.NoError(t, s.RunNow())
	require.Len(t, r.reqs, 1)
	assert.Equal(t, screener.ModeLive, r.reqs[0].Mode)
	assert.Equal(t, "out.xlsx", r.reqs[0].Output)
}

func TestRunNow_RejectsOverlap(t *testing.T) {
	r := &fakeRunner{block: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(context.Background(), r, nil, "out.xlsx", 10, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- s.RunNow() }()
	<-r.started

	assert.ErrorIs(t, s.RunNow(), ErrBusy)
	close(r.block)
	assert.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&r.calls))
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeRunner{}, nil, "out.xlsx", 10, zerolog.Nop())
	assert.Error(t, s.Register("not a cron spec"))
	require.NoError(t, s.Register("0 30 22 * * 1-5"))

	s.Start()
	defer s.Stop()
	next := s.Next()
	require.False(t, next.IsZero())
	assert.Equal(t, 22, next.Hour())
	assert.Equal(t, 30, next.Minute())
}

func TestCronTriggersRun(t *testing.T) {
	r := &fakeRunner{}
	s := NewScheduler(context.Background(), r, nil, "out.xlsx", 10, zerolog.Nop())
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&r.calls) >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	rec := &historyRecorder{}
	r := &fakeRunner{}
	s := NewScheduler(ctx, r, rec, "out.xlsx", 1, zerolog.Nop())

	assert.Equal(t, helpText, s.HandleCommand(ctx, "hello"))
	assert.Equal(t, helpText, s.HandleCommand(ctx, ""))
	assert.Equal(t, "No completed run yet.", s.HandleCommand(ctx, "/top"))

	r.last = &screener.Outcome{
		Run: recorder.Run{Mode: "live", FinishedAt: time.Date(2024, 5, 3, 22, 30, 0, 0, time.UTC), Tickers: 2},
		Ranking: []model.RankingEntry{
			{Ticker: "AAA", MasterScore: 5},
			{Ticker: "BBB", MasterScore: 1},
		},
	}
	top := s.HandleCommand(ctx, "/top")
	assert.Contains(t, top, "Top 1")
	assert.Contains(t, top, "<b>AAA</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/TOP 2"), "Top 2")

	assert.Equal(t, "Usage: /history TICKER", s.HandleCommand(ctx, "/history"))
	hist := s.HandleCommand(ctx, "/history aapl")
	assert.Equal(t, "AAPL", rec.asked)
	assert.Contains(t, hist, "#4  +2.50")

	assert.Equal(t, "Nothing scheduled.", s.HandleCommand(ctx, "/next"))

	assert.Contains(t, s.HandleCommand(ctx, "/run"), "started")
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&r.calls) == 1 }, time.Second, 10*time.Millisecond)
}
