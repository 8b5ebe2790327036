package recorder

import (
	"context"
	"time"

	"MarketScreener/internal/model"
)

// Run summarises one screener execution.
type Run struct {
	ID         string
	Mode       string    // "live" or "backtest"
	AsOf       time.Time // backtest end date, zero for live runs
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    int
	Results    int
	Skipped    int
	ReportPath string
	Err        string
}

// RankingPoint is one ticker's master ranking in a past run.
type RankingPoint struct {
	RunID       string
	FinishedAt  time.Time
	Rank        int
	MasterScore float64
	LongScore   float64
	MediumScore float64
	ShortScore  float64
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(ctx context.Context, run *Run, results []model.TimeframeResults, ranking []model.RankingEntry) error
	TickerHistory(ctx context.Context, ticker string, limit int) ([]RankingPoint, error)
	Close() error
}
