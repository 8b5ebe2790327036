package recorder

import (
	"context"

	"MarketScreener/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(context.Context, *Run, []model.TimeframeResults, []model.RankingEntry) error {
	return nil
}

func (n *NoopRecorder) TickerHistory(context.Context, string, int) ([]RankingPoint, error) {
	return nil, nil
}

func (n *NoopRecorder) Close() error { return nil }
