// Package report renders screener results for people.
package report

import (
	"context"
	"errors"

	"MarketScreener/internal/model"
)

// ErrNoData is returned when there is nothing to write; no file is created.
var ErrNoData = errors.New("no results to report")

// Report is everything one run hands to a sink.
type Report struct {
	Timeframes []model.TimeframeResults // configured order
	Ranking    []model.RankingEntry     // optional, already sorted
	Path       string
}

// empty reports whether no sheet would be produced.
func (r Report) empty() bool {
	if len(r.Ranking) > 0 {
		return false
	}
	for _, tf := range r.Timeframes {
		if len(tf.Results) > 0 {
			return false
		}
	}
	return true
}

// Sink persists a Report.
type Sink interface {
	Write(ctx context.Context, r Report) error
}
