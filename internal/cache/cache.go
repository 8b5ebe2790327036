// Package cache persists downloaded series so repeated runs inside the
// freshness window skip the network.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"MarketScreener/internal/model"
)

// Key identifies one cached series.
type Key struct {
	Ticker    string
	Timeframe string
	AsOf      string // backtest end date, empty for live runs
}

func (k Key) String() string {
	s := k.Ticker + "_" + k.Timeframe
	if k.AsOf != "" {
		s += "_" + k.AsOf
	}
	return strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(s)
}

// SeriesCache stores series by key. Get reports false on a miss, including
// stale or corrupt entries.
type SeriesCache interface {
	Get(ctx context.Context, key Key) (model.Series, bool, error)
	Put(ctx context.Context, key Key, series model.Series) error
}

// entry is the stored form shared by every backend.
type entry struct {
	FetchedAt time.Time    `json:"fetched_at"`
	Series    model.Series `json:"series"`
}

func encode(series model.Series, now time.Time) ([]byte, error) {
	return json.Marshal(entry{FetchedAt: now.UTC(), Series: series})
}

// decode parses and validates a stored entry.
func decode(data []byte) (entry, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	if err := e.Series.Validate(); err != nil {
		return entry{}, fmt.Errorf("invalid cached series: %w", err)
	}
	return e, nil
}

// Noop never hits.
type Noop struct{}

func (Noop) Get(context.Context, Key) (model.Series, bool, error) { return model.Series{}, false, nil }
func (Noop) Put(context.Context, Key, model.Series) error         { return nil }
