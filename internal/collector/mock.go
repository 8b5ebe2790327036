package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Tickers missing from Series get a synthetic drift series when Price is set.
type MockFetcher struct {
	Price  float64
	Bars   int
	Series map[string]model.Series
	// Errs queues errors per ticker; each call pops one before data is served.
	Errs map[string][]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(ctx context.Context, req Request) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[req.Ticker]++
	if q := m.Errs[req.Ticker]; len(q) > 0 {
		err := q[0]
		m.Errs[req.Ticker] = q[1:]
		m.mu.Unlock()
		return model.Series{}, err
	}
	m.mu.Unlock()

	s, ok := m.Series[req.Ticker]
	if !ok {
		if m.Price <= 0 {
			return model.Series{}, fmt.Errorf("mock %s: %w", req.Ticker, ErrNoData)
		}
		n := m.Bars
		if n <= 0 {
			n = 300
		}
		end := req.End
		if end.IsZero() {
			end = time.Now().UTC().Truncate(24 * time.Hour)
		}
		s = model.Series{Ticker: req.Ticker, Bars: generateMockBars(m.Price, n, end)}
	}
	bars := make([]model.OHLCV, len(s.Bars))
	copy(bars, s.Bars)
	return model.Series{Ticker: req.Ticker, Bars: bars}, nil
}

// Calls returns how many times ticker was requested.
func (m *MockFetcher) Calls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

// generateMockBars builds count daily bars ending the day before end.
func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
