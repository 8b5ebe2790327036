package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"MarketScreener/internal/model"
)

// Request describes one series download. A zero End means a live request
// for the trailing Period; otherwise Start and End bound the bars.
type Request struct {
	Ticker   string
	Interval string
	Period   string
	Start    time.Time
	End      time.Time
}

// Ranged reports whether the request uses explicit dates.
func (r Request) Ranged() bool { return !r.End.IsZero() }

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchSeries(ctx context.Context, req Request) (model.Series, error)
	Name() string
}

// ErrNoData is returned when the source knows the ticker but has no bars.
var ErrNoData = errors.New("no data returned")

// StatusError is a non-200 reply from the data source.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

// Retryable reports whether err is worth another attempt. Throttling, server
// errors and transport failures are; unknown tickers and bad data are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNoData) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	var ve *ValidationError
	return !errors.As(err, &ve)
}

// ValidationError wraps a series that failed model.Series.Validate.
type ValidationError struct {
	Ticker string
	Err    error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: invalid series: %v", e.Ticker, e.Err) }
func (e *ValidationError) Unwrap() error { return e.Err }
