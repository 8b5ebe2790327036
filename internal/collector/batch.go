package collector

import (
	"context"
	"time"
)

// Chunk splits tickers into consecutive batches of at most size.
func Chunk(tickers []string, size int) [][]string {
	if size <= 0 {
		size = len(tickers)
	}
	var out [][]string
	for i := 0; i < len(tickers); i += size {
		end := i + size
		if end > len(tickers) {
			end = len(tickers)
		}
		out = append(out, tickers[i:end])
	}
	return out
}

// Pause blocks for d or until ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
