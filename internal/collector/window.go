package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WarmupPadding is added in front of every backtest window so long averages
// have history to start from.
const WarmupPadding = 90 * 24 * time.Hour

// BacktestStart returns the first date to request when analysing period
// bars ending at end. Years count as 365 days and months as 31; anything
// else falls back to five years.
func BacktestStart(period string, end time.Time) (time.Time, error) {
	p := strings.TrimSpace(strings.ToLower(period))
	var days int
	switch {
	case strings.HasSuffix(p, "mo"):
		n, err := strconv.Atoi(strings.TrimSuffix(p, "mo"))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse period %q: %w", period, err)
		}
		days = n * 31
	case strings.HasSuffix(p, "y"):
		n, err := strconv.Atoi(strings.TrimSuffix(p, "y"))
		if err != nil {
			return time.Time{}, fmt.Errorf("parse period %q: %w", period, err)
		}
		days = n * 365
	default:
		days = 5 * 365
	}
	return end.Add(-time.Duration(days)*24*time.Hour - WarmupPadding), nil
}
