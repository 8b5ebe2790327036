package calculator

import (
	"math"

	"MarketScreener/internal/model"
)

// TrueRange returns the per-bar true range. The first bar has no previous
// close, so its range is high - low.
func TrueRange(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
		}
		out[i] = tr
	}
	return out
}

// ATR computes the Wilder-smoothed average true range. The first value, at
// index period-1, is the mean of the first period true ranges.
func ATR(bars []model.OHLCV, period int) []float64 {
	out := nan(len(bars))
	if period <= 0 || len(bars) < period {
		return out
	}
	tr := TrueRange(bars)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	p := float64(period)
	prev := sum / p
	out[period-1] = prev
	for i := period; i < len(bars); i++ {
		prev = (prev*(p-1) + tr[i]) / p
		out[i] = prev
	}
	return out
}

// BollingerResult holds the upper and lower bands.
type BollingerResult struct {
	Upper []float64
	Lower []float64
}

// Bollinger computes SMA(period) +/- k population standard deviations.
func Bollinger(closes []float64, period int, k float64) BollingerResult {
	mid := SMA(closes, period)
	upper, lower := nan(len(closes)), nan(len(closes))
	for i := range closes {
		if math.IsNaN(mid[i]) {
			continue
		}
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mid[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mid[i] + k*sd
		lower[i] = mid[i] - k*sd
	}
	return BollingerResult{Upper: upper, Lower: lower}
}

// OBV computes on-balance volume. It starts at zero on the first bar, adds the
// volume on an up close, subtracts it on a down close and holds on a tie.
func OBV(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - bars[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// PctDiff returns (a-b)/|b|*100, or NaN when either input is undefined or b is zero.
func PctDiff(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) || b == 0 {
		return math.NaN()
	}
	return (a - b) / math.Abs(b) * 100
}
