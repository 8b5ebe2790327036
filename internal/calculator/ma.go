package calculator

import "math"

// nan returns a slice of n NaN values, the "undefined" marker for warm-up bars.
func nan(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes the trailing simple moving average of x over period bars.
// Index i is defined once i >= period-1; earlier positions are NaN.
func SMA(x []float64, period int) []float64 {
	out := nan(len(x))
	if period <= 0 || len(x) < period {
		return out
	}
	sum := 0.0
	for i, v := range x {
		sum += v
		if i >= period {
			sum -= x[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average with multiplier 2/(period+1),
// seeded with the SMA of the first period defined values. Leading NaN inputs
// are skipped, so EMA can be chained onto another indicator (MACD signal line).
func EMA(x []float64, period int) []float64 {
	out := nan(len(x))
	if period <= 0 {
		return out
	}
	start := 0
	for start < len(x) && math.IsNaN(x[start]) {
		start++
	}
	if len(x)-start < period {
		return out
	}

	k := 2.0 / float64(period+1)
	sum := 0.0
	for i := start; i < start+period; i++ {
		sum += x[i]
	}
	prev := sum / float64(period)
	out[start+period-1] = prev
	for i := start + period; i < len(x); i++ {
		prev = x[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}
