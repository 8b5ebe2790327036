package model

import (
	"math"
	"strconv"
)

// NotAvailable marks an indicator that is undefined at the evaluation bar.
const NotAvailable = "N/A"

// Value is an indicator reading that may be unavailable.
type Value struct {
	V  float64
	OK bool
}

// Some wraps a reading; NaN and Inf are reported as unavailable.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, OK: true}
}

// None is the unavailable reading.
func None() Value { return Value{} }

// Format renders the value with prec decimals, or NotAvailable.
func (v Value) Format(prec int) string {
	if !v.OK {
		return NotAvailable
	}
	return strconv.FormatFloat(v.V, 'f', prec, 64)
}

// FormatInt renders the value rounded to an integer, or NotAvailable.
func (v Value) FormatInt() string {
	if !v.OK {
		return NotAvailable
	}
	return strconv.FormatInt(int64(math.Round(v.V)), 10)
}

// Snapshot holds the derived values of the most recent bar plus the prior-bar
// values needed for cross detection.
type Snapshot struct {
	Close       float64
	SMA50       Value
	SMA200      Value
	PrevSMA50   Value
	PrevSMA200  Value
	EMA20       Value
	EMA50       Value
	RSI         Value
	MACDHist    Value
	PrevHist    Value
	ATR         Value
	OBV         Value
	BBHigh      Value
	BBLow       Value
	High52w     Value
	Low52w      Value
	Position52w Value // 0.0 ~ 1.0
}
