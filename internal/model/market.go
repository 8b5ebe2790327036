package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series holds the chronologically sorted bars of one ticker.
type Series struct {
	Ticker string  `json:"ticker"`
	Bars   []OHLCV `json:"bars"`
}

// ErrEmptySeries is returned by Validate for a series without bars.
var ErrEmptySeries = errors.New("series has no bars")

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. It panics on an empty series.
func (s Series) Last() OHLCV { return s.Bars[len(s.Bars)-1] }

// Closes returns a fresh slice of closing prices.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Validate checks the invariants every consumer relies on: at least one bar,
// strictly increasing timestamps, finite positive prices and non-negative volume.
func (s Series) Validate() error {
	if len(s.Bars) == 0 {
		return ErrEmptySeries
	}
	for i, b := range s.Bars {
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("bar %d: timestamp %s not after %s", i, b.Time, s.Bars[i-1].Time)
		}
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				return fmt.Errorf("bar %d: invalid price %v", i, v)
			}
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
			return fmt.Errorf("bar %d: invalid volume %v", i, b.Volume)
		}
	}
	return nil
}
