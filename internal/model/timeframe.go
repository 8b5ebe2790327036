package model

import "fmt"

// Horizon is the role a timeframe plays in the master score blend.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Valid reports whether h is one of the three known horizons.
func (h Horizon) Valid() bool {
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return true
	}
	return false
}

// Timeframe describes how one analysis window is fetched.
type Timeframe struct {
	Label    string  `yaml:"label"`
	Period   string  `yaml:"period"`   // Yahoo range, e.g. "6mo", "2y", "5y"
	Interval string  `yaml:"interval"` // bar size, "1d" or "1wk"
	Horizon  Horizon `yaml:"horizon"`
}

func (t Timeframe) String() string {
	return fmt.Sprintf("%s(%s/%s)", t.Label, t.Period, t.Interval)
}
