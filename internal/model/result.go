package model

import "time"

// FormattedIndicators holds the report-ready text of every indicator.
// Unavailable values carry NotAvailable.
type FormattedIndicators struct {
	Close       string
	SMA50       string
	SMA200      string
	EMA20       string
	EMA50       string
	RSI         string
	MACDHist    string
	ATR         string
	OBV         string
	BBHigh      string
	BBLow       string
	SMA50Pct    string
	SMA200Pct   string
	EMA20Pct    string
	EMA50Pct    string
	ATRPct      string
	BBWidthPct  string
	High52w     string
	Low52w      string
	Position52w string
}

// Result is one ticker's output for one timeframe.
type Result struct {
	Ticker        string
	Timeframe     string
	AsOf          time.Time
	Snapshot      Snapshot
	Indicators    FormattedIndicators
	Signals       SignalSet
	TrendScore    int
	TrendMax      int
	MomentumScore int
	MomentumMax   int
	Score         float64 // composite, rounded to 2 decimals
	ScoreText     string
}

// TimeframeResults groups the results of one timeframe in configured order.
type TimeframeResults struct {
	Timeframe Timeframe
	Results   []Result
}

// RankingEntry is one ticker's blended master score.
type RankingEntry struct {
	Ticker      string
	LongScore   float64
	MediumScore float64
	ShortScore  float64
	HasLong     bool
	HasMedium   bool
	HasShort    bool
	MasterScore float64
}

// Coverage returns how many horizons contributed a real score.
func (e RankingEntry) Coverage() int {
	n := 0
	for _, ok := range []bool{e.HasLong, e.HasMedium, e.HasShort} {
		if ok {
			n++
		}
	}
	return n
}
