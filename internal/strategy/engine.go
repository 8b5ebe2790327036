package strategy

import (
	"math"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

// Lookback windows of the indicators.
const (
	ShortSMAPeriod   = 50
	LongSMAPeriod    = 200
	FastEMAPeriod    = 20
	SlowEMAPeriod    = 50
	RSIPeriod        = 14
	ATRPeriod        = 14
	MACDFast         = 12
	MACDSlow         = 26
	MACDSignalPeriod = 9
	BollingerPeriod  = 20
	BollingerWidth   = 2.0

	// MinBars is the shortest series Compute will score.
	MinBars = 2
)

// Compute derives the indicator snapshot, signal set and scores for the final
// bar of series. It returns false when the ticker cannot be scored for this
// timeframe: too few bars or a missing/non-positive final close.
// series is read only.
func Compute(series model.Series, tf model.Timeframe) (model.Result, bool) {
	if series.Len() < MinBars {
		return model.Result{}, false
	}
	last := series.Last()
	if math.IsNaN(last.Close) || math.IsInf(last.Close, 0) || last.Close <= 0 {
		return model.Result{}, false
	}

	snap := buildSnapshot(series, tf)
	signals := deriveSignals(snap)

	trend, trendMax := scoreTrend(snap, signals)
	momentum, momentumMax := scoreMomentum(snap, signals)
	score := compositeScore(trend, trendMax, momentum, momentumMax)

	return model.Result{
		Ticker:        series.Ticker,
		Timeframe:     tf.Label,
		AsOf:          last.Time,
		Snapshot:      snap,
		Indicators:    formatIndicators(snap),
		Signals:       signals,
		TrendScore:    trend,
		TrendMax:      trendMax,
		MomentumScore: momentum,
		MomentumMax:   momentumMax,
		Score:         score,
		ScoreText:     model.Some(score).Format(2),
	}, true
}

func at(x []float64, i int) model.Value {
	if i < 0 || i >= len(x) {
		return model.None()
	}
	return model.Some(x[i])
}

func buildSnapshot(series model.Series, tf model.Timeframe) model.Snapshot {
	closes := series.Closes()
	n := len(closes)
	i := n - 1

	sma50 := calculator.SMA(closes, ShortSMAPeriod)
	sma200 := calculator.SMA(closes, LongSMAPeriod)
	macd := calculator.MACD(closes, MACDFast, MACDSlow, MACDSignalPeriod)
	bb := calculator.Bollinger(closes, BollingerPeriod, BollingerWidth)

	snap := model.Snapshot{
		Close:      closes[i],
		SMA50:      at(sma50, i),
		SMA200:     at(sma200, i),
		PrevSMA50:  at(sma50, i-1),
		PrevSMA200: at(sma200, i-1),
		EMA20:      at(calculator.EMA(closes, FastEMAPeriod), i),
		EMA50:      at(calculator.EMA(closes, SlowEMAPeriod), i),
		RSI:        at(calculator.RSI(closes, RSIPeriod), i),
		MACDHist:   at(macd.Hist, i),
		PrevHist:   at(macd.Hist, i-1),
		ATR:        at(calculator.ATR(series.Bars, ATRPeriod), i),
		OBV:        at(calculator.OBV(series.Bars), i),
		BBHigh:     at(bb.Upper, i),
		BBLow:      at(bb.Lower, i),
	}

	window := calculator.YearOfDailyBars
	if tf.Interval == "1wk" {
		window = calculator.YearOfWeeklyBars
	}
	if high, low, err := calculator.CalculateRange(series.Bars, window); err == nil {
		snap.High52w = model.Some(high)
		snap.Low52w = model.Some(low)
		if pos, err := calculator.CalculateRangePosition(snap.Close, high, low); err == nil {
			snap.Position52w = model.Some(pos)
		}
	}
	return snap
}
