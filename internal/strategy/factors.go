package strategy

import (
	"math"

	"MarketScreener/internal/calculator"
	"MarketScreener/internal/model"
)

// Composite blend: trend dominates momentum 60/40.
const (
	TrendWeight    = 0.60
	MomentumWeight = 0.40

	// ScoreScale is the top of the normalised sub-score scale.
	ScoreScale = 10.0
)

// Per-factor ceilings. A factor whose indicator is unavailable drops its
// ceiling from the maximum instead of contributing zero.
const (
	sma200Ceiling = 3
	crossCeiling  = 2
	sma50Ceiling  = 1
	macdCeiling   = 2
	rsiCeiling    = 2
)

// Healthy-bullish RSI band, exclusive on both ends.
const (
	rsiBandLow  = 55.0
	rsiBandHigh = 70.0
)

// scoreTrend returns the trend sub-score and its attainable maximum:
// [-5, 6] with SMA200 available, [0, 1] without. The maximum is never below 1.
func scoreTrend(s model.Snapshot, sig model.SignalSet) (score, ceiling int) {
	if s.SMA200.OK {
		ceiling += sma200Ceiling
		switch {
		case s.Close > s.SMA200.V:
			score += 3
		case s.Close < s.SMA200.V:
			score -= 3
		}
	}
	if sig.Cross != model.CrossUnavailable {
		ceiling += crossCeiling
		switch sig.Cross {
		case model.CrossGolden:
			score += 2
		case model.CrossDeath:
			score -= 2
		}
	}
	if sig.SMA50 != model.SMA50Unavailable {
		ceiling += sma50Ceiling
		if sig.SMA50 == model.SMA50Above {
			score++
		}
	}
	return score, max(ceiling, 1)
}

// scoreMomentum returns the momentum sub-score, within [-3, 4], and its maximum.
func scoreMomentum(s model.Snapshot, sig model.SignalSet) (score, ceiling int) {
	if sig.MACD != model.MACDUnavailable {
		ceiling += macdCeiling
		switch sig.MACD {
		case model.MACDBullishCrossover:
			score += 2
		case model.MACDBullish:
			score++
		case model.MACDBearishCrossover:
			score -= 2
		}
	}
	if sig.RSI != model.RSIUnavailable {
		ceiling += rsiCeiling
		if s.RSI.V > rsiBandLow && s.RSI.V < rsiBandHigh {
			score++
		}
		switch sig.RSI {
		case model.RSIOverbought:
			score--
		case model.RSIOversold:
			score++ // contrarian-bullish
		}
	}
	return score, max(ceiling, 1)
}

func normalize(score, ceiling int) float64 {
	if ceiling <= 0 {
		ceiling = 1
	}
	return float64(score) / float64(ceiling) * ScoreScale
}

func compositeScore(trend, trendMax, momentum, momentumMax int) float64 {
	v := TrendWeight*normalize(trend, trendMax) + MomentumWeight*normalize(momentum, momentumMax)
	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// pctOf expresses v as a percentage of close.
func pctOf(v model.Value, price float64) model.Value {
	if !v.OK || price == 0 {
		return model.None()
	}
	return model.Some(v.V / price * 100)
}

func pctDiff(price float64, ref model.Value) model.Value {
	if !ref.OK {
		return model.None()
	}
	return model.Some(calculator.PctDiff(price, ref.V))
}

func formatIndicators(s model.Snapshot) model.FormattedIndicators {
	bbWidth := model.None()
	if s.BBHigh.OK && s.BBLow.OK {
		bbWidth = model.Some(s.BBHigh.V - s.BBLow.V)
	}
	return model.FormattedIndicators{
		Close:       model.Some(s.Close).Format(2),
		SMA50:       s.SMA50.Format(2),
		SMA200:      s.SMA200.Format(2),
		EMA20:       s.EMA20.Format(2),
		EMA50:       s.EMA50.Format(2),
		RSI:         s.RSI.Format(2),
		MACDHist:    s.MACDHist.Format(3),
		ATR:         s.ATR.Format(3),
		OBV:         s.OBV.FormatInt(),
		BBHigh:      s.BBHigh.Format(2),
		BBLow:       s.BBLow.Format(2),
		SMA50Pct:    pctDiff(s.Close, s.SMA50).Format(2),
		SMA200Pct:   pctDiff(s.Close, s.SMA200).Format(2),
		EMA20Pct:    pctDiff(s.Close, s.EMA20).Format(2),
		EMA50Pct:    pctDiff(s.Close, s.EMA50).Format(2),
		ATRPct:      pctOf(s.ATR, s.Close).Format(2),
		BBWidthPct:  pctOf(bbWidth, s.Close).Format(2),
		High52w:     s.High52w.Format(2),
		Low52w:      s.Low52w.Format(2),
		Position52w: s.Position52w.Format(2),
	}
}
