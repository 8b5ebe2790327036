package strategy

import "MarketScreener/internal/model"

// RSI classification thresholds.
const (
	RSIOversoldBelow   = 30.0
	RSIOverboughtAbove = 70.0
)

func deriveSignals(s model.Snapshot) model.SignalSet {
	return model.SignalSet{
		RSI:   rsiSignal(s.RSI),
		MACD:  macdSignal(s.MACDHist, s.PrevHist),
		SMA50: sma50Signal(s.Close, s.SMA50),
		Cross: crossSignal(s),
	}
}

func rsiSignal(rsi model.Value) model.RSISignal {
	switch {
	case !rsi.OK:
		return model.RSIUnavailable
	case rsi.V < RSIOversoldBelow:
		return model.RSIOversold
	case rsi.V > RSIOverboughtAbove:
		return model.RSIOverbought
	}
	return model.RSINeutral
}

// macdSignal needs the prior histogram only to detect a fresh crossover;
// without it the plain direction is reported.
func macdSignal(hist, prev model.Value) model.MACDSignal {
	switch {
	case !hist.OK:
		return model.MACDUnavailable
	case hist.V > 0 && prev.OK && prev.V <= 0:
		return model.MACDBullishCrossover
	case hist.V > 0:
		return model.MACDBullish
	case hist.V < 0 && prev.OK && prev.V >= 0:
		return model.MACDBearishCrossover
	}
	return model.MACDBearish
}

func sma50Signal(price float64, sma50 model.Value) model.SMA50Signal {
	switch {
	case !sma50.OK:
		return model.SMA50Unavailable
	case price > sma50.V:
		return model.SMA50Above
	}
	return model.SMA50Below
}

// crossSignal compares the SMA50-above-SMA200 state of the final bar with the
// prior bar. Golden and Death are the two transitions of that state.
func crossSignal(s model.Snapshot) model.CrossSignal {
	if !s.SMA50.OK || !s.SMA200.OK {
		return model.CrossUnavailable
	}
	if !s.PrevSMA50.OK || !s.PrevSMA200.OK {
		return model.CrossNone
	}
	above := s.SMA50.V > s.SMA200.V
	wasAbove := s.PrevSMA50.V > s.PrevSMA200.V
	switch {
	case above && !wasAbove:
		return model.CrossGolden
	case !above && wasAbove:
		return model.CrossDeath
	}
	return model.CrossNone
}
