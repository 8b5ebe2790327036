package model

// Bias is the direction a signal leans, used for report colouring.
type Bias int

const (
	BiasNeutral Bias = iota
	BiasBullish
	BiasBearish
)

// RSISignal classifies the 14-bar RSI.
type RSISignal int

const (
	RSIUnavailable RSISignal = iota
	RSIOversold
	RSINeutral
	RSIOverbought
)

func (s RSISignal) String() string {
	switch s {
	case RSIOversold:
		return "Oversold"
	case RSINeutral:
		return "Neutral"
	case RSIOverbought:
		return "Overbought"
	}
	return NotAvailable
}

// Bias treats oversold as contrarian-bullish.
func (s RSISignal) Bias() Bias {
	switch s {
	case RSIOversold:
		return BiasBullish
	case RSIOverbought:
		return BiasBearish
	}
	return BiasNeutral
}

// MACDSignal classifies the MACD histogram and its prior value.
type MACDSignal int

const (
	MACDUnavailable MACDSignal = iota
	MACDBullishCrossover
	MACDBullish
	MACDBearishCrossover
	MACDBearish
)

func (s MACDSignal) String() string {
	switch s {
	case MACDBullishCrossover:
		return "Bullish Crossover"
	case MACDBullish:
		return "Bullish"
	case MACDBearishCrossover:
		return "Bearish Crossover"
	case MACDBearish:
		return "Bearish"
	}
	return NotAvailable
}

func (s MACDSignal) Bias() Bias {
	switch s {
	case MACDBullishCrossover, MACDBullish:
		return BiasBullish
	case MACDBearishCrossover, MACDBearish:
		return BiasBearish
	}
	return BiasNeutral
}

// SMA50Signal compares the close with the 50-bar SMA.
type SMA50Signal int

const (
	SMA50Unavailable SMA50Signal = iota
	SMA50Above
	SMA50Below
)

func (s SMA50Signal) String() string {
	switch s {
	case SMA50Above:
		return "Above SMA50"
	case SMA50Below:
		return "Below SMA50"
	}
	return NotAvailable
}

func (s SMA50Signal) Bias() Bias {
	switch s {
	case SMA50Above:
		return BiasBullish
	case SMA50Below:
		return BiasBearish
	}
	return BiasNeutral
}

// CrossSignal reports a fresh SMA50/SMA200 cross on the evaluation bar.
type CrossSignal int

const (
	CrossUnavailable CrossSignal = iota
	CrossGolden
	CrossDeath
	CrossNone
)

func (s CrossSignal) String() string {
	switch s {
	case CrossGolden:
		return "Golden Cross"
	case CrossDeath:
		return "Death Cross"
	case CrossNone:
		return "No Cross"
	}
	return NotAvailable
}

func (s CrossSignal) Bias() Bias {
	switch s {
	case CrossGolden:
		return BiasBullish
	case CrossDeath:
		return BiasBearish
	}
	return BiasNeutral
}

// SignalSet is the categorical output derived from a Snapshot.
type SignalSet struct {
	RSI   RSISignal
	MACD  MACDSignal
	SMA50 SMA50Signal
	Cross CrossSignal
}
