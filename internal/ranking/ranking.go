// Package ranking blends per-timeframe composite scores into a master ranking.
package ranking

import (
	"math"
	"sort"

	"MarketScreener/internal/model"
)

// Master score weights: the long horizon dominates the blend.
const (
	LongWeight   = 0.5
	MediumWeight = 0.3
	ShortWeight  = 0.2
)

// Aggregate combines every ticker's composite score across the timeframes and
// returns the full list sorted by master score, highest first. A horizon with
// no result for a ticker contributes 0.0. Ties keep first-appearance order.
func Aggregate(timeframes []model.TimeframeResults) []model.RankingEntry {
	index := make(map[string]int)
	var entries []model.RankingEntry

	for _, tf := range timeframes {
		for _, r := range tf.Results {
			i, ok := index[r.Ticker]
			if !ok {
				i = len(entries)
				index[r.Ticker] = i
				entries = append(entries, model.RankingEntry{Ticker: r.Ticker})
			}
			e := &entries[i]
			switch tf.Timeframe.Horizon {
			case model.HorizonLong:
				e.LongScore, e.HasLong = r.Score, true
			case model.HorizonMedium:
				e.MediumScore, e.HasMedium = r.Score, true
			case model.HorizonShort:
				e.ShortScore, e.HasShort = r.Score, true
			}
		}
	}

	for i := range entries {
		entries[i].MasterScore = MasterScore(entries[i].LongScore, entries[i].MediumScore, entries[i].ShortScore)
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].MasterScore > entries[b].MasterScore
	})
	return entries
}

// MasterScore blends the three horizon scores, rounded to 2 decimals.
func MasterScore(long, medium, short float64) float64 {
	v := LongWeight*long + MediumWeight*medium + ShortWeight*short
	return math.Round(v*100) / 100
}
