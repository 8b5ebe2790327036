package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"MarketScreener/internal/model"
	"MarketScreener/internal/recorder"
)

// RunSummary is the context printed above a ranking.
type RunSummary struct {
	Mode     string
	AsOf     time.Time // zero for live runs
	Finished time.Time
	Tickers  int
	Skipped  int
}

// FormatRanking renders the top n master ranking entries as Telegram HTML.
func FormatRanking(sum RunSummary, ranking []model.RankingEntry, n int) string {
	var b strings.Builder

	date := sum.Finished
	if !sum.AsOf.IsZero() {
		date = sum.AsOf
	}
	title := "Market Screener"
	if sum.Mode == "backtest" {
		title += " backtest"
	}
	fmt.Fprintf(&b, "📊 <b>%s</b> | %s\n", title, date.Format("2006-01-02"))
	fmt.Fprintf(&b, "Tickers: %d | Ranked: %d | Skipped: %d\n\n", sum.Tickers, len(ranking), sum.Skipped)

	if len(ranking) == 0 {
		b.WriteString("No tickers produced a score.")
		return b.String()
	}
	if n <= 0 || n > len(ranking) {
		n = len(ranking)
	}
	fmt.Fprintf(&b, "🏆 <b>Top %d</b> (long / medium / short)\n", n)
	for i, e := range ranking[:n] {
		fmt.Fprintf(&b, "%2d. <b>%s</b> %+.2f  (%.2f / %.2f / %.2f)\n",
			i+1, html.EscapeString(e.Ticker), e.MasterScore, e.LongScore, e.MediumScore, e.ShortScore)
	}
	if n < len(ranking) {
		last := ranking[len(ranking)-1]
		fmt.Fprintf(&b, "…\nBottom: <b>%s</b> %+.2f\n", html.EscapeString(last.Ticker), last.MasterScore)
	}
	return b.String()
}

// FormatHistory renders a ticker's past rankings, newest first.
func FormatHistory(ticker string, points []recorder.RankingPoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>%s</b> master score history\n", html.EscapeString(ticker))
	if len(points) == 0 {
		b.WriteString("No recorded runs.")
		return b.String()
	}
	for _, p := range points {
		fmt.Fprintf(&b, "%s  #%d  %+.2f\n", p.FinishedAt.Format("2006-01-02 15:04"), p.Rank, p.MasterScore)
	}
	return b.String()
}
