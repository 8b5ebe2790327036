package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"MarketScreener/internal/model"
)

func result(ticker string, score float64, sig model.SignalSet) model.Result {
	return model.Result{
		Ticker:        ticker,
		Timeframe:     "Short_Term_Analysis",
		Signals:       sig,
		TrendScore:    4,
		TrendMax:      6,
		MomentumScore: -1,
		MomentumMax:   4,
		Score:         score,
		Indicators: model.FormattedIndicators{
			Close:  "101.50",
			SMA200: model.NotAvailable,
			OBV:    "120000",
		},
	}
}

func sampleReport(path string) Report {
	short := model.Timeframe{Label: "Short_Term_Analysis", Horizon: model.HorizonShort}
	long := model.Timeframe{Label: "Long_Term_Analysis", Horizon: model.HorizonLong}
	return Report{
		Path: path,
		Timeframes: []model.TimeframeResults{
			{Timeframe: short, Results: []model.Result{
				result("AAPL", 3.5, model.SignalSet{RSI: model.RSIOversold, MACD: model.MACDBearish, SMA50: model.SMA50Above, Cross: model.CrossNone}),
				result("MSFT", -2, model.SignalSet{RSI: model.RSINeutral, MACD: model.MACDBullishCrossover, SMA50: model.SMA50Below, Cross: model.CrossUnavailable}),
			}},
			{Timeframe: model.Timeframe{Label: "Medium_Term_Analysis"}},
			{Timeframe: long, Results: []model.Result{
				result("AAPL", 6, model.SignalSet{Cross: model.CrossGolden}),
			}},
		},
		Ranking: []model.RankingEntry{
			{Ticker: "AAPL", LongScore: 6, ShortScore: 3.5, HasLong: true, HasShort: true, MasterScore: 3.7},
			{Ticker: "MSFT", ShortScore: -2, HasShort: true, MasterScore: -0.4},
		},
	}
}

func cellStyle(t *testing.T, f *excelize.File, sheet, cell string) int {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	return id
}

func TestExcelSink_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	sink := NewExcelSink(zerolog.Nop())
	require.NoError(t, sink.Write(context.Background(), sampleReport(path)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MasterSheet, "Short_Term_Analysis", "Long_Term_Analysis"}, f.GetSheetList(),
		"ranking first, empty timeframe skipped, default sheet removed")

	rows, err := f.GetRows(MasterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Master_Score", rows[0][2])
	assert.Equal(t, []string{"1", "AAPL", "3.7", "6", "0", "3.5", "2"}, rows[1])
	assert.Equal(t, "MSFT", rows[2][1])

	rows, err = f.GetRows("Short_Term_Analysis")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ticker", rows[0][0])
	assert.Equal(t, "AAPL", rows[1][0])
	assert.Equal(t, "101.50", rows[1][1])
	assert.Equal(t, "4/6", rows[1][3])
	assert.Equal(t, "-1/4", rows[1][4])
	assert.Equal(t, "Oversold", rows[1][5])
	assert.Equal(t, "Bearish", rows[1][6])
	assert.Equal(t, "Above SMA50", rows[1][7])
	assert.Equal(t, "No Cross", rows[1][8])
	assert.Equal(t, model.NotAvailable, rows[1][10])
	assert.Equal(t, "N/A", rows[2][8])
}

func TestExcelSink_Colours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, NewExcelSink(zerolog.Nop()).Write(context.Background(), sampleReport(path)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Short_Term_Analysis"
	bullish := cellStyle(t, f, sheet, "C2") // score 3.5
	bearish := cellStyle(t, f, sheet, "C3") // score -2

	assert.NotZero(t, bullish)
	assert.NotZero(t, bearish)
	assert.NotEqual(t, bullish, bearish)

	assert.Equal(t, bullish, cellStyle(t, f, sheet, "F2"), "oversold")
	assert.Equal(t, bearish, cellStyle(t, f, sheet, "G2"), "bearish MACD")
	assert.Equal(t, bullish, cellStyle(t, f, sheet, "H2"), "above SMA50")
	assert.Zero(t, cellStyle(t, f, sheet, "I2"), "no cross is neutral")
	assert.Zero(t, cellStyle(t, f, sheet, "F3"), "neutral RSI")
	assert.Equal(t, bullish, cellStyle(t, f, sheet, "G3"), "bullish crossover")
	assert.Equal(t, bearish, cellStyle(t, f, sheet, "H3"), "below SMA50")
	assert.Zero(t, cellStyle(t, f, sheet, "B2"), "plain values stay unstyled")

	assert.Equal(t, bullish, cellStyle(t, f, MasterSheet, "C2"))
	assert.Equal(t, bearish, cellStyle(t, f, MasterSheet, "C3"))
	assert.Zero(t, cellStyle(t, f, MasterSheet, "E2"), "zero horizon score")
	assert.Equal(t, bullish, cellStyle(t, f, "Long_Term_Analysis", "I2"), "golden cross")
}

func TestExcelSink_WithoutRanking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	r := sampleReport(path)
	r.Ranking = nil
	require.NoError(t, NewExcelSink(zerolog.Nop()).Write(context.Background(), r))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Short_Term_Analysis", "Long_Term_Analysis"}, f.GetSheetList())
}

func TestExcelSink_NoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	r := Report{
		Path:       path,
		Timeframes: []model.TimeframeResults{{Timeframe: model.Timeframe{Label: "Short_Term_Analysis"}}},
	}
	err := NewExcelSink(zerolog.Nop()).Write(context.Background(), r)
	assert.ErrorIs(t, err, ErrNoData)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Short_Term_Analysis", SheetName("Short_Term_Analysis"))
	assert.Len(t, SheetName("A_Very_Long_Timeframe_Label_Exceeding_Limits"), maxSheetName)

	long := strings.Repeat("é", 40)
	name := SheetName(long)
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, maxSheetName, utf8.RuneCountInString(name))
}

func TestCheckSheetNames(t *testing.T) {
	prefix := strings.Repeat("x", maxSheetName)
	assert.NoError(t, CheckSheetNames("Short", "Medium", "Long"))
	assert.Error(t, CheckSheetNames(prefix+"_short", prefix+"_long"))
	assert.Error(t, CheckSheetNames("short", "SHORT"))
	assert.Error(t, CheckSheetNames("master_ranking"))
	assert.Error(t, CheckSheetNames("Sheet1"))
}

func TestExcelSink_RejectsCollidingSheets(t *testing.T) {
	prefix := strings.Repeat("x", maxSheetName)
	path := filepath.Join(t.TempDir(), "collide.xlsx")
	r := Report{
		Path: path,
		Timeframes: []model.TimeframeResults{
			{Timeframe: model.Timeframe{Label: prefix + "_a"}, Results: []model.Result{{Ticker: "AAPL"}}},
			{Timeframe: model.Timeframe{Label: prefix + "_b"}, Results: []model.Result{{Ticker: "AAPL"}}},
		},
	}
	require.Error(t, NewExcelSink(zerolog.Nop()).Write(context.Background(), r))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
