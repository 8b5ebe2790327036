package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"MarketScreener/internal/model"
)

// MasterSheet is the name of the ranking sheet.
const MasterSheet = "Master_Ranking"

const (
	maxSheetName = 31
	defaultSheet = "Sheet1"
)

const (
	bullishFill = "#C6EFCE"
	bullishFont = "#006100"
	bearishFill = "#FFC7CE"
	bearishFont = "#9C0006"
	headerFill  = "#D9D9D9"
)

var masterHeader = []interface{}{
	"Rank", "Ticker", "Master_Score", "Long_Term_Score", "Medium_Term_Score", "Short_Term_Score", "Horizons",
}

var timeframeHeader = []interface{}{
	"Ticker", "Close", "Final_Score", "Trend_Score", "Momentum_Score",
	"RSI_Signal", "MACD_Signal", "SMA50_Signal", "Cross_Signal",
	"SMA_50", "SMA_200", "EMA_20", "EMA_50", "RSI", "MACD_Hist", "ATR", "OBV", "BB_High", "BB_Low",
	"SMA_50_Pct_Diff", "SMA_200_Pct_Diff", "EMA_20_Pct_Diff", "EMA_50_Pct_Diff", "ATR_Pct", "BB_Width_Pct",
	"52W_High", "52W_Low", "52W_Position",
}

// Column offsets (0-based) that receive bias colouring.
const (
	colFinalScore = 2
	colRSISignal  = 5
)

// ExcelSink writes reports as xlsx workbooks.
type ExcelSink struct {
	log zerolog.Logger
}

func NewExcelSink(logger zerolog.Logger) *ExcelSink {
	return &ExcelSink{log: logger.With().Str("component", "excel_report").Logger()}
}

type styles struct {
	header, bullish, bearish int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	if s.bullish, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: bullishFont},
		Fill: excelize.Fill{Type: "pattern", Color: []string{bullishFill}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	s.bearish, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: bearishFont},
		Fill: excelize.Fill{Type: "pattern", Color: []string{bearishFill}, Pattern: 1},
	})
	return s, err
}

func (s styles) forBias(b model.Bias) (int, bool) {
	switch b {
	case model.BiasBullish:
		return s.bullish, true
	case model.BiasBearish:
		return s.bearish, true
	}
	return 0, false
}

func scoreBias(v float64) model.Bias {
	switch {
	case v > 0:
		return model.BiasBullish
	case v < 0:
		return model.BiasBearish
	}
	return model.BiasNeutral
}

// Write renders the ranking sheet first, then one sheet per non-empty
// timeframe, and saves the workbook to r.Path.
func (x *ExcelSink) Write(ctx context.Context, r Report) error {
	if r.empty() {
		x.log.Warn().Msg("no sheets were generated, report not saved")
		return ErrNoData
	}
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	var labels []string
	for _, tf := range r.Timeframes {
		if len(tf.Results) > 0 {
			labels = append(labels, tf.Timeframe.Label)
		}
	}
	if err := CheckSheetNames(labels...); err != nil {
		return err
	}

	var sheets []string
	if len(r.Ranking) > 0 {
		sheets = append(sheets, MasterSheet)
		if err := x.writeSheet(f, MasterSheet, masterHeader, func(w *sheetWriter) error {
			return writeRanking(w, r.Ranking)
		}, st); err != nil {
			return err
		}
	}
	for _, tf := range r.Timeframes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(tf.Results) == 0 {
			x.log.Warn().Str("timeframe", tf.Timeframe.Label).Msg("no results for timeframe, skipping sheet")
			continue
		}
		name := SheetName(tf.Timeframe.Label)
		sheets = append(sheets, name)
		results := tf.Results
		if err := x.writeSheet(f, name, timeframeHeader, func(w *sheetWriter) error {
			return writeResults(w, results)
		}, st); err != nil {
			return err
		}
		x.log.Info().Str("timeframe", tf.Timeframe.Label).Int("rows", len(results)).Msg("wrote sheet")
	}

	// The default sheet is only dropped once another one exists.
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheets[0]); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if dir := filepath.Dir(r.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := f.SaveAs(r.Path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	x.log.Info().Str("path", r.Path).Int("sheets", len(sheets)).Msg("report saved")
	return nil
}

func (x *ExcelSink) writeSheet(f *excelize.File, name string, header []interface{}, body func(*sheetWriter) error, st styles) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	w := &sheetWriter{f: f, sheet: name, st: st}
	if err := w.row(header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(name, "A1", last, st.header); err != nil {
		return fmt.Errorf("style header %s: %w", name, err)
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes %s: %w", name, err)
	}
	if err := body(w); err != nil {
		return fmt.Errorf("write sheet %s: %w", name, err)
	}
	return nil
}

// sheetWriter appends rows and colours individual cells.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	st    styles
	next  int // 1-based row of the next append
}

func (w *sheetWriter) row(values []interface{}) error {
	w.next++
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

// paint colours column col (0-based) of the last written row.
func (w *sheetWriter) paint(col int, b model.Bias) error {
	style, ok := w.st.forBias(b)
	if !ok {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col+1, w.next)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, cell, cell, style)
}

func writeRanking(w *sheetWriter, ranking []model.RankingEntry) error {
	for i, e := range ranking {
		if err := w.row([]interface{}{
			i + 1, e.Ticker, e.MasterScore, e.LongScore, e.MediumScore, e.ShortScore, e.Coverage(),
		}); err != nil {
			return err
		}
		for col, v := range []float64{e.MasterScore, e.LongScore, e.MediumScore, e.ShortScore} {
			if err := w.paint(col+2, scoreBias(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeResults(w *sheetWriter, results []model.Result) error {
	for _, r := range results {
		in := r.Indicators
		if err := w.row([]interface{}{
			r.Ticker, in.Close, r.Score,
			fmt.Sprintf("%d/%d", r.TrendScore, r.TrendMax),
			fmt.Sprintf("%d/%d", r.MomentumScore, r.MomentumMax),
			r.Signals.RSI.String(), r.Signals.MACD.String(), r.Signals.SMA50.String(), r.Signals.Cross.String(),
			in.SMA50, in.SMA200, in.EMA20, in.EMA50, in.RSI, in.MACDHist, in.ATR, in.OBV, in.BBHigh, in.BBLow,
			in.SMA50Pct, in.SMA200Pct, in.EMA20Pct, in.EMA50Pct, in.ATRPct, in.BBWidthPct,
			in.High52w, in.Low52w, in.Position52w,
		}); err != nil {
			return err
		}
		if err := w.paint(colFinalScore, scoreBias(r.Score)); err != nil {
			return err
		}
		for i, b := range []model.Bias{
			r.Signals.RSI.Bias(), r.Signals.MACD.Bias(), r.Signals.SMA50.Bias(), r.Signals.Cross.Bias(),
		} {
			if err := w.paint(colRSISignal+i, b); err != nil {
				return err
			}
		}
	}
	return nil
}

// SheetName returns the worksheet name used for a timeframe label, cut to
// the 31-character limit of the xlsx format.
func SheetName(label string) string {
	r := []rune(label)
	if len(r) > maxSheetName {
		return string(r[:maxSheetName])
	}
	return label
}

// CheckSheetNames reports labels whose sheet names would collide with each
// other, the ranking sheet or the default sheet. Names compare case-insensitively.
func CheckSheetNames(labels ...string) error {
	seen := map[string]string{
		strings.ToLower(MasterSheet):  MasterSheet,
		strings.ToLower(defaultSheet): defaultSheet,
	}
	for _, label := range labels {
		name := SheetName(label)
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("label %q: sheet name %q collides with %q", label, name, prev)
		}
		seen[key] = label
	}
	return nil
}
