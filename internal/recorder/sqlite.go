package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"MarketScreener/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.With().Str("component", "sqlite_recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			mode        TEXT NOT NULL,
			as_of       TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			tickers     INTEGER,
			results     INTEGER,
			skipped     INTEGER,
			report_path TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at)`,

		`CREATE TABLE IF NOT EXISTS results (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			timeframe      TEXT NOT NULL,
			ticker         TEXT NOT NULL,
			close          REAL,
			score          REAL,
			trend_score    INTEGER,
			trend_max      INTEGER,
			momentum_score INTEGER,
			momentum_max   INTEGER,
			rsi_signal     TEXT,
			macd_signal    TEXT,
			sma50_signal   TEXT,
			cross_signal   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_ticker ON results(ticker)`,

		`CREATE TABLE IF NOT EXISTS rankings (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES runs(id),
			rank         INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			master_score REAL,
			long_score   REAL,
			medium_score REAL,
			short_score  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_ticker ON rankings(ticker)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the run with its results and ranking in one transaction.
// An empty run.ID is filled with a fresh UUID.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, run *Run, results []model.TimeframeResults, ranking []model.RankingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	var asOf interface{}
	if !run.AsOf.IsZero() {
		asOf = run.AsOf.Format(dateLayout)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs
		(id, mode, as_of, started_at, finished_at, tickers, results, skipped, report_path, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.Mode, asOf, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Tickers, run.Results, run.Skipped, run.ReportPath, run.Err,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	resStmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, timeframe, ticker, close, score, trend_score, trend_max, momentum_score, momentum_max,
		 rsi_signal, macd_signal, sma50_signal, cross_signal)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer resStmt.Close()
	for _, tf := range results {
		for _, res := range tf.Results {
			if _, err := resStmt.ExecContext(ctx,
				run.ID, tf.Timeframe.Label, res.Ticker, res.Snapshot.Close, res.Score,
				res.TrendScore, res.TrendMax, res.MomentumScore, res.MomentumMax,
				res.Signals.RSI.String(), res.Signals.MACD.String(), res.Signals.SMA50.String(), res.Signals.Cross.String(),
			); err != nil {
				return fmt.Errorf("insert result %s/%s: %w", tf.Timeframe.Label, res.Ticker, err)
			}
		}
	}

	rankStmt, err := tx.PrepareContext(ctx, `INSERT INTO rankings
		(run_id, rank, ticker, master_score, long_score, medium_score, short_score)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rankings: %w", err)
	}
	defer rankStmt.Close()
	for i, e := range ranking {
		if _, err := rankStmt.ExecContext(ctx,
			run.ID, i+1, e.Ticker, e.MasterScore, e.LongScore, e.MediumScore, e.ShortScore,
		); err != nil {
			return fmt.Errorf("insert ranking %s: %w", e.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Str("run_id", run.ID).Int("results", run.Results).Int("ranked", len(ranking)).Msg("run recorded")
	return nil
}

// TickerHistory returns ticker's most recent rankings, newest first.
func (r *SQLiteRecorder) TickerHistory(ctx context.Context, ticker string, limit int) ([]RankingPoint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT k.run_id, u.finished_at, k.rank,
		k.master_score, k.long_score, k.medium_score, k.short_score
		FROM rankings k JOIN runs u ON u.id = k.run_id
		WHERE k.ticker = ?
		ORDER BY u.finished_at DESC, k.id DESC
		LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []RankingPoint
	for rows.Next() {
		var p RankingPoint
		var finished int64
		if err := rows.Scan(&p.RunID, &finished, &p.Rank, &p.MasterScore, &p.LongScore, &p.MediumScore, &p.ShortScore); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		p.FinishedAt = time.Unix(finished, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
