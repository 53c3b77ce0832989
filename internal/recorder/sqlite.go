package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"SwingScanner/internal/logging"
	"SwingScanner/internal/model"
	"SwingScanner/internal/scanner"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteRecorder persists scan runs and their signal rows to a SQLite database.
type SQLiteRecorder struct {
	db  *sqlx.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logging.Component("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id         TEXT PRIMARY KEY,
			started_at     INTEGER NOT NULL,
			finished_at    INTEGER NOT NULL,
			analysis_date  TEXT,
			total          INTEGER,
			strong         INTEGER,
			portfolio_size REAL,
			risk_per_trade REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS signal_results (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT NOT NULL REFERENCES scan_runs(run_id),
			symbol             TEXT NOT NULL,
			status             TEXT,
			error              TEXT,
			price              REAL,
			volume             REAL,
			rsi                REAL,
			macd_hist          REAL,
			atr                REAL,
			atr_percent        REAL,
			volume_zscore      REAL,
			ma20_slope         REAL,
			is_strong          INTEGER,
			stop_loss          REAL,
			recommended_lot    INTEGER,
			dynamic_multiplier REAL,
			reasons            TEXT,
			analysis_date      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_results_run ON signal_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_results_symbol ON signal_results(symbol, analysis_date)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores the run header and one row per scanned symbol.
func (r *SQLiteRecorder) RecordScan(ctx context.Context, rep *scanner.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO scan_runs
		(run_id, started_at, finished_at, analysis_date, total, strong, portfolio_size, risk_per_trade)
		VALUES (?,?,?,?,?,?,?,?)`,
		rep.RunID, rep.StartedAt.Unix(), rep.FinishedAt.Unix(), dateText(rep.AnalysisDate),
		rep.Total, rep.Strong, rep.Risk.PortfolioSize, rep.Risk.RiskPerTrade,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO signal_results
		(run_id, symbol, status, error, price, volume, rsi, macd_hist, atr, atr_percent,
		 volume_zscore, ma20_slope, is_strong, stop_loss, recommended_lot, dynamic_multiplier,
		 reasons, analysis_date)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rep.Rows {
		args := []any{rep.RunID, row.Symbol, string(row.Status), nullString(row.Error)}
		if res := row.Result; res != nil {
			ind := res.Indicators
			args = append(args,
				res.Price, res.Volume, ind.RSI.Ptr(), ind.MACDHist.Ptr(), ind.ATR.Ptr(), ind.ATRPercent.Ptr(),
				ind.VolumeZScore.Ptr(), ind.MA20Slope.Ptr(), res.IsStrongSignal, res.StopLoss.Ptr(),
				res.RecommendedLot, res.DynamicMultiplier, res.ReasonText(), dateText(res.AnalysisDate),
			)
		} else {
			args = append(args, nil, nil, nil, nil, nil, nil, nil, nil, false, nil, nil, nil, nil, nil)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s: %w", row.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Str("run_id", rep.RunID).Int("rows", len(rep.Rows)).Msg("scan recorded")
	return nil
}

type runRow struct {
	RunID         string         `db:"run_id"`
	StartedAt     int64          `db:"started_at"`
	AnalysisDate  sql.NullString `db:"analysis_date"`
	Total         int            `db:"total"`
	Strong        int            `db:"strong"`
	PortfolioSize float64        `db:"portfolio_size"`
	RiskPerTrade  float64        `db:"risk_per_trade"`
}

// LastRun returns the most recently started scan run.
func (r *SQLiteRecorder) LastRun(ctx context.Context) (*RunSummary, bool, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT run_id, started_at, analysis_date, total, strong,
		portfolio_size, risk_per_trade FROM scan_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("last run: %w", err)
	}
	return &RunSummary{
		RunID:         row.RunID,
		StartedAt:     time.Unix(row.StartedAt, 0),
		AnalysisDate:  row.AnalysisDate.String,
		Total:         row.Total,
		Strong:        row.Strong,
		PortfolioSize: row.PortfolioSize,
		RiskPerTrade:  row.RiskPerTrade,
	}, true, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func dateText(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(model.DateLayout)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
