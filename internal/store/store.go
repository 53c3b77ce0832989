package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"SwingScanner/internal/logging"
	"SwingScanner/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by name.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Store is the daily price store.
type Store struct {
	db     *sqlx.DB
	driver string
	log    zerolog.Logger
}

// Open connects to the database and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// single writer; WAL lets scans read while an update writes
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	s := &Store{db: db, driver: driver, log: logging.Component("store")}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.log.Info().Str("driver", driver).Msg("price store opened")
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	id := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	float := "REAL"
	if s.driver == DriverPostgres {
		id = "id BIGSERIAL PRIMARY KEY"
		float = "DOUBLE PRECISION"
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS prices (
			%s,
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  %s NOT NULL,
			high   %s,
			low    %s,
			volume %s,
			UNIQUE(symbol, date)
		)`, id, float, float, float, float),
		`CREATE INDEX IF NOT EXISTS idx_prices_symbol_date ON prices(symbol, date)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("exec %q: %w", q[:40], err)
		}
	}
	return nil
}

// UpsertBars inserts bars for ticker, skipping dates already stored.
// It returns the number of new rows.
func (s *Store) UpsertBars(ctx context.Context, ticker string, bars []model.PriceBar) (int, error) {
	if len(bars) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO prices (symbol, date, close, high, low, volume)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, b := range bars {
		res, err := stmt.ExecContext(ctx, ticker, b.Date.Format(model.DateLayout), b.Close, b.High, b.Low, b.Volume)
		if err != nil {
			return 0, fmt.Errorf("insert %s %s: %w", ticker, b.Date.Format(model.DateLayout), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// LastDate returns the most recent stored date for ticker.
func (s *Store) LastDate(ctx context.Context, ticker string) (time.Time, bool, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, s.db.Rebind(`SELECT date FROM prices WHERE symbol = ? ORDER BY date DESC LIMIT 1`), ticker)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last date %s: %w", ticker, err)
	}
	d, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse stored date %q: %w", raw, err)
	}
	return d, true, nil
}

type priceRow struct {
	Date   string          `db:"date"`
	Close  float64         `db:"close"`
	High   sql.NullFloat64 `db:"high"`
	Low    sql.NullFloat64 `db:"low"`
	Volume sql.NullFloat64 `db:"volume"`
}

// LoadSeries returns the trailing limit bars for ticker in ascending date
// order. A non-positive limit loads the full history.
func (s *Store) LoadSeries(ctx context.Context, ticker string, limit int) (model.PriceSeries, error) {
	q := `SELECT date, close, high, low, volume FROM prices WHERE symbol = ? ORDER BY date DESC`
	args := []any{ticker}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []priceRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return model.PriceSeries{}, fmt.Errorf("load %s: %w", ticker, err)
	}

	series := model.PriceSeries{Symbol: ticker, Bars: make([]model.PriceBar, 0, len(rows))}
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if !r.High.Valid || !r.Low.Valid {
			continue
		}
		d, err := time.Parse(model.DateLayout, r.Date)
		if err != nil {
			return model.PriceSeries{}, fmt.Errorf("parse stored date %q: %w", r.Date, err)
		}
		series.Bars = append(series.Bars, model.PriceBar{
			Date:   d,
			Close:  r.Close,
			High:   r.High.Float64,
			Low:    r.Low.Float64,
			Volume: r.Volume.Float64,
		})
	}
	return series, nil
}

// Symbols lists every stored ticker.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.db.SelectContext(ctx, &out, `SELECT DISTINCT symbol FROM prices ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
