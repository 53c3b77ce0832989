package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SwingScanner/internal/fund"
	"SwingScanner/internal/logging"
	"SwingScanner/internal/model"
	"SwingScanner/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the number of symbols evaluated at once.
const DefaultWorkers = 8

// SeriesSource hands out a private copy of a symbol's trailing price window.
type SeriesSource interface {
	Get(ctx context.Context, symbol string) (model.PriceSeries, bool, error)
}

// Evaluator grades one series.
type Evaluator interface {
	Evaluate(symbol string, series model.PriceSeries, risk fund.RiskParams) (model.Status, *model.SignalResult, error)
}

// Scanner evaluates a symbol list in parallel.
type Scanner struct {
	engine  Evaluator
	source  SeriesSource
	workers int
	now     func() time.Time
	log     zerolog.Logger
}

// New creates a Scanner. A non-positive workers uses DefaultWorkers.
func New(engine Evaluator, source SeriesSource, workers int) *Scanner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Scanner{
		engine:  engine,
		source:  source,
		workers: workers,
		now:     time.Now,
		log:     logging.Component("scanner"),
	}
}

// Scan evaluates every symbol and returns one row per symbol in input order.
// Failures are isolated to their row; only cancellation aborts the scan.
func (s *Scanner) Scan(ctx context.Context, symbols []string, risk fund.RiskParams) (*Report, error) {
	if err := risk.Validate(); err != nil {
		return nil, err
	}
	rep := &Report{
		RunID:     uuid.New().String(),
		StartedAt: s.now(),
		Risk:      risk,
		Total:     len(symbols),
		Rows:      make([]model.ScanRow, len(symbols)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep.Rows[i] = s.scanOne(gctx, sym, risk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, row := range rep.Rows {
		if row.Result == nil {
			continue
		}
		if row.Result.IsStrongSignal {
			rep.Strong++
		}
		if row.Result.AnalysisDate.After(rep.AnalysisDate) {
			rep.AnalysisDate = row.Result.AnalysisDate
		}
	}
	rep.FinishedAt = s.now()
	s.log.Info().
		Str("run_id", rep.RunID).
		Int("symbols", rep.Total).
		Int("strong", rep.Strong).
		Dur("took", rep.FinishedAt.Sub(rep.StartedAt)).
		Msg("scan finished")
	return rep, nil
}

func (s *Scanner) scanOne(ctx context.Context, symbol string, risk fund.RiskParams) (row model.ScanRow) {
	row.Symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("symbol", symbol).Interface("panic", r).Msg("evaluation panicked")
			row = model.ScanRow{Symbol: symbol, Error: fmt.Sprintf("calculation error: %v", r)}
		}
	}()

	series, _, err := s.source.Get(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("load series")
		row.Error = fmt.Sprintf("load error: %v", err)
		return row
	}

	status, res, err := s.engine.Evaluate(symbol, series, risk)
	switch {
	case errors.Is(err, strategy.ErrInsufficientHistory), errors.Is(err, strategy.ErrInsufficientIndicatorRows):
		row.Status = status
		row.Error = string(status)
	case err != nil:
		s.log.Error().Err(err).Str("symbol", symbol).Msg("evaluation failed")
		row.Error = fmt.Sprintf("calculation error: %v", err)
	default:
		row.Status = status
		row.Result = res
	}
	return row
}
