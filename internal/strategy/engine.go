package strategy

import (
	"errors"
	"fmt"

	"SwingScanner/internal/calculator"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
)

var (
	// ErrInsufficientHistory is returned when the series is shorter than MinHistory.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrInsufficientIndicatorRows is returned when fewer than two rows have
	// momentum indicators past warm-up.
	ErrInsufficientIndicatorRows = errors.New("insufficient indicator rows")
)

// DefaultMinHistory is the minimum number of bars for an evaluation.
const DefaultMinHistory = 200

// Config tunes the engine.
type Config struct {
	Indicators            calculator.Params
	VolumeZScoreThreshold float64
	MinHistory            int
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Indicators:            calculator.DefaultParams(),
		VolumeZScoreThreshold: 1.0,
		MinHistory:            DefaultMinHistory,
	}
}

// Engine evaluates swing signals. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Indicators.Validate(); err != nil {
		return nil, err
	}
	if cfg.MinHistory < 2 {
		return nil, fmt.Errorf("min history must be at least 2, got %d", cfg.MinHistory)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Evaluate grades the last bar of series.
//
// Short histories return StatusInsufficientData with ErrInsufficientHistory and
// a frame without two warm rows returns StatusInsufficientIndRows with
// ErrInsufficientIndicatorRows; both are non-fatal and carry no result. Any other
// error means the inputs were invalid.
func (e *Engine) Evaluate(symbol string, series model.PriceSeries, risk fund.RiskParams) (model.Status, *model.SignalResult, error) {
	if err := risk.Validate(); err != nil {
		return "", nil, err
	}
	if series.Len() < e.cfg.MinHistory {
		return model.StatusInsufficientData, nil, ErrInsufficientHistory
	}

	frame, err := calculator.Compute(series, e.cfg.Indicators)
	if err != nil {
		return "", nil, fmt.Errorf("compute indicators: %w", err)
	}
	w := NewWindow(series, frame)
	if w.ReadyRows(e.cfg.Indicators.WarmUp()) < 2 {
		return model.StatusInsufficientIndRows, nil, ErrInsufficientIndicatorRows
	}
	cur, _ := w.Current()
	prev, _ := w.Previous()

	var c Criteria
	reasons := make([]string, 0, 5)
	reasons = append(reasons, checkTrend(cur, &c))
	reasons = append(reasons, checkPullback(cur, &c))
	reasons = append(reasons, checkMomentum(cur, prev, &c)...)
	reasons = append(reasons, checkVolume(cur, e.cfg.VolumeZScoreThreshold, &c))

	status := c.Grade()
	sizing := fund.Size(cur.Bar.Close, cur.Ind.ATR, cur.Ind.ATRPercent, risk)

	return status, &model.SignalResult{
		Symbol:            symbol,
		Price:             cur.Bar.Close,
		Volume:            cur.Bar.Volume,
		Indicators:        cur.Ind,
		Reasons:           reasons,
		IsStrongSignal:    status == model.StatusStrong,
		StopLoss:          sizing.StopLoss,
		RecommendedLot:    sizing.RecommendedLot,
		DynamicMultiplier: sizing.Multiplier,
		AnalysisDate:      cur.Bar.Date,
	}, nil
}

// Evaluate runs a default engine.
func Evaluate(symbol string, series model.PriceSeries, risk fund.RiskParams) (model.Status, *model.SignalResult, error) {
	e := &Engine{cfg: DefaultConfig()}
	return e.Evaluate(symbol, series, risk)
}
