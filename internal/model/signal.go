package model

import (
	"strings"
	"time"
)

// Status is the graded outcome of a signal evaluation.
type Status string

const (
	StatusStrong              Status = "strong swing signal"
	StatusModerate            Status = "moderate swing signal (volume missing)"
	StatusTrendOnly           Status = "trend positive, entry criteria incomplete"
	StatusNotApplicable       Status = "not applicable"
	StatusInsufficientData    Status = "insufficient data (< 200 bars)"
	StatusInsufficientIndRows Status = "insufficient indicator data"
)

// HasResult reports whether the status comes with a SignalResult.
func (s Status) HasResult() bool {
	switch s {
	case StatusStrong, StatusModerate, StatusTrendOnly, StatusNotApplicable:
		return true
	}
	return false
}

// SignalResult is an immutable point-in-time verdict for one symbol.
type SignalResult struct {
	Symbol            string       `json:"symbol"`
	Price             float64      `json:"price"`
	Volume            float64      `json:"volume"`
	Indicators        IndicatorRow `json:"indicators"`
	Reasons           []string     `json:"reasons"`
	IsStrongSignal    bool         `json:"is_strong_signal"`
	StopLoss          Value        `json:"stop_loss"`
	RecommendedLot    *int64       `json:"recommended_lot"`
	DynamicMultiplier float64      `json:"dynamic_multiplier"`
	AnalysisDate      time.Time    `json:"analysis_date"`
}

// ReasonText joins reasons the way the scan table shows them.
func (r *SignalResult) ReasonText() string {
	return strings.Join(r.Reasons, " | ")
}
