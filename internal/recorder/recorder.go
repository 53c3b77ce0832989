package recorder

import (
	"context"
	"time"

	"SwingScanner/internal/scanner"
)

// RunSummary describes a stored scan run.
type RunSummary struct {
	RunID         string
	StartedAt     time.Time
	AnalysisDate  string
	Total         int
	Strong        int
	PortfolioSize float64
	RiskPerTrade  float64
}

// Recorder persists scan history for analysis.
type Recorder interface {
	RecordScan(ctx context.Context, rep *scanner.Report) error
	LastRun(ctx context.Context) (*RunSummary, bool, error)
	Close() error
}
