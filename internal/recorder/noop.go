package recorder

import (
	"context"

	"SwingScanner/internal/scanner"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(context.Context, *scanner.Report) error { return nil }
func (n *NoopRecorder) LastRun(context.Context) (*RunSummary, bool, error) {
	return nil, false, nil
}
func (n *NoopRecorder) Close() error { return nil }
