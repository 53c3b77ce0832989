package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"SwingScanner/internal/collector"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/model"
	"SwingScanner/internal/recorder"
	"SwingScanner/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct{ results []collector.SyncResult }

func (f *fakeUpdater) Update(_ context.Context, syms []string) []collector.SyncResult {
	return f.results
}

type fakeScanner struct {
	err     error
	risk    fund.RiskParams
	syms    []string
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeScanner) Scan(_ context.Context, syms []string, risk fund.RiskParams) (*scanner.Report, error) {
	if f.block != nil {
		close(f.entered)
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	f.syms, f.risk = syms, risk
	lot := int64(100)
	return &scanner.Report{
		RunID:        "run-1",
		StartedAt:    time.Now(),
		AnalysisDate: time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		Risk:         risk,
		Total:        2,
		Strong:       1,
		Rows: []model.ScanRow{
			{Symbol: "AAA", Status: model.StatusStrong, Result: &model.SignalResult{
				Symbol: "AAA", Price: 10, IsStrongSignal: true, StopLoss: model.Some(9.5), RecommendedLot: &lot,
			}},
			{Symbol: "BBB", Status: model.StatusTrendOnly, Result: &model.SignalResult{Symbol: "BBB", Price: 20}},
		},
	}, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type fakeRecorder struct {
	recorder.NoopRecorder
	runs []*scanner.Report
}

func (f *fakeRecorder) RecordScan(_ context.Context, rep *scanner.Report) error {
	f.runs = append(f.runs, rep)
	return nil
}

type fixedCount int

func (c fixedCount) Len(context.Context) (int, error) { return int(c), nil }

type harness struct {
	s        *Scheduler
	updater  *fakeUpdater
	scanner  *fakeScanner
	notifier *fakeNotifier
	recorder *fakeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	settings, err := fund.NewSettingsManager("", fund.DefaultRiskParams())
	require.NoError(t, err)
	h := &harness{
		updater:  &fakeUpdater{},
		scanner:  &fakeScanner{},
		notifier: &fakeNotifier{},
		recorder: &fakeRecorder{},
	}
	syms := func() ([]string, error) { return []string{"AAA", "BBB"}, nil }
	h.s = NewScheduler(context.Background(), h.updater, h.scanner, settings, h.notifier, h.recorder, fixedCount(2), syms)
	return h
}

func TestRegisterAll(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.s.RegisterAll("0 0 19 * * 1-5", "0 30 19 * * 1-5"))
	assert.Len(t, h.s.Cron.Entries(), 2)

	h = newHarness(t)
	require.NoError(t, h.s.RegisterAll("", "0 30 19 * * 1-5"))
	assert.Len(t, h.s.Cron.Entries(), 1)

	assert.Error(t, newHarness(t).s.RegisterAll("not a cron", ""))
}

func TestScanTaskRecordsAndNotifies(t *testing.T) {
	h := newHarness(t)
	h.s.scanTask()

	require.Len(t, h.recorder.runs, 1)
	assert.Equal(t, []string{"AAA", "BBB"}, h.scanner.syms)
	assert.Equal(t, fund.DefaultRiskParams(), h.scanner.risk)
	require.Len(t, h.notifier.sent, 1)
	assert.Contains(t, h.notifier.sent[0], "<b>AAA</b>")
	assert.NotNil(t, h.s.LastReport())
}

func TestScanTaskFailure(t *testing.T) {
	h := newHarness(t)
	h.scanner.err = errors.New("cache down")
	h.s.scanTask()
	require.Len(t, h.notifier.sent, 1)
	assert.Contains(t, h.notifier.sent[0], "Scan failed: cache down")
	assert.Empty(t, h.recorder.runs)
}

func TestUpdateTaskReportsFailures(t *testing.T) {
	h := newHarness(t)
	h.updater.results = []collector.SyncResult{{Symbol: "AAA", OK: true}, {Symbol: "BBB", OK: true}}
	h.s.updateTask()
	assert.Empty(t, h.notifier.sent)

	h.updater.results[1] = collector.SyncResult{Symbol: "BBB", Message: "no data returned"}
	h.s.updateTask()
	require.Len(t, h.notifier.sent, 1)
	assert.Contains(t, h.notifier.sent[0], "1 of 2 symbols failed (BBB)")
}

func TestRunScanIsExclusive(t *testing.T) {
	h := newHarness(t)
	h.scanner.entered = make(chan struct{})
	h.scanner.block = make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.s.RunScan(context.Background())
	}()

	<-h.scanner.entered
	_, err := h.s.RunScan(context.Background())
	assert.ErrorContains(t, err, "already running")
	close(h.scanner.block)
	<-done
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	assert.Equal(t, "No scan yet. Use /scan.", h.s.HandleCommand(ctx, "/strong"))

	reply := h.s.HandleCommand(ctx, "/scan@swing_bot")
	assert.Contains(t, reply, "<b>AAA</b>")

	strong := h.s.HandleCommand(ctx, "/strong")
	assert.Contains(t, strong, "AAA")
	assert.NotContains(t, strong, "BBB")

	assert.Contains(t, h.s.HandleCommand(ctx, "/risk"), "Risk per trade: 2.50%")
	assert.Contains(t, h.s.HandleCommand(ctx, "/risk 100000 1.5%"), "Risk per trade: 1.50%")
	assert.Equal(t, 0.015, h.s.Settings.Params().RiskPerTrade)
	assert.Equal(t, riskUsage, h.s.HandleCommand(ctx, "/risk abc 2"))
	assert.Equal(t, riskUsage, h.s.HandleCommand(ctx, "/risk 1"))
	assert.Contains(t, h.s.HandleCommand(ctx, "/risk -5 2"), "❌")

	status := h.s.HandleCommand(ctx, "/status")
	assert.Contains(t, status, "Cached symbols: 2")
	assert.Contains(t, status, "Strong signals: 1 of 2")

	assert.Contains(t, h.s.HandleCommand(ctx, "hello"), "Commands:")
	assert.Contains(t, h.s.HandleCommand(ctx, "   "), "Commands:")
}
