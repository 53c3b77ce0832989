package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"SwingScanner/internal/collector"
	"SwingScanner/internal/fund"
	"SwingScanner/internal/logging"
	"SwingScanner/internal/model"
	"SwingScanner/internal/notifier"
	"SwingScanner/internal/recorder"
	"SwingScanner/internal/scanner"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// summaryLimit caps the signals listed in a scheduled notification.
const summaryLimit = 20

const riskUsage = "Usage: /risk &lt;portfolio&gt; &lt;percent&gt;"

// Updater refreshes stored prices for a symbol list.
type Updater interface {
	Update(ctx context.Context, symbols []string) []collector.SyncResult
}

// Scanner runs a batch scan.
type Scanner interface {
	Scan(ctx context.Context, symbols []string, risk fund.RiskParams) (*scanner.Report, error)
}

// Notifier delivers messages to the operator.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Counter reports how many symbols are cached.
type Counter interface {
	Len(ctx context.Context) (int, error)
}

// Scheduler manages the cron jobs and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Updater  Updater
	Scanner  Scanner
	Settings *fund.SettingsManager
	Notifier Notifier
	Recorder recorder.Recorder
	Cache    Counter
	Symbols  func() ([]string, error)
	Ctx      context.Context

	scanMu sync.Mutex
	mu     sync.Mutex
	last   *scanner.Report
	log    zerolog.Logger
}

// NewScheduler creates a new Scheduler. A nil notifier disables messages.
func NewScheduler(ctx context.Context, up Updater, sc Scanner, settings *fund.SettingsManager,
	n Notifier, rec recorder.Recorder, c Counter, symbols func() ([]string, error)) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Updater:  up,
		Scanner:  sc,
		Settings: settings,
		Notifier: n,
		Recorder: rec,
		Cache:    c,
		Symbols:  symbols,
		Ctx:      ctx,
		log:      logging.Component("scheduler"),
	}
}

// RegisterAll registers the update and scan jobs. An empty cron expression skips its job.
func (s *Scheduler) RegisterAll(updateCron, scanCron string) error {
	if updateCron != "" {
		if _, err := s.Cron.AddFunc(updateCron, s.updateTask); err != nil {
			return fmt.Errorf("register update task: %w", err)
		}
	}
	if scanCron != "" {
		if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
			return fmt.Errorf("register scan task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunUpdate refreshes prices for every configured symbol.
func (s *Scheduler) RunUpdate(ctx context.Context) ([]collector.SyncResult, error) {
	syms, err := s.Symbols()
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	return s.Updater.Update(ctx, syms), nil
}

// RunScan scans every configured symbol with the active risk settings and
// records the run. Only one scan runs at a time.
func (s *Scheduler) RunScan(ctx context.Context) (*scanner.Report, error) {
	if !s.scanMu.TryLock() {
		return nil, fmt.Errorf("a scan is already running")
	}
	defer s.scanMu.Unlock()

	syms, err := s.Symbols()
	if err != nil {
		return nil, fmt.Errorf("load symbols: %w", err)
	}
	rep, err := s.Scanner.Scan(ctx, syms, s.Settings.Params())
	if err != nil {
		return nil, err
	}
	if err := s.Recorder.RecordScan(ctx, rep); err != nil {
		s.log.Error().Err(err).Str("run_id", rep.RunID).Msg("record scan")
	}
	s.mu.Lock()
	s.last = rep
	s.mu.Unlock()
	return rep, nil
}

// LastReport returns the most recent scan of this process, or nil.
func (s *Scheduler) LastReport() *scanner.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) updateTask() {
	s.log.Info().Msg("running update task")
	results, err := s.RunUpdate(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("update task")
		s.trySend(fmt.Sprintf("❌ Price update failed: %v", err))
		return
	}
	var failed []string
	for _, r := range results {
		if !r.OK {
			failed = append(failed, r.Symbol)
		}
	}
	if len(failed) > 0 {
		s.trySend(fmt.Sprintf("⚠️ Price update: %d of %d symbols failed (%s)",
			len(failed), len(results), strings.Join(failed, ", ")))
	}
}

func (s *Scheduler) scanTask() {
	s.log.Info().Msg("running scan task")
	rep, err := s.RunScan(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scan task")
		s.trySend(fmt.Sprintf("❌ Scan failed: %v", err))
		return
	}
	s.trySend(notifier.FormatScanSummary(rep, summaryLimit))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// group chats address commands as /scan@bot_name
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/scan":
		rep, err := s.RunScan(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Scan failed: %v", err)
		}
		return notifier.FormatScanSummary(rep, summaryLimit)
	case "/strong":
		rep := s.LastReport()
		if rep == nil {
			return "No scan yet. Use /scan."
		}
		strong, _ := rep.Filter(scanner.FilterStrong)
		return notifier.FormatScanSummary(strong, 0)
	case "/risk":
		return s.handleRisk(fields[1:])
	case "/status":
		return s.status(ctx)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) handleRisk(args []string) string {
	switch len(args) {
	case 0:
		return notifier.FormatRisk(s.Settings.Params())
	case 2:
		portfolio, err1 := strconv.ParseFloat(args[0], 64)
		percent, err2 := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
		if err1 != nil || err2 != nil {
			return riskUsage
		}
		p, err := s.Settings.Update(portfolio, percent)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return "✅ Updated\n\n" + notifier.FormatRisk(p)
	default:
		return riskUsage
	}
}

func (s *Scheduler) status(ctx context.Context) string {
	cached := 0
	if s.Cache != nil {
		n, err := s.Cache.Len(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("cache size")
		}
		cached = n
	}
	last, ok, err := s.Recorder.LastRun(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("last run")
	}
	if !ok {
		last = nil
		if rep := s.LastReport(); rep != nil {
			last = &recorder.RunSummary{
				RunID:        rep.RunID,
				StartedAt:    rep.StartedAt,
				AnalysisDate: rep.AnalysisDate.Format(model.DateLayout),
				Total:        rep.Total,
				Strong:       rep.Strong,
			}
		}
	}
	return notifier.FormatStatus(last, cached, s.Settings.Params())
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
