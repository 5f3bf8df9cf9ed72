package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"BandWatch/internal/collector"
	"BandWatch/internal/notifier"
	"BandWatch/internal/recorder"
	"BandWatch/internal/scanner"
)

// reportDecimals is the precision used for prices in report messages.
const reportDecimals = 2

// Scheduler manages the cron-driven scan, the periodic indicator report and
// the interval signal check.
type Scheduler struct {
	Cron     *cron.Cron
	Scanner  *scanner.Scanner
	Fetcher  *collector.Fetcher
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Symbols  []string
	Ctx      context.Context

	log zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, f *collector.Fetcher, tn *notifier.TelegramNotifier, rec recorder.Recorder, symbols []string, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Scanner:  sc,
		Fetcher:  f,
		Notifier: tn,
		Recorder: rec,
		Symbols:  symbols,
		Ctx:      ctx,
		log:      logger,
	}
}

// RegisterAll registers the scan, report and signal-check tasks.
func (s *Scheduler) RegisterAll(scanCron, reportCron string, checkInterval time.Duration) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	if checkInterval > 0 {
		spec := fmt.Sprintf("@every %s", checkInterval)
		if _, err := s.Cron.AddFunc(spec, s.signalCheck); err != nil {
			return fmt.Errorf("register signal check: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan task immediately (manual trigger / on-start).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	s.log.Info().Msg("running live scan")
	started := time.Now()
	matches, err := s.Scanner.LiveScan(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("live scan failed")
		s.trySend(fmt.Sprintf("Scan failed: %v", err))
		return
	}
	source := s.Fetcher.LastSource()
	params := s.Scanner.Params()

	s.trySend(notifier.FormatMatches(matches, params, source))

	if err := s.Recorder.RecordScan(&recorder.ScanRun{
		ID:         uuid.NewString(),
		Mode:       "live",
		TopN:       params.TopN,
		Symbols:    params.TopN,
		Matches:    len(matches),
		Source:     source,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}, matches); err != nil {
		s.log.Error().Err(err).Msg("record scan")
	}
}

func (s *Scheduler) reportTask() {
	s.log.Info().Msg("running indicator reports")
	for _, symbol := range s.Symbols {
		report, err := s.Scanner.BuildReport(s.Ctx, symbol)
		if err != nil {
			s.log.Error().Str("symbol", symbol).Err(err).Msg("build report")
			continue
		}
		s.trySend(notifier.FormatReport(report, reportDecimals))
	}
}

// signalCheck sends a report only when a symbol has at least one signal
// reason at its latest bar.
func (s *Scheduler) signalCheck() {
	for _, symbol := range s.Symbols {
		report, err := s.Scanner.BuildReport(s.Ctx, symbol)
		if err != nil {
			s.log.Error().Str("symbol", symbol).Err(err).Msg("signal check")
			continue
		}
		if len(report.Reasons) == 0 {
			continue
		}
		s.log.Info().Str("symbol", symbol).Strs("reasons", report.Reasons).Msg("signal triggered")
		s.trySend(notifier.FormatReport(report, reportDecimals))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		go s.scanTask()
		return "Scan started."
	case "/report":
		go s.reportTask()
		return "Reports on the way."
	case "/status":
		params := s.Scanner.Params()
		return fmt.Sprintf("Last data source: %s\nCondition: AB_W < %.2f, Vol > %.1fx MA%d\nTop %d USDT pairs",
			orUnknown(s.Fetcher.LastSource()), params.ABThreshold, params.VolumeMultiplier, params.VolumeMALength, params.TopN)
	default:
		return "Commands:\n/scan - run the live scan now\n/report - send indicator reports\n/status - show scan settings"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
