package recorder

import (
	"time"

	"BandWatch/internal/model"
)

// ScanRun describes one completed scan invocation.
type ScanRun struct {
	ID         string // uuid
	Mode       string // "live" or "backtest"
	TopN       int
	Symbols    int
	Matches    int
	Source     string // stage that served the universe snapshot
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder persists scan history for later analysis.
type Recorder interface {
	RecordScan(run *ScanRun, matches []model.Match) error
	Close() error
}
