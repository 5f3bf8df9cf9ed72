package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"BandWatch/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "scan.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordScan(t *testing.T) {
	r := newTestRecorder(t)

	barTime := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	run := &ScanRun{
		ID:         "run-1",
		Mode:       "live",
		TopN:       50,
		Symbols:    48,
		Matches:    2,
		Source:     "binance",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
	}
	matches := []model.Match{
		{Symbol: "BTCUSDT", ABWeekly: 0.8, Volume: 2000, VolumeMA: 100},          // live match, no bar time
		{Symbol: "ETHUSDT", Time: barTime, ABWeekly: 0.6, Volume: 900, VolumeMA: 50},
	}

	if err := r.RecordScan(run, matches); err != nil {
		t.Fatalf("RecordScan: %v", err)
	}

	var runs int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM scan_runs").Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Errorf("expected 1 run row, got %d", runs)
	}

	var records int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM match_records WHERE run_id = ?", "run-1").Scan(&records); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if records != 2 {
		t.Errorf("expected 2 match rows, got %d", records)
	}

	// Live matches store a NULL bar time, historical ones the bar's open time.
	var nullTimes int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM match_records WHERE bar_time IS NULL").Scan(&nullTimes); err != nil {
		t.Fatalf("count null times: %v", err)
	}
	if nullTimes != 1 {
		t.Errorf("expected 1 NULL bar time, got %d", nullTimes)
	}
	var storedMS int64
	if err := r.db.QueryRow("SELECT bar_time FROM match_records WHERE symbol = ?", "ETHUSDT").Scan(&storedMS); err != nil {
		t.Fatalf("read bar time: %v", err)
	}
	if storedMS != barTime.UnixMilli() {
		t.Errorf("bar time: got %d, want %d", storedMS, barTime.UnixMilli())
	}
}

func TestRecordScan_DuplicateRunRejected(t *testing.T) {
	r := newTestRecorder(t)

	run := &ScanRun{ID: "dup", Mode: "live", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := r.RecordScan(run, nil); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := r.RecordScan(run, nil); err == nil {
		t.Error("duplicate run id must be rejected")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	r := newTestRecorder(t)
	if err := r.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}
