package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"BandWatch/internal/model"
)

// SQLiteRecorder persists scan history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read
	// while the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			id          TEXT PRIMARY KEY,
			mode        TEXT NOT NULL,
			top_n       INTEGER,
			symbols     INTEGER,
			matches     INTEGER,
			source      TEXT,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS match_records (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES scan_runs(id),
			symbol     TEXT NOT NULL,
			bar_time   INTEGER,
			ab_weekly  REAL,
			volume     REAL,
			volume_ma  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_match_records_run ON match_records(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_match_records_symbol ON match_records(symbol)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScan stores the run row and its match records in one transaction.
func (r *SQLiteRecorder) RecordScan(run *ScanRun, matches []model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO scan_runs
		(id, mode, top_n, symbols, matches, source, started_at, finished_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		run.ID, run.Mode, run.TopN, run.Symbols, run.Matches, run.Source,
		run.StartedAt.Unix(), run.FinishedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}

	for _, m := range matches {
		var barTime any
		if !m.Time.IsZero() {
			barTime = m.Time.UnixMilli()
		}
		_, err = tx.Exec(`INSERT INTO match_records
			(run_id, symbol, bar_time, ab_weekly, volume, volume_ma)
			VALUES (?,?,?,?,?,?)`,
			run.ID, m.Symbol, barTime, m.ABWeekly, m.Volume, m.VolumeMA,
		)
		if err != nil {
			return fmt.Errorf("insert match record: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
