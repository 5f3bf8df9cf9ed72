package recorder

import "BandWatch/internal/model"

// NoopRecorder discards all records. Used when no database is configured.
type NoopRecorder struct{}

// NewNoopRecorder creates a no-op recorder.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ *ScanRun, _ []model.Match) error { return nil }
func (n *NoopRecorder) Close() error                                 { return nil }
