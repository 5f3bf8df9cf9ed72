package model

import (
	"math"
	"time"
)

// Match is one qualifying (symbol, time) pair produced by a scan.
// Time is the daily bar's open time for historical scans and zero for
// live scans, which always refer to the latest bar.
type Match struct {
	Symbol   string
	Time     time.Time
	ABWeekly float64
	Volume   float64
	VolumeMA float64
}

// VolumeRatio returns the latest volume as a multiple of its moving average.
func (m Match) VolumeRatio() float64 {
	if m.VolumeMA == 0 {
		return math.NaN()
	}
	return m.Volume / m.VolumeMA
}
