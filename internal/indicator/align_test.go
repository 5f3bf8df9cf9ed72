package indicator

import (
	"math"
	"testing"
	"time"
)

func weeklyTimes(n int) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, 7*i)
	}
	return out
}

func dailyTimes(n int) []time.Time {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = base.AddDate(0, 0, i)
	}
	return out
}

func TestAlignToFaster_ShiftAndFill(t *testing.T) {
	slowTimes := weeklyTimes(3) // Jan 1, Jan 8, Jan 15
	slow := []float64{10, 20, 30}
	fastTimes := dailyTimes(17) // Jan 1 .. Jan 17

	got := AlignToFaster(slowTimes, slow, fastTimes)

	// Days during the first week see nothing: the first weekly value only
	// becomes visible once shifted past its own week.
	for i := 0; i < 7; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("day %d should be NaN before any weekly bar has closed, got %v", i, got[i])
		}
	}
	// Days Jan 8..Jan 14 carry the first week's value.
	for i := 7; i < 14; i++ {
		if got[i] != 10 {
			t.Errorf("day %d: got %v, want 10", i, got[i])
		}
	}
	// Days Jan 15.. carry the second week's value.
	for i := 14; i < 17; i++ {
		if got[i] != 20 {
			t.Errorf("day %d: got %v, want 20", i, got[i])
		}
	}
}

func TestAlignToFaster_NoLookAhead(t *testing.T) {
	fastTimes := dailyTimes(20)

	base := AlignToFaster(weeklyTimes(3), []float64{10, 20, 30}, fastTimes)
	// Append future weekly bars: values already assigned must not move.
	extended := AlignToFaster(weeklyTimes(5), []float64{10, 20, 30, 999, 999}, fastTimes)

	for i := range base {
		switch {
		case math.IsNaN(base[i]):
			if !math.IsNaN(extended[i]) && extended[i] == 999 {
				t.Errorf("day %d leaked a future weekly value", i)
			}
		case base[i] != extended[i]:
			t.Errorf("day %d changed after appending future bars: %v vs %v", i, base[i], extended[i])
		}
	}
}

func TestAlignToFaster_EmptySlow(t *testing.T) {
	got := AlignToFaster(nil, nil, dailyTimes(3))
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("day %d should be NaN with no slow series, got %v", i, v)
		}
	}
}
