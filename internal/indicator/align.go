package indicator

import "time"

// AlignToFaster maps a slower-cadence series onto a faster-cadence index.
// The slow series is first shifted forward by one slow period, so the value
// of a weekly bar only becomes visible to daily bars after that week has
// closed, then each fast timestamp receives the most recent shifted value at
// or before it. Fast timestamps before the first available shifted value
// stay NaN. This is what keeps a backtest from reading a weekly bar that
// had not closed yet.
func AlignToFaster(slowTimes []time.Time, slow []float64, fastTimes []time.Time) []float64 {
	shifted := Shift(slow, 1)
	out := nans(len(fastTimes))

	j := 0
	for i, ft := range fastTimes {
		for j < len(slowTimes) && !slowTimes[j].After(ft) {
			j++
		}
		if j == 0 {
			continue
		}
		out[i] = shifted[j-1]
	}
	return out
}
