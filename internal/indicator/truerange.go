package indicator

import (
	"math"

	"BandWatch/internal/table"
)

// TrueRange computes max(high-low, |high-prev close|, |low-prev close|) per
// bar. The first bar has no previous close and degrades to high-low.
func TrueRange(t *table.Table) []float64 {
	n := t.Len()
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	out[0] = t.High[0] - t.Low[0]
	for i := 1; i < n; i++ {
		hiLo := t.High[i] - t.Low[i]
		hiPC := math.Abs(t.High[i] - t.Close[i-1])
		loPC := math.Abs(t.Low[i] - t.Close[i-1])
		out[i] = math.Max(hiLo, math.Max(hiPC, loPC))
	}
	return out
}

// ATR is the simple rolling mean of the true range over length bars.
func ATR(t *table.Table, length int) []float64 {
	return RollingMean(TrueRange(t), length)
}
