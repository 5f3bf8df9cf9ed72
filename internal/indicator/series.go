package indicator

import "math"

// Indicator series carry one value per input bar. Entries inside a warm-up
// window, where a rolling computation lacks sufficient history, are NaN and
// must be treated as undefined rather than zero.

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// RollingMean computes a simple moving average over the given window. The
// first window-1 entries are NaN, as is any window containing a NaN.
func RollingMean(series []float64, window int) []float64 {
	out := nans(len(series))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(series); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += series[j]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// RollingStd computes the rolling population standard deviation (denominator
// N, not N-1) over the given window.
func RollingStd(series []float64, window int) []float64 {
	out := nans(len(series))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(series); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += series[j]
		}
		mean /= float64(window)
		variance := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := series[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(window))
	}
	return out
}

// Shift moves a series forward by n entries, leaving NaN in the vacated
// prefix.
func Shift(series []float64, n int) []float64 {
	out := nans(len(series))
	for i := n; i < len(series); i++ {
		out[i] = series[i-n]
	}
	return out
}

// LastDefined returns the last non-NaN entry of a series, reporting false
// when every entry is undefined.
func LastDefined(series []float64) (float64, bool) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], true
		}
	}
	return math.NaN(), false
}
