package indicator

// Bollinger holds the rolling mean band with its upper and lower envelopes.
type Bollinger struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
	Std    []float64
}

// BollingerBands computes rolling mean +/- mult * rolling population standard
// deviation over the given length. Entries before the window fills are NaN.
func BollingerBands(series []float64, length int, mult float64) Bollinger {
	middle := RollingMean(series, length)
	std := RollingStd(series, length)
	upper := make([]float64, len(series))
	lower := make([]float64, len(series))
	for i := range series {
		upper[i] = middle[i] + mult*std[i]
		lower[i] = middle[i] - mult*std[i]
	}
	return Bollinger{Middle: middle, Upper: upper, Lower: lower, Std: std}
}
