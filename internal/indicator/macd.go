package indicator

// MACD computes the moving average convergence divergence: fast EMA minus
// slow EMA as the MACD line, an EMA of that line as the signal line, and
// their difference as the histogram.
func MACD(series []float64, fast, slow, signalPeriod int) (macd, signal, hist []float64) {
	fastEMA := EMA(series, fast)
	slowEMA := EMA(series, slow)

	macd = make([]float64, len(series))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signal = EMA(macd, signalPeriod)
	hist = make([]float64, len(series))
	for i := range hist {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}
