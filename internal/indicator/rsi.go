package indicator

// RSI computes the relative strength index using simple rolling means of
// per-bar gains and losses, not Wilder smoothing. The first period entries
// are NaN. A window with zero average loss reports 100.
func RSI(series []float64, period int) []float64 {
	n := len(series)
	out := nans(n)
	if period <= 0 || n <= period {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < n; i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		avgGain := gainSum / float64(period)
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
