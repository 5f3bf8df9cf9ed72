package indicator

import "BandWatch/internal/table"

// AB computes the band-tightness ratio: the Bollinger half-band width
// (upper minus middle, i.e. mult * rolling std of close) divided by the
// average true range over the same length. A low AB marks a historically
// tight band relative to recent bar range.
func AB(t *table.Table, length int, mult float64) []float64 {
	bb := BollingerBands(t.Close, length, mult)
	atr := ATR(t, length)
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = (bb.Upper[i] - bb.Middle[i]) / atr[i]
	}
	return out
}
