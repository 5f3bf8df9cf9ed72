package scanner

import (
	"sort"
	"strings"

	"BandWatch/internal/model"
)

var leveragedPatterns = []string{"UP", "DOWN", "3L", "3S"}

// IsLeveraged reports whether a symbol matches a leveraged-token naming
// pattern.
func IsLeveraged(symbol string) bool {
	for _, p := range leveragedPatterns {
		if strings.Contains(symbol, p) {
			return true
		}
	}
	return false
}

// TopUSDTSymbols ranks USDT-quoted pairs by 24-hour quote volume descending
// and returns the top n, excluding leveraged tokens. Equal volumes keep the
// snapshot's original order.
func TopUSDTSymbols(tickers []model.Ticker24, n int) []string {
	filtered := make([]model.Ticker24, 0, len(tickers))
	for _, t := range tickers {
		if t.Symbol == "" || !strings.HasSuffix(t.Symbol, "USDT") {
			continue
		}
		if IsLeveraged(t.Symbol) {
			continue
		}
		filtered = append(filtered, t)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].QuoteVolume > filtered[j].QuoteVolume })

	if n > len(filtered) {
		n = len(filtered)
	}
	symbols := make([]string, n)
	for i := 0; i < n; i++ {
		symbols[i] = filtered[i].Symbol
	}
	return symbols
}
