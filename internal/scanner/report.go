package scanner

import (
	"context"
	"fmt"
	"math"

	"BandWatch/internal/indicator"
	"BandWatch/internal/table"
)

// Report carries the indicator-augmented view of one symbol's daily table
// together with the textual signal reasons evaluated at the latest bar.
type Report struct {
	Symbol     string
	Table      *table.Table
	EMAFast    []float64
	EMASlow    []float64
	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	AB         []float64
	ABWeekly   float64
	Reasons    []string
	Source     string
}

// LastClose returns the latest close price, or NaN for an empty table.
func (r *Report) LastClose() float64 {
	if r.Table.Len() == 0 {
		return math.NaN()
	}
	return r.Table.Close[r.Table.Len()-1]
}

// BuildReport fetches one symbol's daily table, augments it with the report
// indicators and evaluates the classic signal reasons at the latest bar.
func (s *Scanner) BuildReport(ctx context.Context, symbol string) (*Report, error) {
	rows, source, err := s.fetcher.Klines(ctx, symbol, s.params.DailyInterval, 300)
	if err != nil {
		return nil, fmt.Errorf("fetch daily klines: %w", err)
	}
	t := table.New(rows)
	if t.Len() == 0 {
		return nil, fmt.Errorf("no daily bars for %s", symbol)
	}

	r := &Report{Symbol: symbol, Table: t, Source: source}
	r.EMAFast = indicator.EMA(t.Close, s.params.EMAFast)
	r.EMASlow = indicator.EMA(t.Close, s.params.EMASlow)
	r.RSI = indicator.RSI(t.Close, s.params.RSIPeriod)
	r.MACD, r.MACDSignal, r.MACDHist = indicator.MACD(t.Close, s.params.MACDFast, s.params.MACDSlow, s.params.MACDSignal)
	r.AB = indicator.AB(t, s.params.BBLength, s.params.BBMult)

	abW, err := s.weeklyABLatest(ctx, symbol, 120)
	if err != nil {
		s.log.Warn().Str("symbol", symbol).Err(err).Msg("weekly AB unavailable for report")
		abW = math.NaN()
	}
	r.ABWeekly = abW

	r.Reasons = s.reasons(r)
	return r, nil
}

// reasons evaluates the latest-bar signal conditions: RSI bounds, EMA
// crossover and MACD crossover.
func (s *Scanner) reasons(r *Report) []string {
	var reasons []string

	if rsi, ok := indicator.LastDefined(r.RSI); ok {
		switch {
		case rsi >= s.params.RSIOverbought:
			reasons = append(reasons, fmt.Sprintf("RSI overbought (%.2f)", rsi))
		case rsi <= s.params.RSIOversold:
			reasons = append(reasons, fmt.Sprintf("RSI oversold (%.2f)", rsi))
		}
	}

	if crossedAbove(r.EMAFast, r.EMASlow) {
		reasons = append(reasons, "Bullish EMA crossover")
	} else if crossedBelow(r.EMAFast, r.EMASlow) {
		reasons = append(reasons, "Bearish EMA crossover")
	}

	if crossedAbove(r.MACD, r.MACDSignal) {
		reasons = append(reasons, "MACD bullish cross")
	} else if crossedBelow(r.MACD, r.MACDSignal) {
		reasons = append(reasons, "MACD bearish cross")
	}

	return reasons
}

// crossedAbove reports whether a closed above b on the latest bar after
// being at or below it on the previous bar.
func crossedAbove(a, b []float64) bool {
	n := len(a)
	if n < 2 || len(b) != n {
		return false
	}
	if math.IsNaN(a[n-1]) || math.IsNaN(a[n-2]) || math.IsNaN(b[n-1]) || math.IsNaN(b[n-2]) {
		return false
	}
	return a[n-1] > b[n-1] && a[n-2] <= b[n-2]
}

func crossedBelow(a, b []float64) bool {
	n := len(a)
	if n < 2 || len(b) != n {
		return false
	}
	if math.IsNaN(a[n-1]) || math.IsNaN(a[n-2]) || math.IsNaN(b[n-1]) || math.IsNaN(b[n-2]) {
		return false
	}
	return a[n-1] < b[n-1] && a[n-2] >= b[n-2]
}
