package scanner

import (
	"context"
	"math"
	"strings"
	"testing"

	"BandWatch/internal/model"
)

func TestCrossedAbove(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want bool
	}{
		{"cross up", []float64{1, 3}, []float64{2, 2}, true},
		{"touch then cross", []float64{2, 3}, []float64{2, 2}, true},
		{"already above", []float64{3, 4}, []float64{2, 2}, false},
		{"cross down", []float64{3, 1}, []float64{2, 2}, false},
		{"nan guard", []float64{math.NaN(), 3}, []float64{2, 2}, false},
		{"too short", []float64{3}, []float64{2}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := crossedAbove(c.a, c.b); got != c.want {
				t.Errorf("crossedAbove(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestCrossedBelow(t *testing.T) {
	if !crossedBelow([]float64{3, 1}, []float64{2, 2}) {
		t.Error("expected a bearish cross")
	}
	if crossedBelow([]float64{1, 3}, []float64{2, 2}) {
		t.Error("bullish move flagged as bearish cross")
	}
}

func TestBuildReport(t *testing.T) {
	market := &fakeMarket{
		tickers: []model.Ticker24{{Symbol: "BTCUSDT", QuoteVolume: 1000}},
		weekly:  tightWeekly(30),
		daily:   dailyBars(60, 0, 100, nil),
	}
	sc := newTestScanner(market, testParams())

	r, err := sc.BuildReport(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if r.Symbol != "BTCUSDT" {
		t.Errorf("symbol: got %q", r.Symbol)
	}
	if r.Source != "binance" {
		t.Errorf("source: got %q", r.Source)
	}
	n := r.Table.Len()
	if n != 60 {
		t.Fatalf("expected 60 daily bars, got %d", n)
	}
	if len(r.EMAFast) != n || len(r.RSI) != n || len(r.MACD) != n || len(r.AB) != n {
		t.Error("indicator series must match the table length")
	}
	if r.LastClose() != 100 {
		t.Errorf("last close: got %v, want 100", r.LastClose())
	}
	if math.IsNaN(r.ABWeekly) || r.ABWeekly < 0.79 || r.ABWeekly > 0.81 {
		t.Errorf("weekly ratio: got %v, want about 0.8", r.ABWeekly)
	}
	// Flat closes have a constant-100 RSI and no crossovers.
	for _, reason := range r.Reasons {
		if strings.Contains(reason, "crossover") || strings.Contains(reason, "cross") {
			t.Errorf("flat series produced a crossover reason: %q", reason)
		}
	}
}

func TestBuildReport_EmptyTable(t *testing.T) {
	market := &fakeMarket{
		tickers: []model.Ticker24{{Symbol: "BTCUSDT", QuoteVolume: 1000}},
		weekly:  tightWeekly(30),
		daily:   nil,
	}
	sc := newTestScanner(market, testParams())

	if _, err := sc.BuildReport(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("expected an error for a symbol with no bars")
	}
}
