package table

import (
	"testing"
	"time"

	"BandWatch/internal/model"
)

func row(openMS int64, close float64) model.Kline {
	return model.Kline{
		OpenTime:  openMS,
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    100,
		CloseTime: openMS + 86_400_000 - 1,
	}
}

func TestNew_SortsAndDeduplicates(t *testing.T) {
	day := int64(86_400_000)
	rows := []model.Kline{
		row(3*day, 30),
		row(1*day, 10),
		row(2*day, 20),
		row(2*day, 25), // duplicate open time, last row wins
	}

	tab := New(rows)

	if tab.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", tab.Len())
	}
	for i := 1; i < tab.Len(); i++ {
		if !tab.Times[i].After(tab.Times[i-1]) {
			t.Errorf("index not strictly increasing at %d: %v >= %v", i, tab.Times[i-1], tab.Times[i])
		}
	}
	if tab.Close[1] != 25 {
		t.Errorf("duplicate open time should keep the last row, got close %.0f", tab.Close[1])
	}
	if got := tab.Times[0]; !got.Equal(time.UnixMilli(day).UTC()) {
		t.Errorf("unexpected first timestamp: %v", got)
	}
}

func TestNew_EmptyInputKeepsSchema(t *testing.T) {
	tab := New(nil)
	if tab.Len() != 0 {
		t.Fatalf("expected empty table, got %d bars", tab.Len())
	}
	// All columns must exist even for an empty table.
	if tab.Times == nil || tab.CloseTimes == nil || tab.Open == nil || tab.High == nil ||
		tab.Low == nil || tab.Close == nil || tab.Volume == nil || tab.QuoteVolume == nil ||
		tab.Trades == nil || tab.TakerBuyBase == nil || tab.TakerBuyQuote == nil {
		t.Error("empty table must carry the full column set")
	}
}

func TestTail(t *testing.T) {
	day := int64(86_400_000)
	rows := make([]model.Kline, 10)
	for i := range rows {
		rows[i] = row(int64(i+1)*day, float64(i))
	}
	tab := New(rows)

	tail := tab.Tail(3)
	if tail.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", tail.Len())
	}
	if tail.Close[0] != 7 {
		t.Errorf("expected tail to start at close 7, got %.0f", tail.Close[0])
	}

	if got := tab.Tail(100); got.Len() != 10 {
		t.Errorf("oversized tail should return the whole table, got %d bars", got.Len())
	}
}
