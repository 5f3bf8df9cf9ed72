package table

import (
	"sort"
	"time"

	"BandWatch/internal/model"
)

// Table is a time-indexed view over candle rows with the fixed column set.
// The index is the bar open time (UTC, millisecond precision), ascending and
// unique. Indicator functions never mutate a Table they did not create.
type Table struct {
	Times         []time.Time
	CloseTimes    []time.Time
	Open          []float64
	High          []float64
	Low           []float64
	Close         []float64
	Volume        []float64
	QuoteVolume   []float64
	Trades        []int64
	TakerBuyBase  []float64
	TakerBuyQuote []float64
}

// New normalizes raw candle rows into a Table: rows are sorted by open time
// and duplicate open times collapse to the last row seen. An empty input
// yields an empty Table that still carries the full column set, so callers
// can address columns unconditionally.
func New(rows []model.Kline) *Table {
	sorted := make([]model.Kline, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OpenTime < sorted[j].OpenTime })

	t := newWithCap(len(sorted))
	for _, r := range sorted {
		if n := t.Len(); n > 0 && t.Times[n-1].Equal(msToTime(r.OpenTime)) {
			t.set(n-1, r)
			continue
		}
		t.append(r)
	}
	return t
}

func newWithCap(n int) *Table {
	return &Table{
		Times:         make([]time.Time, 0, n),
		CloseTimes:    make([]time.Time, 0, n),
		Open:          make([]float64, 0, n),
		High:          make([]float64, 0, n),
		Low:           make([]float64, 0, n),
		Close:         make([]float64, 0, n),
		Volume:        make([]float64, 0, n),
		QuoteVolume:   make([]float64, 0, n),
		Trades:        make([]int64, 0, n),
		TakerBuyBase:  make([]float64, 0, n),
		TakerBuyQuote: make([]float64, 0, n),
	}
}

// Len returns the number of bars in the table.
func (t *Table) Len() int { return len(t.Times) }

// Tail returns a new Table holding the last n bars.
func (t *Table) Tail(n int) *Table {
	if n >= t.Len() {
		return t
	}
	start := t.Len() - n
	return &Table{
		Times:         t.Times[start:],
		CloseTimes:    t.CloseTimes[start:],
		Open:          t.Open[start:],
		High:          t.High[start:],
		Low:           t.Low[start:],
		Close:         t.Close[start:],
		Volume:        t.Volume[start:],
		QuoteVolume:   t.QuoteVolume[start:],
		Trades:        t.Trades[start:],
		TakerBuyBase:  t.TakerBuyBase[start:],
		TakerBuyQuote: t.TakerBuyQuote[start:],
	}
}

func (t *Table) append(r model.Kline) {
	t.Times = append(t.Times, msToTime(r.OpenTime))
	t.CloseTimes = append(t.CloseTimes, msToTime(r.CloseTime))
	t.Open = append(t.Open, r.Open)
	t.High = append(t.High, r.High)
	t.Low = append(t.Low, r.Low)
	t.Close = append(t.Close, r.Close)
	t.Volume = append(t.Volume, r.Volume)
	t.QuoteVolume = append(t.QuoteVolume, r.QuoteVolume)
	t.Trades = append(t.Trades, r.Trades)
	t.TakerBuyBase = append(t.TakerBuyBase, r.TakerBuyBaseVolume)
	t.TakerBuyQuote = append(t.TakerBuyQuote, r.TakerBuyQuoteVolume)
}

func (t *Table) set(i int, r model.Kline) {
	t.Times[i] = msToTime(r.OpenTime)
	t.CloseTimes[i] = msToTime(r.CloseTime)
	t.Open[i] = r.Open
	t.High[i] = r.High
	t.Low[i] = r.Low
	t.Close[i] = r.Close
	t.Volume[i] = r.Volume
	t.QuoteVolume[i] = r.QuoteVolume
	t.Trades[i] = r.Trades
	t.TakerBuyBase[i] = r.TakerBuyBaseVolume
	t.TakerBuyQuote[i] = r.TakerBuyQuoteVolume
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
