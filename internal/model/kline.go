package model

// Kline is a single candlestick row in the fixed 12-field exchange layout.
// Open and close times are millisecond epochs; within one fetched sequence
// open times are strictly increasing and close time >= open time.
type Kline struct {
	OpenTime            int64
	Open                float64
	High                float64
	Low                 float64
	Close               float64
	Volume              float64
	CloseTime           int64
	QuoteVolume         float64
	Trades              int64
	TakerBuyBaseVolume  float64
	TakerBuyQuoteVolume float64
	Ignore              string
}

// Ticker24 is one entry of the 24-hour ticker snapshot.
type Ticker24 struct {
	Symbol      string
	LastPrice   float64
	QuoteVolume float64
}
