package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestBinanceClient_Klines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("interval") != "1d" || q.Get("limit") != "2" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `[
			[1625097600000,"33500.1","34000.2","33000.3","33800.4","1234.5",1625183999999,"41700000.6",98765,"600.7","20300000.8","0"],
			[1625184000000,"33800.4","35000.0","33500.0","34900.9","2345.6",1625270399999,"80100000.0",123456,"1100.1","38400000.2","0"]
		]`)
	}))
	defer srv.Close()

	c := NewBinanceClient("binance", srv.URL, "", 2*time.Second)
	rows, err := c.Klines(context.Background(), "BTCUSDT", "1d", 2, 0, 0)
	if err != nil {
		t.Fatalf("Klines: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.OpenTime != 1625097600000 || first.CloseTime != 1625183999999 {
		t.Errorf("timestamps: got %d/%d", first.OpenTime, first.CloseTime)
	}
	if first.Open != 33500.1 || first.High != 34000.2 || first.Low != 33000.3 || first.Close != 33800.4 {
		t.Errorf("OHLC parsed wrong: %+v", first)
	}
	if first.Volume != 1234.5 || first.QuoteVolume != 41700000.6 {
		t.Errorf("volumes parsed wrong: %+v", first)
	}
	if first.Trades != 98765 {
		t.Errorf("trades: got %d", first.Trades)
	}
}

func TestBinanceClient_Klines_ShortRowRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1625097600000,"33500.1","34000.2"]]`)
	}))
	defer srv.Close()

	c := NewBinanceClient("binance", srv.URL, "", 2*time.Second)
	if _, err := c.Klines(context.Background(), "BTCUSDT", "1d", 1, 0, 0); err == nil {
		t.Fatal("expected an error for a short kline row")
	}
}

func TestBinanceClient_Klines_NonArrayRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer srv.Close()

	c := NewBinanceClient("binance", srv.URL, "", 2*time.Second)
	if _, err := c.Klines(context.Background(), "NOPEUSDT", "1d", 1, 0, 0); err == nil {
		t.Fatal("expected an error for a non-array response")
	}
}

func TestBinanceClient_Ticker24h(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[
			{"symbol":"BTCUSDT","lastPrice":"34000.5","quoteVolume":"123456789.1"},
			{"symbol":"ETHUSDT","lastPrice":"2100.25","quoteVolume":"98765432.2"}
		]`)
	}))
	defer srv.Close()

	c := NewBinanceClient("binance", srv.URL, "", 2*time.Second)
	tickers, err := c.Ticker24h(context.Background())
	if err != nil {
		t.Fatalf("Ticker24h: %v", err)
	}
	if len(tickers) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(tickers))
	}
	if tickers[0].Symbol != "BTCUSDT" || tickers[0].LastPrice != 34000.5 || tickers[0].QuoteVolume != 123456789.1 {
		t.Errorf("ticker parsed wrong: %+v", tickers[0])
	}
}

func TestBinanceClient_TickerPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol":"BTCUSDT","price":"34123.45"}`)
	}))
	defer srv.Close()

	c := NewBinanceClient("binance", srv.URL, "", 2*time.Second)
	price, err := c.TickerPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("TickerPrice: %v", err)
	}
	if price != 34123.45 {
		t.Errorf("price: got %v, want 34123.45", price)
	}
}

func TestBinanceClient_ErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1003,"msg":"Too many requests."}`, http.StatusTeapot)
	}))
	defer srv.Close()

	c := NewBinanceClient("binance", srv.URL, "", 2*time.Second)
	_, err := c.Klines(context.Background(), "BTCUSDT", "1d", 1, 0, 0)
	if err == nil {
		t.Fatal("expected an error")
	}
	if want := "status 418"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should mention %q", err, want)
	}
}
