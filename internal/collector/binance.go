package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"BandWatch/internal/model"
)

// BinanceClient talks to one Binance-compatible spot REST host. The same
// adapter serves both the primary host and the mirror hosts; only the base
// URL and timeout differ.
type BinanceClient struct {
	BaseURL string
	Client  *http.Client

	name string
}

// NewBinanceClient creates a client for one REST host with optional proxy
// support.
func NewBinanceClient(name, baseURL, proxyURL string, timeout time.Duration) *BinanceClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &BinanceClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		name: name,
	}
}

func (c *BinanceClient) Name() string { return c.name }

// Klines fetches candle rows for one symbol and interval. startMS/endMS
// bound the window when positive; limit caps the page size when positive.
func (c *BinanceClient) Klines(ctx context.Context, symbol, interval string, limit int, startMS, endMS int64) ([]model.Kline, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if startMS > 0 {
		q.Set("startTime", strconv.FormatInt(startMS, 10))
	}
	if endMS > 0 {
		q.Set("endTime", strconv.FormatInt(endMS, 10))
	}
	body, err := c.get(ctx, "/api/v3/klines", q)
	if err != nil {
		return nil, fmt.Errorf("klines %s %s: %w", symbol, interval, err)
	}
	return parseKlineRows(body)
}

// TickerPrice fetches the last trade price for one symbol.
func (c *BinanceClient) TickerPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	body, err := c.get(ctx, "/api/v3/ticker/price", q)
	if err != nil {
		return 0, fmt.Errorf("ticker price %s: %w", symbol, err)
	}
	price := gjson.GetBytes(body, "price")
	if !price.Exists() {
		return 0, fmt.Errorf("ticker price %s: no price field in response", symbol)
	}
	return price.Float(), nil
}

// Ticker24h fetches the full 24-hour ticker snapshot.
func (c *BinanceClient) Ticker24h(ctx context.Context) ([]model.Ticker24, error) {
	body, err := c.get(ctx, "/api/v3/ticker/24hr", nil)
	if err != nil {
		return nil, fmt.Errorf("ticker 24hr: %w", err)
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("ticker 24hr: expected array response")
	}
	rows := parsed.Array()
	tickers := make([]model.Ticker24, 0, len(rows))
	for _, row := range rows {
		tickers = append(tickers, model.Ticker24{
			Symbol:      row.Get("symbol").String(),
			LastPrice:   row.Get("lastPrice").Float(),
			QuoteVolume: row.Get("quoteVolume").Float(),
		})
	}
	return tickers, nil
}

func (c *BinanceClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	endpoint := c.BaseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// parseKlineRows decodes the heterogeneous 12-field kline arrays. Numeric
// fields arrive as JSON strings and are coerced to floats.
func parseKlineRows(body []byte) ([]model.Kline, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("klines: expected array response, got: %s", truncate(body, 200))
	}
	rows := parsed.Array()
	klines := make([]model.Kline, 0, len(rows))
	for _, row := range rows {
		f := row.Array()
		if len(f) < 12 {
			return nil, fmt.Errorf("klines: row has %d fields, want 12", len(f))
		}
		klines = append(klines, model.Kline{
			OpenTime:            f[0].Int(),
			Open:                f[1].Float(),
			High:                f[2].Float(),
			Low:                 f[3].Float(),
			Close:               f[4].Float(),
			Volume:              f[5].Float(),
			CloseTime:           f[6].Int(),
			QuoteVolume:         f[7].Float(),
			Trades:              f[8].Int(),
			TakerBuyBaseVolume:  f[9].Float(),
			TakerBuyQuoteVolume: f[10].Float(),
			Ignore:              f[11].String(),
		})
	}
	return klines, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
