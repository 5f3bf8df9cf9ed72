package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"BandWatch/internal/model"
)

// ErrNotMappable marks a symbol that has no CoinGecko translation. It is an
// expected outcome for anything but plain spot USDT pairs, not a transport
// failure.
var ErrNotMappable = errors.New("symbol not mappable to coingecko")

// geckoIDs maps base assets to CoinGecko coin ids.
var geckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"LTC":   "litecoin",
	"LINK":  "chainlink",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"TRX":   "tron",
	"ATOM":  "cosmos",
	"UNI":   "uniswap",
	"XLM":   "stellar",
	"NEAR":  "near",
	"FIL":   "filecoin",
	"APT":   "aptos",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"ETC":   "ethereum-classic",
	"BCH":   "bitcoin-cash",
	"SHIB":  "shiba-inu",
	"PEPE":  "pepe",
	"SUI":   "sui",
	"TON":   "the-open-network",
	"INJ":   "injective-protocol",
}

var leveragedSuffixes = []string{"UP", "DOWN", "3L", "3S"}

// MapGeckoID translates an exchange pair into a CoinGecko coin id. Only
// plain spot USDT pairs map; leveraged-token naming patterns and unknown
// bases report false.
func MapGeckoID(symbol string) (string, bool) {
	base, ok := strings.CutSuffix(symbol, "USDT")
	if !ok || base == "" {
		return "", false
	}
	for _, suffix := range leveragedSuffixes {
		if strings.HasSuffix(base, suffix) {
			return "", false
		}
	}
	id, ok := geckoIDs[base]
	return id, ok
}

// CoinGeckoClient is the degraded last-resort candle source. Its OHLC
// endpoint has no volume and only day-level window granularity, so rows come
// back with zero volume and inferred close times.
type CoinGeckoClient struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinGeckoClient creates a CoinGecko client with optional proxy support.
func NewCoinGeckoClient(baseURL, proxyURL string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *CoinGeckoClient) Name() string { return "coingecko" }

// Klines fetches OHLC rows for a translatable symbol. Returns ErrNotMappable
// when the symbol has no translation.
func (c *CoinGeckoClient) Klines(ctx context.Context, symbol, interval string, limit int, startMS, endMS int64) ([]model.Kline, error) {
	id, ok := MapGeckoID(symbol)
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotMappable)
	}
	days, err := geckoDays(interval, limit)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v3/coins/%s/ohlc?vs_currency=usd&days=%d", c.BaseURL, url.PathEscape(id), days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko ohlc %s: %w", id, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("coingecko: expected array response")
	}
	rows := parsed.Array()
	klines := make([]model.Kline, 0, len(rows))
	for _, row := range rows {
		f := row.Array()
		if len(f) < 5 {
			return nil, fmt.Errorf("coingecko: ohlc row has %d fields, want 5", len(f))
		}
		klines = append(klines, model.Kline{
			OpenTime: f[0].Int(),
			Open:     f[1].Float(),
			High:     f[2].Float(),
			Low:      f[3].Float(),
			Close:    f[4].Float(),
		})
	}
	fillCloseTimes(klines)
	if startMS > 0 || endMS > 0 {
		klines = clampWindow(klines, startMS, endMS)
	}
	if limit > 0 && len(klines) > limit {
		klines = klines[len(klines)-limit:]
	}
	return klines, nil
}

// geckoDays infers the smallest supported day window covering limit bars of
// the given interval.
func geckoDays(interval string, limit int) (int, error) {
	dur, err := model.IntervalDuration(interval)
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		limit = 1
	}
	need := int((dur*time.Duration(limit) + 24*time.Hour - 1) / (24 * time.Hour))
	for _, d := range []int{1, 7, 14, 30, 90, 180, 365} {
		if need <= d {
			return d, nil
		}
	}
	return 365, nil
}

// fillCloseTimes infers close times from the spacing of consecutive rows;
// the endpoint reports only bucket open times.
func fillCloseTimes(rows []model.Kline) {
	for i := range rows {
		var span int64
		switch {
		case i+1 < len(rows):
			span = rows[i+1].OpenTime - rows[i].OpenTime
		case i > 0:
			span = rows[i].OpenTime - rows[i-1].OpenTime
		default:
			span = int64(24 * time.Hour / time.Millisecond)
		}
		rows[i].CloseTime = rows[i].OpenTime + span - 1
	}
}

func clampWindow(rows []model.Kline, startMS, endMS int64) []model.Kline {
	out := rows[:0]
	for _, r := range rows {
		if startMS > 0 && r.OpenTime < startMS {
			continue
		}
		if endMS > 0 && r.OpenTime > endMS {
			continue
		}
		out = append(out, r)
	}
	return out
}
