package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"BandWatch/internal/model"
)

// Attempt records the outcome of one stage of a failover chain.
type Attempt struct {
	Source string
	Err    error
}

// FetchError reports an exhausted failover chain with one attempt per stage
// tried. It unwraps to the primary stage's failure.
type FetchError struct {
	Op       string
	Attempts []Attempt
}

func (e *FetchError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Source, a.Err))
	}
	return fmt.Sprintf("%s: all sources failed: %s", e.Op, strings.Join(parts, "; "))
}

func (e *FetchError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[0].Err
}

// FetcherConfig wires the ordered source chain of a Fetcher.
type FetcherConfig struct {
	// Primary is the canonical host, always tried first.
	Primary *BinanceClient
	// Mirrors are alternate hosts tried in order after the primary.
	Mirrors []*BinanceClient
	// Degraded is the last-resort candle source; nil disables the stage.
	Degraded *CoinGeckoClient
	// PageLimit caps the rows per page of a ranged fetch.
	PageLimit int
	// PageDelay is the pause between pages of a ranged fetch.
	PageDelay time.Duration
	// Logger is the application logger.
	Logger zerolog.Logger
}

// Fetcher fans each market-data call across an ordered source chain: the
// primary host, then the mirrors, then (for candle fetches only) the
// degraded source. The call returns data from the first stage that succeeds
// together with that stage's name; the name of the stage serving the most
// recent call is also kept for reporting.
type Fetcher struct {
	cfg FetcherConfig

	mu         sync.Mutex
	lastSource string
}

// NewFetcher creates a Fetcher over the given source chain.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 1000
	}
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = 200 * time.Millisecond
	}
	return &Fetcher{cfg: cfg}
}

// LastSource reports the stage that served the most recent successful call.
// It is best-effort observability only; per-call callers should use the
// source returned alongside the data.
func (f *Fetcher) LastSource() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSource
}

func (f *Fetcher) setLastSource(name string) {
	f.mu.Lock()
	f.lastSource = name
	f.mu.Unlock()
}

// Klines fetches up to limit candle rows, falling back through the full
// chain including the degraded source.
func (f *Fetcher) Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Kline, string, error) {
	var attempts []Attempt
	for _, c := range f.binanceChain() {
		rows, err := c.Klines(ctx, symbol, interval, limit, 0, 0)
		if err == nil {
			f.setLastSource(c.Name())
			return rows, c.Name(), nil
		}
		attempts = append(attempts, Attempt{Source: c.Name(), Err: err})
		f.cfg.Logger.Warn().Str("source", c.Name()).Str("symbol", symbol).Err(err).Msg("kline fetch failed, trying next source")
	}
	if f.cfg.Degraded != nil {
		rows, err := f.cfg.Degraded.Klines(ctx, symbol, interval, limit, 0, 0)
		if err == nil {
			f.setLastSource(f.cfg.Degraded.Name())
			return rows, f.cfg.Degraded.Name(), nil
		}
		attempts = append(attempts, Attempt{Source: f.cfg.Degraded.Name(), Err: err})
	}
	return nil, "", &FetchError{Op: fmt.Sprintf("klines %s %s", symbol, interval), Attempts: attempts}
}

// KlinesRange fetches every candle row in [startMS, endMS] by paginating
// against the primary source only: the cursor advances to one millisecond
// past the last row's close time until a short page or the end boundary.
// Pagination never falls back to alternate sources; a failed page fails the
// whole call and accumulated rows are discarded.
func (f *Fetcher) KlinesRange(ctx context.Context, symbol, interval string, startMS, endMS int64) ([]model.Kline, error) {
	var all []model.Kline
	cursor := startMS
	for {
		batch, err := f.cfg.Primary.Klines(ctx, symbol, interval, f.cfg.PageLimit, cursor, endMS)
		if err != nil {
			return nil, fmt.Errorf("klines range %s %s: %w", symbol, interval, err)
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		lastClose := batch[len(batch)-1].CloseTime
		if lastClose >= endMS || len(batch) < f.cfg.PageLimit {
			break
		}
		cursor = lastClose + 1
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.cfg.PageDelay):
		}
	}
	f.setLastSource(f.cfg.Primary.Name())
	return all, nil
}

// TickerPrice fetches the last trade price, falling back through the primary
// and mirror hosts. The degraded source has no ticker capability.
func (f *Fetcher) TickerPrice(ctx context.Context, symbol string) (float64, string, error) {
	var attempts []Attempt
	for _, c := range f.binanceChain() {
		price, err := c.TickerPrice(ctx, symbol)
		if err == nil {
			f.setLastSource(c.Name())
			return price, c.Name(), nil
		}
		attempts = append(attempts, Attempt{Source: c.Name(), Err: err})
		f.cfg.Logger.Warn().Str("source", c.Name()).Str("symbol", symbol).Err(err).Msg("ticker price fetch failed, trying next source")
	}
	return 0, "", &FetchError{Op: fmt.Sprintf("ticker price %s", symbol), Attempts: attempts}
}

// Ticker24h fetches the 24-hour ticker snapshot, falling back through the
// primary and mirror hosts.
func (f *Fetcher) Ticker24h(ctx context.Context) ([]model.Ticker24, string, error) {
	var attempts []Attempt
	for _, c := range f.binanceChain() {
		tickers, err := c.Ticker24h(ctx)
		if err == nil {
			f.setLastSource(c.Name())
			return tickers, c.Name(), nil
		}
		attempts = append(attempts, Attempt{Source: c.Name(), Err: err})
		f.cfg.Logger.Warn().Str("source", c.Name()).Err(err).Msg("ticker 24hr fetch failed, trying next source")
	}
	return nil, "", &FetchError{Op: "ticker 24hr", Attempts: attempts}
}

func (f *Fetcher) binanceChain() []*BinanceClient {
	chain := make([]*BinanceClient, 0, 1+len(f.cfg.Mirrors))
	chain = append(chain, f.cfg.Primary)
	chain = append(chain, f.cfg.Mirrors...)
	return chain
}
