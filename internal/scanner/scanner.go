package scanner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"BandWatch/internal/indicator"
	"BandWatch/internal/model"
	"BandWatch/internal/table"
)

// MarketData is the upstream capability the scanner consumes.
type MarketData interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]model.Kline, string, error)
	Ticker24h(ctx context.Context) ([]model.Ticker24, string, error)
}

// Params holds the resolved numeric scan parameters.
type Params struct {
	TopN             int
	ABThreshold      float64
	VolumeMALength   int
	VolumeMultiplier float64
	BBLength         int
	BBMult           float64
	WeeklyInterval   string
	DailyInterval    string
	SymbolDelay      time.Duration
	BacktestDays     int

	EMAFast       int
	EMASlow       int
	RSIPeriod     int
	RSIOverbought float64
	RSIOversold   float64
	MACDFast      int
	MACDSlow      int
	MACDSignal    int
}

// Scanner evaluates the squeeze condition (AB_W below threshold, daily volume
// above a multiple of its moving average) over the top-N USDT universe.
// Symbols are processed sequentially with a short delay between them to
// respect upstream rate limits.
type Scanner struct {
	fetcher MarketData
	params  Params
	log     zerolog.Logger
}

// New creates a Scanner.
func New(fetcher MarketData, params Params, logger zerolog.Logger) *Scanner {
	return &Scanner{fetcher: fetcher, params: params, log: logger}
}

// Params returns the scanner's resolved parameters.
func (s *Scanner) Params() Params { return s.params }

// LiveScan evaluates the condition at the single latest daily bar of each
// symbol in the universe. The volume moving average here includes the
// current bar; HistoricalScan shifts it by one bar instead.
func (s *Scanner) LiveScan(ctx context.Context) ([]model.Match, error) {
	symbols, err := s.universe(ctx)
	if err != nil {
		return nil, err
	}

	var matches []model.Match
	for i, symbol := range symbols {
		match, ok, err := s.scanLive(ctx, symbol)
		switch {
		case err != nil:
			s.log.Error().Str("symbol", symbol).Err(err).Msg("scan failed, skipping symbol")
		case ok:
			s.log.Info().
				Str("symbol", symbol).
				Float64("ab_w", match.ABWeekly).
				Float64("volume", match.Volume).
				Float64("volume_ma", match.VolumeMA).
				Msg("match")
			matches = append(matches, match)
		}
		if err := s.pause(ctx, i, len(symbols)); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// HistoricalScan evaluates the condition at every daily bar across the
// configured lookback window. The volume moving average is shifted one bar
// so a volume spike cannot inflate its own baseline.
func (s *Scanner) HistoricalScan(ctx context.Context) ([]model.Match, error) {
	symbols, err := s.universe(ctx)
	if err != nil {
		return nil, err
	}

	var matches []model.Match
	for i, symbol := range symbols {
		hits, err := s.scanHistory(ctx, symbol)
		if err != nil {
			s.log.Error().Str("symbol", symbol).Err(err).Msg("historical scan failed, skipping symbol")
		} else if len(hits) > 0 {
			s.log.Info().Str("symbol", symbol).Int("hits", len(hits)).Msg("historical hits")
			matches = append(matches, hits...)
		}
		if err := s.pause(ctx, i, len(symbols)); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *Scanner) universe(ctx context.Context) ([]string, error) {
	tickers, source, err := s.fetcher.Ticker24h(ctx)
	if err != nil {
		return nil, fmt.Errorf("list 24hr tickers: %w", err)
	}
	symbols := TopUSDTSymbols(tickers, s.params.TopN)
	s.log.Info().Int("symbols", len(symbols)).Str("source", source).Msg("scanning universe")
	return symbols, nil
}

func (s *Scanner) scanLive(ctx context.Context, symbol string) (model.Match, bool, error) {
	abW, err := s.weeklyABLatest(ctx, symbol, 60)
	if err != nil {
		return model.Match{}, false, err
	}

	maLen := s.params.VolumeMALength
	limit := maLen + 2
	if limit < 30 {
		limit = 30
	}
	rows, _, err := s.fetcher.Klines(ctx, symbol, s.params.DailyInterval, limit)
	if err != nil {
		return model.Match{}, false, fmt.Errorf("fetch daily klines: %w", err)
	}
	daily := table.New(rows)
	if daily.Len() < maLen+1 {
		return model.Match{}, false, nil
	}

	volMA := indicator.RollingMean(daily.Volume, maLen)
	latestMA := volMA[len(volMA)-1]
	latestVol := daily.Volume[daily.Len()-1]
	if math.IsNaN(abW) || math.IsNaN(latestMA) || math.IsNaN(latestVol) {
		return model.Match{}, false, nil
	}

	match := model.Match{Symbol: symbol, ABWeekly: abW, Volume: latestVol, VolumeMA: latestMA}
	ok := abW < s.params.ABThreshold && latestVol > s.params.VolumeMultiplier*latestMA
	return match, ok, nil
}

func (s *Scanner) scanHistory(ctx context.Context, symbol string) ([]model.Match, error) {
	days := s.params.BacktestDays

	// Overfetch so the moving-average windows at the head of the kept tail
	// are still satisfiable.
	rows, _, err := s.fetcher.Klines(ctx, symbol, s.params.DailyInterval, days+40)
	if err != nil {
		return nil, fmt.Errorf("fetch daily klines: %w", err)
	}
	daily := table.New(rows)
	if daily.Len() == 0 {
		return nil, nil
	}
	daily = daily.Tail(days + 5)

	weekly, ab, err := s.weeklyAB(ctx, symbol, s.params.BBLength+80)
	if err != nil {
		return nil, err
	}
	abDaily := indicator.AlignToFaster(weekly.Times, ab, daily.Times)

	volMA := indicator.Shift(indicator.RollingMean(daily.Volume, s.params.VolumeMALength), 1)

	var matches []model.Match
	for i := 0; i < daily.Len(); i++ {
		if math.IsNaN(abDaily[i]) || math.IsNaN(volMA[i]) {
			continue
		}
		if abDaily[i] < s.params.ABThreshold && daily.Volume[i] > s.params.VolumeMultiplier*volMA[i] {
			matches = append(matches, model.Match{
				Symbol:   symbol,
				Time:     daily.Times[i],
				ABWeekly: abDaily[i],
				Volume:   daily.Volume[i],
				VolumeMA: volMA[i],
			})
		}
	}
	return matches, nil
}

// weeklyAB fetches weekly bars and returns their table with the AB series.
func (s *Scanner) weeklyAB(ctx context.Context, symbol string, limit int) (*table.Table, []float64, error) {
	rows, _, err := s.fetcher.Klines(ctx, symbol, s.params.WeeklyInterval, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch weekly klines: %w", err)
	}
	weekly := table.New(rows)
	return weekly, indicator.AB(weekly, s.params.BBLength, s.params.BBMult), nil
}

// weeklyABLatest returns the most recent defined weekly AB value, or NaN when
// there is not enough history.
func (s *Scanner) weeklyABLatest(ctx context.Context, symbol string, limit int) (float64, error) {
	weekly, ab, err := s.weeklyAB(ctx, symbol, limit)
	if err != nil {
		return math.NaN(), err
	}
	if weekly.Len() == 0 {
		return math.NaN(), nil
	}
	v, ok := indicator.LastDefined(ab)
	if !ok {
		return math.NaN(), nil
	}
	return v, nil
}

func (s *Scanner) pause(ctx context.Context, i, total int) error {
	if s.params.SymbolDelay <= 0 || i == total-1 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.params.SymbolDelay):
		return nil
	}
}
