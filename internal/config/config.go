package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"BandWatch/internal/scanner"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		DryRun   bool   `yaml:"dry_run"`
	} `yaml:"telegram"`
	Binance struct {
		BaseURL string   `yaml:"base_url"`
		Mirrors []string `yaml:"mirrors"`
	} `yaml:"binance"`
	CoinGecko struct {
		BaseURL  string `yaml:"base_url"`
		Disabled bool   `yaml:"disabled"`
	} `yaml:"coingecko"`
	// Symbols are the pairs covered by the periodic indicator report and
	// the interval signal check.
	Symbols []string `yaml:"symbols"`
	Scan    struct {
		TopN             int     `yaml:"top_n"`
		ABThreshold      float64 `yaml:"abw_lt"`
		VolumeMALength   int     `yaml:"volume_ma_length"`
		VolumeMultiplier float64 `yaml:"volume_multiplier"`
		BBLength         int     `yaml:"bb_length"`
		BBMult           float64 `yaml:"bb_mult"`
		WeeklyInterval   string  `yaml:"weekly_interval"`
		DailyInterval    string  `yaml:"daily_interval"`
		SymbolDelayMS    int     `yaml:"symbol_delay_ms"`
		BacktestDays     int     `yaml:"backtest_days"`
	} `yaml:"scan"`
	Indicators struct {
		EMAFast       int     `yaml:"ema_fast"`
		EMASlow       int     `yaml:"ema_slow"`
		RSIPeriod     int     `yaml:"rsi_period"`
		RSIOverbought float64 `yaml:"rsi_overbought"`
		RSIOversold   float64 `yaml:"rsi_oversold"`
		MACDFast      int     `yaml:"macd_fast"`
		MACDSlow      int     `yaml:"macd_slow"`
		MACDSignal    int     `yaml:"macd_signal"`
	} `yaml:"indicators"`
	Schedule struct {
		ScanCron             string `yaml:"scan_cron"`
		ReportCron           string `yaml:"report_cron"`
		CheckIntervalSeconds int    `yaml:"check_interval_seconds"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if os.Getenv("TELEGRAM_DRY_RUN") == "1" {
		cfg.Telegram.DryRun = true
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Binance.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.TopN = n
		}
	}

	// Defaults
	if cfg.Binance.BaseURL == "" {
		cfg.Binance.BaseURL = "https://api.binance.com"
	}
	if len(cfg.Binance.Mirrors) == 0 {
		cfg.Binance.Mirrors = []string{
			"https://api1.binance.com",
			"https://api2.binance.com",
			"https://data-api.binance.vision",
		}
	}
	if cfg.Scan.TopN == 0 {
		cfg.Scan.TopN = 50
	}
	if cfg.Scan.ABThreshold == 0 {
		cfg.Scan.ABThreshold = 1.0
	}
	if cfg.Scan.VolumeMALength == 0 {
		cfg.Scan.VolumeMALength = 20
	}
	if cfg.Scan.VolumeMultiplier == 0 {
		cfg.Scan.VolumeMultiplier = 10.0
	}
	if cfg.Scan.BBLength == 0 {
		cfg.Scan.BBLength = 20
	}
	if cfg.Scan.BBMult == 0 {
		cfg.Scan.BBMult = 2.0
	}
	if cfg.Scan.WeeklyInterval == "" {
		cfg.Scan.WeeklyInterval = "1w"
	}
	if cfg.Scan.DailyInterval == "" {
		cfg.Scan.DailyInterval = "1d"
	}
	if cfg.Scan.SymbolDelayMS == 0 {
		cfg.Scan.SymbolDelayMS = 100
	}
	if cfg.Scan.BacktestDays == 0 {
		cfg.Scan.BacktestDays = 50
	}
	if cfg.Indicators.EMAFast == 0 {
		cfg.Indicators.EMAFast = 12
	}
	if cfg.Indicators.EMASlow == 0 {
		cfg.Indicators.EMASlow = 26
	}
	if cfg.Indicators.RSIPeriod == 0 {
		cfg.Indicators.RSIPeriod = 14
	}
	if cfg.Indicators.RSIOverbought == 0 {
		cfg.Indicators.RSIOverbought = 70
	}
	if cfg.Indicators.RSIOversold == 0 {
		cfg.Indicators.RSIOversold = 30
	}
	if cfg.Indicators.MACDFast == 0 {
		cfg.Indicators.MACDFast = 12
	}
	if cfg.Indicators.MACDSlow == 0 {
		cfg.Indicators.MACDSlow = 26
	}
	if cfg.Indicators.MACDSignal == 0 {
		cfg.Indicators.MACDSignal = 9
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 0 */4 * * *"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 0 8 * * *"
	}
	if cfg.Schedule.CheckIntervalSeconds == 0 {
		cfg.Schedule.CheckIntervalSeconds = 300
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"BTCUSDT", "ETHUSDT"}
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if !c.Telegram.DryRun {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required (or enable telegram.dry_run)")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required (or enable telegram.dry_run)")
		}
	}
	if c.Scan.TopN <= 0 {
		return fmt.Errorf("scan.top_n must be positive")
	}
	if c.Scan.ABThreshold <= 0 {
		return fmt.Errorf("scan.abw_lt must be positive")
	}
	if c.Scan.VolumeMALength <= 0 || c.Scan.BBLength <= 0 {
		return fmt.Errorf("scan window lengths must be positive")
	}
	if c.Scan.VolumeMultiplier <= 0 || c.Scan.BBMult <= 0 {
		return fmt.Errorf("scan multipliers must be positive")
	}
	return nil
}

// ScanParams converts the configuration into the scanner's parameter set.
func (c *Config) ScanParams() scanner.Params {
	return scanner.Params{
		TopN:             c.Scan.TopN,
		ABThreshold:      c.Scan.ABThreshold,
		VolumeMALength:   c.Scan.VolumeMALength,
		VolumeMultiplier: c.Scan.VolumeMultiplier,
		BBLength:         c.Scan.BBLength,
		BBMult:           c.Scan.BBMult,
		WeeklyInterval:   c.Scan.WeeklyInterval,
		DailyInterval:    c.Scan.DailyInterval,
		SymbolDelay:      time.Duration(c.Scan.SymbolDelayMS) * time.Millisecond,
		BacktestDays:     c.Scan.BacktestDays,
		EMAFast:          c.Indicators.EMAFast,
		EMASlow:          c.Indicators.EMASlow,
		RSIPeriod:        c.Indicators.RSIPeriod,
		RSIOverbought:    c.Indicators.RSIOverbought,
		RSIOversold:      c.Indicators.RSIOversold,
		MACDFast:         c.Indicators.MACDFast,
		MACDSlow:         c.Indicators.MACDSlow,
		MACDSignal:       c.Indicators.MACDSignal,
	}
}
