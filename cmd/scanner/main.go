package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"BandWatch/internal/collector"
	"BandWatch/internal/config"
	"BandWatch/internal/notifier"
	"BandWatch/internal/recorder"
	"BandWatch/internal/scanner"
	"BandWatch/internal/scheduler"
)

func main() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	cfgPath := flag.String("config", defaultConfig, "path to config file")
	oneshot := flag.Bool("oneshot", false, "run one live scan, send the result and exit")
	backtest := flag.Bool("backtest", false, "run a historical scan, send the result and exit")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Info().Msg("BandWatch starting")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Source chain: primary host, mirrors, degraded candle source.
	primary := collector.NewBinanceClient("binance", cfg.Binance.BaseURL, cfg.Proxy, 15*time.Second)
	mirrors := make([]*collector.BinanceClient, 0, len(cfg.Binance.Mirrors))
	for _, baseURL := range cfg.Binance.Mirrors {
		mirrors = append(mirrors, collector.NewBinanceClient("mirror:"+baseURL, baseURL, cfg.Proxy, 10*time.Second))
	}
	var degraded *collector.CoinGeckoClient
	if !cfg.CoinGecko.Disabled {
		degraded = collector.NewCoinGeckoClient(cfg.CoinGecko.BaseURL, cfg.Proxy, 10*time.Second)
	}
	fetcher := collector.NewFetcher(collector.FetcherConfig{
		Primary:  primary,
		Mirrors:  mirrors,
		Degraded: degraded,
		Logger:   log,
	})

	sc := scanner.New(fetcher, cfg.ScanParams(), log)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, cfg.Telegram.DryRun, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *oneshot || *backtest {
		runOnce(ctx, sc, tn, fetcher, *backtest, log)
		return
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	sched := scheduler.NewScheduler(ctx, sc, fetcher, tn, rec, cfg.Symbols, log)
	checkInterval := time.Duration(cfg.Schedule.CheckIntervalSeconds) * time.Second
	if err := sched.RegisterAll(cfg.Schedule.ScanCron, cfg.Schedule.ReportCron, checkInterval); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing scan now")
		go sched.RunScanNow()
	}

	log.Info().Msg("BandWatch is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("BandWatch stopped")
}

func runOnce(ctx context.Context, sc *scanner.Scanner, tn *notifier.TelegramNotifier, fetcher *collector.Fetcher, backtest bool, log zerolog.Logger) {
	var text string
	if backtest {
		matches, err := sc.HistoricalScan(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("historical scan")
		}
		log.Info().Int("hits", len(matches)).Msg("historical scan finished")
		text = notifier.FormatBacktest(matches, sc.Params())
	} else {
		matches, err := sc.LiveScan(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("live scan")
		}
		log.Info().Int("matches", len(matches)).Msg("live scan finished")
		text = notifier.FormatMatches(matches, sc.Params(), fetcher.LastSource())
	}
	if err := tn.SendWithRetry(ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send result")
	}
}
