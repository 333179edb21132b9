package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Alias1177/Backtester/internal/api/binance"
	"github.com/Alias1177/Backtester/internal/config"
	"github.com/Alias1177/Backtester/internal/features"
	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/report"
	"github.com/Alias1177/Backtester/internal/trading/backtest"
	"github.com/Alias1177/Backtester/internal/trading/strategy"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	flags := pflag.NewFlagSet("backtest", pflag.ExitOnError)
	config.RegisterFlags(flags)
	predictionsPath := flags.String("predictions", "", "JSON predictions file; adds the labeled strategy")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	plan, err := loadPlan(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load backtest plan")
	}

	opts := backtest.Options{
		InitialCapital: cfg.InitialCapital,
		Indicators:     cfg.IndicatorOptions(),
	}
	if plan.InitialCapital > 0 && !flags.Changed("capital") {
		opts.InitialCapital = plan.InitialCapital
	}

	var labels map[int64]bool
	if *predictionsPath != "" {
		labels, err = features.LoadPredictions(*predictionsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load predictions")
		}
		log.Info().Int("labels", len(labels)).Msg("Loaded predictions")
	}

	client := binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.BinanceBaseURL,
		RequestTimeout: cfg.RequestTimeout,
		MinInterval:    cfg.MinRequestInterval,
		MaxRetryTime:   cfg.MaxRetryTime,
	})
	engine := backtest.NewEngine(opts)

	var entries []report.Entry
	for _, tc := range plan.Tests {
		if ctx.Err() != nil {
			break
		}
		bars, err := client.GetCandles(ctx, tc.Pair, tc.Interval, tc.Count)
		if err != nil {
			log.Error().Err(err).Str("test", tc.Label).Msg("Failed to fetch candles")
			continue
		}
		log.Info().Str("test", tc.Label).Int("bars", len(bars)).Msg("Fetched candles")

		entries = append(entries, runTest(engine, tc, bars, plan, labels)...)
	}

	path := filepath.Join(cfg.OutputDir, "backtest_results.json")
	if err := report.WriteJSON(path, entries); err != nil {
		log.Fatal().Err(err).Msg("Failed to write results")
	}
	log.Info().Str("path", path).Int("runs", len(entries)).Msg("Results saved")
}

// runTest runs every configured strategy parameter set against one bar series
func runTest(engine *backtest.Engine, tc config.TestCase, bars []model.Bar, plan *config.Plan, labels map[int64]bool) []report.Entry {
	var entries []report.Entry

	runOne := func(policy strategy.Policy, params map[string]float64) {
		result, err := engine.Run(bars, policy)
		if err != nil {
			log.Error().Err(err).Str("test", tc.Label).Str("strategy", policy.Name()).Msg("Backtest failed")
			return
		}
		summary := backtest.CalculatePerformanceMetrics(result.EquityCurve, result.TradeLog)
		fmt.Printf("\n[%s] %s\n%s", tc.Label, policy.Name(), engine.FormatResults(result, summary))

		entries = append(entries, report.Entry{
			Test:     tc.Label,
			Pair:     tc.Pair,
			Interval: tc.Interval,
			Bars:     len(bars),
			Strategy: policy.Name(),
			Params:   params,
			Metrics:  summary,
			Result:   result,
		})
	}

	for _, name := range plan.StrategyNames() {
		for _, params := range plan.Strategies[name] {
			policy, err := strategy.New(name, params)
			if err != nil {
				log.Error().Err(err).Str("strategy", name).Msg("Invalid strategy parameters")
				continue
			}
			runOne(policy, params)
		}
	}

	if labels != nil {
		runOne(strategy.NewLabeled(labels, strategy.DefaultLabeledConfig()), nil)
	}
	return entries
}

// loadPlan reads the plan file, falling back to a single test of the
// configured symbol with every strategy at its defaults.
func loadPlan(cfg *config.Config) (*config.Plan, error) {
	plan, err := config.LoadPlan(cfg.PlanFile)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	log.Warn().Str("path", cfg.PlanFile).Msg("Plan file not found, using configured symbol and default strategies")
	plan = &config.Plan{
		Tests: []config.TestCase{{
			Label:    fmt.Sprintf("%s %s x%d", cfg.Symbol, cfg.Interval, cfg.CandleCount),
			Pair:     cfg.Symbol,
			Interval: cfg.Interval,
			Count:    cfg.CandleCount,
		}},
		Strategies: make(map[string][]map[string]float64),
	}
	for _, name := range strategy.Names() {
		plan.Strategies[name] = []map[string]float64{{}}
	}
	return plan, nil
}

// setupSignalHandling cancels ctx on SIGINT or SIGTERM
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, finishing current run...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
