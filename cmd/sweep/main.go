package main

import (
	"context"
	"fmt"
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
	"github.com/Alias1177/Backtester/internal/report"
	"github.com/Alias1177/Backtester/internal/trading/backtest"
	"github.com/Alias1177/Backtester/internal/trading/sweep"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	flags := pflag.NewFlagSet("sweep", pflag.ExitOnError)
	config.RegisterFlags(flags)
	name := flags.String("strategy", "atr_breakout", "strategy to sweep")
	walkForward := flags.Bool("walkforward", false, "run rolling train/test folds instead of a single sweep")
	trainRatio := flags.Float64("train-ratio", 0.6, "walk-forward training window as a fraction of the series")
	testRatio := flags.Float64("test-ratio", 0.2, "walk-forward test window as a fraction of the series")
	top := flags.Int("top", 5, "number of best combinations to log")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	plan, err := config.LoadPlan(cfg.PlanFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load plan")
	}
	values, err := plan.SweepGrid(*name)
	if err != nil {
		log.Fatal().Err(err).Str("plan", cfg.PlanFile).Msg("Invalid sweep grid")
	}
	grid := sweep.Grid(values)

	opts := backtest.Options{
		InitialCapital: cfg.InitialCapital,
		Indicators:     cfg.IndicatorOptions(),
	}
	if plan.InitialCapital > 0 && !flags.Changed("capital") {
		opts.InitialCapital = plan.InitialCapital
	}

	client := binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.BinanceBaseURL,
		RequestTimeout: cfg.RequestTimeout,
		MinInterval:    cfg.MinRequestInterval,
		MaxRetryTime:   cfg.MaxRetryTime,
	})
	bars, err := client.GetCandles(ctx, cfg.Symbol, cfg.Interval, cfg.CandleCount)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch candles")
	}
	log.Info().
		Str("symbol", cfg.Symbol).
		Str("interval", cfg.Interval).
		Int("bars", len(bars)).
		Str("strategy", *name).
		Int("combinations", grid.Size()).
		Msg("Starting sweep")

	if *walkForward {
		wf := sweep.DefaultWalkForwardOptions()
		wf.TrainRatio = *trainRatio
		wf.TestRatio = *testRatio

		folds, err := sweep.WalkForward(ctx, bars, opts, *name, grid, wf)
		if err != nil {
			log.Fatal().Err(err).Msg("Walk-forward failed")
		}
		for i, fold := range folds {
			log.Info().
				Int("fold", i).
				Interface("params", fold.Best.Params).
				Str("train_cagr", cagrString(fold.Best)).
				Str("test_cagr", cagrString(fold.Test)).
				Int("test_trades", fold.Test.TradeCount).
				Msg("Fold complete")
		}
		save(cfg, fmt.Sprintf("walkforward_%s.json", *name), folds)
		return
	}

	results, err := sweep.Run(ctx, bars, opts, *name, grid)
	if err != nil {
		log.Fatal().Err(err).Msg("Sweep failed")
	}
	for i, res := range results {
		if i >= *top {
			break
		}
		log.Info().
			Int("rank", i+1).
			Str("run_id", res.RunID).
			Interface("params", res.Params).
			Str("cagr", cagrString(res)).
			Float64("final_equity", res.FinalEquity).
			Int("trades", res.TradeCount).
			Msg("Sweep result")
	}
	save(cfg, fmt.Sprintf("sweep_%s.json", *name), results)
}

func save(cfg *config.Config, file string, v any) {
	path := filepath.Join(cfg.OutputDir, file)
	if err := report.WriteJSON(path, v); err != nil {
		log.Fatal().Err(err).Msg("Failed to write results")
	}
	log.Info().Str("path", path).Msg("Results saved")
}

func cagrString(r sweep.Result) string {
	if r.Metrics == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", r.Metrics.CAGR*100)
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
