package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Alias1177/Backtester/internal/analysis/technical"
	"github.com/Alias1177/Backtester/internal/api/binance"
	"github.com/Alias1177/Backtester/internal/config"
	"github.com/Alias1177/Backtester/internal/features"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defaults := features.DefaultLabelOptions()
	flags := pflag.NewFlagSet("features", pflag.ExitOnError)
	config.RegisterFlags(flags)
	horizon := flags.Int("horizon", defaults.Horizon, "bars ahead used for the label")
	threshold := flags.Float64("threshold", defaults.Threshold, "minimum forward return labeled as 1")
	start := flags.Int("start", defaults.Start, "first bar index exported")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

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

	snaps := technical.CalculateAll(bars, cfg.IndicatorOptions())
	rows, err := features.BuildRows(bars, snaps, features.LabelOptions{
		Horizon:   *horizon,
		Threshold: *threshold,
		Start:     *start,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build feature rows")
	}

	positives := 0
	for _, r := range rows {
		positives += int(r.Label)
	}

	file := fmt.Sprintf("features_%s_%s.parquet", strings.ToLower(cfg.Symbol), cfg.Interval)
	path := filepath.Join(cfg.OutputDir, file)
	if err := features.WriteParquet(path, rows); err != nil {
		log.Fatal().Err(err).Msg("Failed to write features")
	}
	log.Info().
		Str("path", path).
		Int("bars", len(bars)).
		Int("rows", len(rows)).
		Int("positives", positives).
		Msg("Features exported")
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
