package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Alias1177/Backtester/internal/analysis/technical"
)

// Config holds all application configuration
type Config struct {
	Symbol             string
	Interval           string
	CandleCount        int
	InitialCapital     float64
	LogLevel           string
	RequestTimeout     time.Duration
	MinRequestInterval time.Duration
	MaxRetryTime       time.Duration
	BinanceBaseURL     string
	PlanFile           string
	OutputDir          string

	RSIPeriod        int
	ATRPeriod        int
	ADXPeriod        int
	BBPeriod         int
	BBStdDev         float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
	WarmupBars       int
	ADXSeed          string
}

var defaults = map[string]any{
	"symbol":               "BTCUSDT",
	"interval":             "5m",
	"candle_count":         5000,
	"initial_capital":      200000.0,
	"log_level":            "info",
	"request_timeout":      "10s",
	"min_request_interval": "15ms",
	"max_retry_time":       "30s",
	"binance_base_url":     "https://api.binance.com",
	"plan_file":            "config/backtest.yaml",
	"output_dir":           "tmp",
	"rsi_period":           14,
	"atr_period":           14,
	"adx_period":           14,
	"bb_period":            20,
	"bb_std_dev":           2.0,
	"macd_fast_period":     12,
	"macd_slow_period":     26,
	"macd_signal_period":   9,
	"warmup_bars":          50,
	"adx_seed":             "wilder",
}

// flag name -> config key
var flagKeys = map[string]string{
	"symbol":    "symbol",
	"interval":  "interval",
	"count":     "candle_count",
	"capital":   "initial_capital",
	"log-level": "log_level",
	"plan":      "plan_file",
	"output":    "output_dir",
	"adx-seed":  "adx_seed",
}

// RegisterFlags adds the shared command-line flags to fs. Flags override
// environment variables when set.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("symbol", "", "trading pair, e.g. BTCUSDT")
	fs.String("interval", "", "kline interval (1m, 3m, 5m, 15m, 30m, 1h, 4h, 1d)")
	fs.Int("count", 0, "number of candles to fetch")
	fs.Float64("capital", 0, "initial capital")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("plan", "", "path to the backtest plan file")
	fs.String("output", "", "directory for result files")
	fs.String("adx-seed", "", "ADX seeding: wilder or first_dx")
}

// Load initializes configuration from the .env file, environment variables and
// any flags registered with RegisterFlags. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Symbol:             v.GetString("symbol"),
		Interval:           v.GetString("interval"),
		CandleCount:        v.GetInt("candle_count"),
		InitialCapital:     v.GetFloat64("initial_capital"),
		LogLevel:           v.GetString("log_level"),
		RequestTimeout:     v.GetDuration("request_timeout"),
		MinRequestInterval: v.GetDuration("min_request_interval"),
		MaxRetryTime:       v.GetDuration("max_retry_time"),
		BinanceBaseURL:     v.GetString("binance_base_url"),
		PlanFile:           v.GetString("plan_file"),
		OutputDir:          v.GetString("output_dir"),
		RSIPeriod:          v.GetInt("rsi_period"),
		ATRPeriod:          v.GetInt("atr_period"),
		ADXPeriod:          v.GetInt("adx_period"),
		BBPeriod:           v.GetInt("bb_period"),
		BBStdDev:           v.GetFloat64("bb_std_dev"),
		MACDFastPeriod:     v.GetInt("macd_fast_period"),
		MACDSlowPeriod:     v.GetInt("macd_slow_period"),
		MACDSignalPeriod:   v.GetInt("macd_signal_period"),
		WarmupBars:         v.GetInt("warmup_bars"),
		ADXSeed:            v.GetString("adx_seed"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make a run meaningless
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("SYMBOL must not be empty")
	}
	if c.CandleCount <= 0 {
		return fmt.Errorf("CANDLE_COUNT must be positive, got %d", c.CandleCount)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("INITIAL_CAPITAL must be positive, got %v", c.InitialCapital)
	}
	if c.MACDFastPeriod >= c.MACDSlowPeriod {
		return fmt.Errorf("MACD_FAST_PERIOD (%d) must be below MACD_SLOW_PERIOD (%d)", c.MACDFastPeriod, c.MACDSlowPeriod)
	}
	if _, err := technical.ParseADXSeed(c.ADXSeed); err != nil {
		return fmt.Errorf("ADX_SEED: %w", err)
	}
	if lookback := c.IndicatorOptions().Lookback(); c.WarmupBars < lookback {
		return fmt.Errorf("WARMUP_BARS (%d) must cover the longest indicator lookback (%d)", c.WarmupBars, lookback)
	}
	return nil
}

// IndicatorOptions converts the indicator settings into engine options
func (c *Config) IndicatorOptions() technical.Options {
	opts := technical.DefaultOptions()
	opts.RSIPeriod = c.RSIPeriod
	opts.ATRPeriod = c.ATRPeriod
	opts.ADXPeriod = c.ADXPeriod
	opts.BBPeriod = c.BBPeriod
	opts.BBStdDev = c.BBStdDev
	opts.MACDFastPeriod = c.MACDFastPeriod
	opts.MACDSlowPeriod = c.MACDSlowPeriod
	opts.MACDSignalPeriod = c.MACDSignalPeriod
	opts.Warmup = c.WarmupBars
	// Validate has already rejected unknown seed modes
	opts.ADXSeed, _ = technical.ParseADXSeed(c.ADXSeed)
	return opts
}
