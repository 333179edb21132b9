package backtest

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Backtester/internal/analysis/technical"
	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/risk"
	"github.com/Alias1177/Backtester/internal/trading/strategy"
)

// DefaultInitialCapital is the starting cash of a run unless configured otherwise
const DefaultInitialCapital = 200000.0

// Options configures an Engine
type Options struct {
	InitialCapital float64
	Indicators     technical.Options
}

// DefaultOptions returns the default capital and indicator settings
func DefaultOptions() Options {
	return Options{
		InitialCapital: DefaultInitialCapital,
		Indicators:     technical.DefaultOptions(),
	}
}

// PolicyError reports a policy that panicked during a run. The run result is
// discarded.
type PolicyError struct {
	Policy string
	Call   string
	Index  int
	Err    error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("policy %s failed in %s at bar %d: %v", e.Policy, e.Call, e.Index, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// Engine simulates a single long position driven by a strategy policy
type Engine struct {
	opts   Options
	logger zerolog.Logger
}

// NewEngine creates a new backtesting engine
func NewEngine(opts Options) *Engine {
	if opts.InitialCapital <= 0 {
		opts.InitialCapital = DefaultInitialCapital
	}
	return &Engine{
		opts:   opts,
		logger: log.With().Str("component", "backtest").Logger(),
	}
}

// SetInitialValue sets the initial capital for backtesting
func (e *Engine) SetInitialValue(value float64) {
	if value > 0 {
		e.opts.InitialCapital = value
	}
}

// InitialValue returns the configured starting capital
func (e *Engine) InitialValue() float64 {
	return e.opts.InitialCapital
}

// Run sanitizes the bars, computes indicators and simulates the policy over them
func (e *Engine) Run(bars []model.Bar, policy strategy.Policy) (*model.BacktestResult, error) {
	clean, dropped := model.SanitizeBars(bars)
	if dropped > 0 {
		e.logger.Debug().Int("dropped", dropped).Int("kept", len(clean)).Msg("Skipped malformed bars")
	}

	opts := e.opts.Indicators
	if tuner, ok := policy.(strategy.IndicatorTuner); ok {
		opts = tuner.TuneIndicators(opts)
	}

	return e.simulate(clean, technical.CalculateAll(clean, opts), policy)
}

// RunWithSnapshots simulates the policy over precomputed snapshots, which lets
// one indicator pass serve many policies. bars must already be sanitized and
// snaps must hold one slot per bar.
func (e *Engine) RunWithSnapshots(bars []model.Bar, snaps []*model.Snapshot, policy strategy.Policy) (*model.BacktestResult, error) {
	if len(bars) != len(snaps) {
		return nil, errors.Errorf("got %d bars but %d snapshots", len(bars), len(snaps))
	}
	return e.simulate(bars, snaps, policy)
}

// run holds the mutable state of one simulation
type run struct {
	cash     float64
	position *model.Position
	trades   []model.Trade
	curve    []model.EquityPoint
	wins     int
	losses   int

	peakEquity  float64
	maxDrawdown float64

	call  string
	index int
}

func (r *run) equity(price float64) float64 {
	if r.position == nil {
		return r.cash
	}
	return r.cash + r.position.Quantity*price
}

func (r *run) record(ts int64, equity float64) {
	r.curve = append(r.curve, model.EquityPoint{Timestamp: ts, Equity: equity})
	r.peakEquity = math.Max(r.peakEquity, equity)
	if r.peakEquity > 0 {
		r.maxDrawdown = math.Max(r.maxDrawdown, (r.peakEquity-equity)/r.peakEquity)
	}
}

func (r *run) open(index int, bar model.Bar, fraction float64) {
	committed := r.cash * fraction
	qty := committed / bar.Close
	r.cash -= committed
	r.position = &model.Position{EntryPrice: bar.Close, Quantity: qty, PeakPrice: bar.Close}
	r.trades = append(r.trades, model.Trade{
		EntryIndex:     index,
		EntryTimestamp: bar.Timestamp,
		EntryPrice:     bar.Close,
		Quantity:       qty,
	})
}

func (r *run) close(index int, bar model.Bar, reason model.ExitReason) float64 {
	pos := r.position
	proceeds := pos.Quantity * bar.Close
	profit := proceeds - pos.Quantity*pos.EntryPrice
	if profit > 0 {
		r.wins++
	} else {
		r.losses++
	}
	r.cash += proceeds
	r.position = nil

	exitIndex, exitTs, exitPrice := index, bar.Timestamp, bar.Close
	t := &r.trades[len(r.trades)-1]
	t.ExitIndex = &exitIndex
	t.ExitTimestamp = &exitTs
	t.ExitPrice = &exitPrice
	t.Profit = &profit
	t.ExitReason = reason
	return profit
}

func (e *Engine) simulate(bars []model.Bar, snaps []*model.Snapshot, policy strategy.Policy) (result *model.BacktestResult, err error) {
	r := &run{
		cash:       e.opts.InitialCapital,
		peakEquity: e.opts.InitialCapital,
		trades:     []model.Trade{},
		curve:      []model.EquityPoint{},
		index:      -1,
	}
	name := ""

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &PolicyError{
				Policy: name,
				Call:   r.call,
				Index:  r.index,
				Err:    errors.Errorf("panic: %v", rec),
			}
		}
	}()

	r.call = "Name"
	name = policy.Name()
	r.call = "PositionSizeFraction"
	fraction := risk.ClampFraction(policy.PositionSizeFraction())
	stopper, _ := policy.(strategy.StopLosser)

	processed := 0
	for i, bar := range bars {
		snap := snaps[i]
		if snap == nil {
			continue
		}
		r.index = i
		processed++
		price := bar.Close

		r.record(bar.Timestamp, r.equity(price))

		if r.position == nil {
			r.call = "ShouldEnter"
			if price > 0 && policy.ShouldEnter(snap, price, i) {
				r.open(i, bar, fraction)
				e.logger.Debug().Str("strategy", name).Int("index", i).Float64("price", price).Msg("Opened position")
			}
			continue
		}

		r.position.PeakPrice = math.Max(r.position.PeakPrice, price)
		r.call = "ShouldExit"
		if !policy.ShouldExit(snap, price, r.position.EntryPrice, r.position.PeakPrice) {
			continue
		}

		reason := model.ExitSignal
		if stopper != nil {
			r.call = "StopPrice"
			if price <= stopper.StopPrice(snap, r.position.EntryPrice) {
				reason = model.ExitStopLoss
			}
		}
		profit := r.close(i, bar, reason)
		e.logger.Debug().Str("strategy", name).Int("index", i).Float64("price", price).
			Float64("profit", profit).Str("reason", string(reason)).Msg("Closed position")
	}

	if processed > 0 {
		last := len(bars) - 1
		if r.position != nil {
			profit := r.close(last, bars[last], model.ExitEndOfData)
			e.logger.Debug().Str("strategy", name).Int("index", last).Float64("profit", profit).Msg("Liquidated at end of data")
		}
		r.record(bars[last].Timestamp, r.cash)
	}

	result = &model.BacktestResult{
		Strategy:       name,
		InitialCapital: e.opts.InitialCapital,
		FinalEquity:    r.cash,
		TradeCount:     len(r.trades),
		Wins:           r.wins,
		Losses:         r.losses,
		MaxDrawdown:    r.maxDrawdown,
		TradeLog:       r.trades,
		EquityCurve:    r.curve,
	}
	if closed := r.wins + r.losses; closed > 0 {
		result.WinRate = float64(r.wins) / float64(closed)
	}
	return result, nil
}
