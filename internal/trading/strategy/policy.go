// Package strategy provides the entry and exit policies evaluated by the
// backtest simulator. Every policy is a pure function of the snapshot and
// prices it is given.
package strategy

import (
	"github.com/Alias1177/Backtester/internal/analysis/technical"
	"github.com/Alias1177/Backtester/internal/model"
)

// Policy decides when the simulator opens and closes its single long position.
// Implementations must be total: they may not panic or block.
type Policy interface {
	Name() string
	ShouldEnter(snap *model.Snapshot, price float64, index int) bool
	ShouldExit(snap *model.Snapshot, price, entryPrice, peak float64) bool
	// PositionSizeFraction is the share of available cash committed on entry
	PositionSizeFraction() float64
}

// StopLosser is implemented by policies with a protective stop. The simulator
// labels an exit as a stop-loss when the exit price is at or below StopPrice.
type StopLosser interface {
	StopPrice(snap *model.Snapshot, entryPrice float64) float64
}

// IndicatorTuner is implemented by policies that need non-default indicator
// settings, such as a custom breakout lookback.
type IndicatorTuner interface {
	TuneIndicators(opts technical.Options) technical.Options
}

func value(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// movingAverage maps a requested period onto the closest available MA field
func movingAverage(snap *model.Snapshot, period int) *float64 {
	switch {
	case period <= 5:
		return snap.MA5
	case period <= 7:
		return snap.MA7
	case period <= 20:
		return snap.MA20
	default:
		return snap.MA50
	}
}

func resolvedPeriod(period int) int {
	switch {
	case period <= 5:
		return 5
	case period <= 7:
		return 7
	case period <= 20:
		return 20
	default:
		return 50
	}
}
