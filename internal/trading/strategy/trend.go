package strategy

import (
	"fmt"

	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/risk"
)

// TrendFollowingConfig parameterizes the trend-following policy. MinADX of 0
// disables the trend-strength filter.
type TrendFollowingConfig struct {
	StopLoss         float64
	TrailingStop     float64
	MinADX           float64
	PositionFraction float64
}

func DefaultTrendFollowingConfig() TrendFollowingConfig {
	return TrendFollowingConfig{
		StopLoss:         0.05,
		TrailingStop:     0.03,
		PositionFraction: 1,
	}
}

// TrendFollowing rides MA20/MA50 uptrends and exits on a trailing stop
type TrendFollowing struct {
	cfg TrendFollowingConfig
}

func NewTrendFollowing(cfg TrendFollowingConfig) *TrendFollowing {
	return &TrendFollowing{cfg: cfg}
}

func (t *TrendFollowing) Name() string {
	return fmt.Sprintf("trend(sl%g,trail%g,adx%g)", t.cfg.StopLoss, t.cfg.TrailingStop, t.cfg.MinADX)
}

func (t *TrendFollowing) PositionSizeFraction() float64 {
	return t.cfg.PositionFraction
}

func (t *TrendFollowing) ShouldEnter(snap *model.Snapshot, price float64, index int) bool {
	if snap == nil || snap.MACD == nil {
		return false
	}
	ma20, ok20 := value(snap.MA20)
	ma50, ok50 := value(snap.MA50)
	if !ok20 || !ok50 {
		return false
	}
	if t.cfg.MinADX > 0 {
		adx, ok := value(snap.ADX)
		if !ok || adx < t.cfg.MinADX {
			return false
		}
	}
	return ma20 > ma50 && price > ma20 && snap.MACD.Value > snap.MACD.Signal
}

func (t *TrendFollowing) ShouldExit(snap *model.Snapshot, price, entryPrice, peak float64) bool {
	if price <= t.StopPrice(snap, entryPrice) {
		return true
	}
	if price <= risk.TrailingStop(peak, t.cfg.TrailingStop) {
		return true
	}
	if snap == nil {
		return false
	}
	ma20, ok20 := value(snap.MA20)
	ma50, ok50 := value(snap.MA50)
	return ok20 && ok50 && ma20 < ma50
}

func (t *TrendFollowing) StopPrice(_ *model.Snapshot, entryPrice float64) float64 {
	return risk.PercentStop(entryPrice, t.cfg.StopLoss)
}
