package strategy

import (
	"fmt"

	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/risk"
)

// LabeledConfig parameterizes the externally driven policy
type LabeledConfig struct {
	StopLoss         float64
	TakeProfit       float64
	ExitOnMACDCross  bool
	PositionFraction float64
}

func DefaultLabeledConfig() LabeledConfig {
	return LabeledConfig{
		StopLoss:         0.03,
		TakeProfit:       0.06,
		ExitOnMACDCross:  true,
		PositionFraction: 0.2,
	}
}

// Labeled enters on bars whose timestamp carries a positive label, such as a
// model prediction, and exits on a fixed percentage stop or target.
type Labeled struct {
	labels map[int64]bool
	cfg    LabeledConfig
}

// NewLabeled copies labels so later changes by the caller do not leak into a run
func NewLabeled(labels map[int64]bool, cfg LabeledConfig) *Labeled {
	owned := make(map[int64]bool, len(labels))
	for ts, v := range labels {
		owned[ts] = v
	}
	return &Labeled{labels: owned, cfg: cfg}
}

func (l *Labeled) Name() string {
	return fmt.Sprintf("labeled(sl%g,tp%g)", l.cfg.StopLoss, l.cfg.TakeProfit)
}

func (l *Labeled) PositionSizeFraction() float64 {
	return l.cfg.PositionFraction
}

func (l *Labeled) ShouldEnter(snap *model.Snapshot, price float64, index int) bool {
	return snap != nil && l.labels[snap.Timestamp]
}

func (l *Labeled) ShouldExit(snap *model.Snapshot, price, entryPrice, peak float64) bool {
	if price <= l.StopPrice(snap, entryPrice) {
		return true
	}
	if price >= risk.PercentTarget(entryPrice, l.cfg.TakeProfit) {
		return true
	}
	return l.cfg.ExitOnMACDCross && snap != nil && snap.MACD != nil && snap.MACD.Value < snap.MACD.Signal
}

func (l *Labeled) StopPrice(_ *model.Snapshot, entryPrice float64) float64 {
	return risk.PercentStop(entryPrice, l.cfg.StopLoss)
}
