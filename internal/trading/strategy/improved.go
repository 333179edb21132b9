package strategy

import (
	"fmt"

	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/risk"
)

// ImprovedConfig parameterizes the multi-filter policy. MA periods are mapped
// onto the nearest available moving average (5, 7, 20 or 50).
type ImprovedConfig struct {
	MAShort          int
	MALong           int
	RSILow           float64
	RSIHigh          float64
	StopLoss         float64
	TakeProfit       float64
	TrailingStop     float64
	PositionFraction float64
}

func DefaultImprovedConfig() ImprovedConfig {
	return ImprovedConfig{
		MAShort:          7,
		MALong:           50,
		RSILow:           35,
		RSIHigh:          70,
		StopLoss:         0.05,
		TakeProfit:       0.08,
		TrailingStop:     0.03,
		PositionFraction: 0.2,
	}
}

// Improved combines an MA trend filter, an RSI band and rising MACD momentum
// with fixed stop-loss, take-profit and a trailing stop.
type Improved struct {
	cfg ImprovedConfig
}

func NewImproved(cfg ImprovedConfig) *Improved {
	return &Improved{cfg: cfg}
}

func (p *Improved) Name() string {
	return fmt.Sprintf("improved(ma%d-%d,rsi%g-%g,sl%g,tp%g)",
		p.cfg.MAShort, p.cfg.MALong, p.cfg.RSILow, p.cfg.RSIHigh, p.cfg.StopLoss, p.cfg.TakeProfit)
}

func (p *Improved) PositionSizeFraction() float64 {
	return p.cfg.PositionFraction
}

func (p *Improved) ShouldEnter(snap *model.Snapshot, price float64, index int) bool {
	if snap == nil || snap.MACD == nil {
		return false
	}
	short, okShort := value(movingAverage(snap, p.cfg.MAShort))
	long, okLong := value(movingAverage(snap, p.cfg.MALong))
	rsi, okRSI := value(snap.RSI)
	if !okShort || !okLong || !okRSI {
		return false
	}

	macd := snap.MACD
	rising := macd.PrevValue == nil || macd.Value > *macd.PrevValue

	return short > long &&
		rsi > p.cfg.RSILow && rsi < p.cfg.RSIHigh &&
		macd.Value > macd.Signal && rising
}

func (p *Improved) ShouldExit(snap *model.Snapshot, price, entryPrice, peak float64) bool {
	if price <= p.StopPrice(snap, entryPrice) {
		return true
	}
	if price >= risk.PercentTarget(entryPrice, p.cfg.TakeProfit) {
		return true
	}
	if price <= risk.TrailingStop(peak, p.cfg.TrailingStop) {
		return true
	}
	if snap == nil {
		return false
	}
	if snap.MACD != nil && snap.MACD.Value < snap.MACD.Signal {
		return true
	}
	rsi, ok := value(snap.RSI)
	return ok && rsi >= p.cfg.RSIHigh
}

func (p *Improved) StopPrice(_ *model.Snapshot, entryPrice float64) float64 {
	return risk.PercentStop(entryPrice, p.cfg.StopLoss)
}
