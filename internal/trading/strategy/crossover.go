package strategy

import (
	"fmt"

	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/risk"
)

// CrossoverConfig parameterizes the MA crossover policy
type CrossoverConfig struct {
	StopLoss         float64
	RSILow           float64
	RSIHigh          float64
	PositionFraction float64
}

// DefaultCrossoverConfig returns the classic 5% stop, RSI 30/70 setup
func DefaultCrossoverConfig() CrossoverConfig {
	return CrossoverConfig{
		StopLoss:         0.05,
		RSILow:           30,
		RSIHigh:          70,
		PositionFraction: 1,
	}
}

// Crossover enters when MA5 is above MA20, RSI sits inside its band and MACD
// has just crossed above its signal line.
type Crossover struct {
	cfg CrossoverConfig
}

// NewCrossover creates a crossover policy
func NewCrossover(cfg CrossoverConfig) *Crossover {
	return &Crossover{cfg: cfg}
}

func (c *Crossover) Name() string {
	return fmt.Sprintf("crossover(rsi%g-%g,sl%g)", c.cfg.RSILow, c.cfg.RSIHigh, c.cfg.StopLoss)
}

func (c *Crossover) PositionSizeFraction() float64 {
	return c.cfg.PositionFraction
}

func (c *Crossover) ShouldEnter(snap *model.Snapshot, price float64, index int) bool {
	if snap == nil {
		return false
	}
	ma5, ok5 := value(snap.MA5)
	ma20, ok20 := value(snap.MA20)
	rsi, okRSI := value(snap.RSI)
	if !ok5 || !ok20 || !okRSI {
		return false
	}
	return ma5 > ma20 &&
		rsi > c.cfg.RSILow && rsi < c.cfg.RSIHigh &&
		snap.MACD.CrossedAbove()
}

func (c *Crossover) ShouldExit(snap *model.Snapshot, price, entryPrice, peak float64) bool {
	if price <= c.StopPrice(snap, entryPrice) {
		return true
	}
	if snap == nil {
		return false
	}
	if snap.MACD != nil && snap.MACD.Value < snap.MACD.Signal {
		return true
	}
	if rsi, ok := value(snap.RSI); ok && rsi >= c.cfg.RSIHigh {
		return true
	}
	ma5, ok5 := value(snap.MA5)
	ma20, ok20 := value(snap.MA20)
	return ok5 && ok20 && ma5 < ma20
}

func (c *Crossover) StopPrice(_ *model.Snapshot, entryPrice float64) float64 {
	return risk.PercentStop(entryPrice, c.cfg.StopLoss)
}
