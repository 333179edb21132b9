package strategy

import (
	"fmt"

	"github.com/Alias1177/Backtester/internal/analysis/technical"
	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/risk"
)

// ATRBreakoutConfig parameterizes the volatility breakout policy. MinADX,
// MinAvgVolume and VolatilityMax are filters; zero disables each of them.
type ATRBreakoutConfig struct {
	BreakoutPeriod   int
	ATRMultiplier    float64
	VolatilityMax    float64 // maximum Bollinger width allowed at entry
	StopATR          float64
	MinADX           float64
	MinAvgVolume     float64
	PositionFraction float64
}

func DefaultATRBreakoutConfig() ATRBreakoutConfig {
	return ATRBreakoutConfig{
		BreakoutPeriod:   20,
		ATRMultiplier:    1.5,
		VolatilityMax:    0.05,
		StopATR:          1,
		PositionFraction: 0.2,
	}
}

// ATRBreakout buys a close that clears the prior channel high by a multiple of
// ATR. It exits at an ATR stop, at a target twice as far as the stop, or when
// MACD drops below its signal line.
type ATRBreakout struct {
	cfg ATRBreakoutConfig
}

func NewATRBreakout(cfg ATRBreakoutConfig) *ATRBreakout {
	return &ATRBreakout{cfg: cfg}
}

func (b *ATRBreakout) Name() string {
	return fmt.Sprintf("atr_breakout(p%d,k%g,vol%g)", b.cfg.BreakoutPeriod, b.cfg.ATRMultiplier, b.cfg.VolatilityMax)
}

func (b *ATRBreakout) PositionSizeFraction() float64 {
	return b.cfg.PositionFraction
}

// TuneIndicators sets the channel lookback to the breakout period
func (b *ATRBreakout) TuneIndicators(opts technical.Options) technical.Options {
	if b.cfg.BreakoutPeriod > 0 {
		opts.ChannelPeriod = b.cfg.BreakoutPeriod
	}
	return opts
}

func (b *ATRBreakout) ShouldEnter(snap *model.Snapshot, price float64, index int) bool {
	if snap == nil {
		return false
	}
	atr, okATR := value(snap.ATR)
	hh, okHH := value(snap.HighestHigh20)
	if !okATR || !okHH {
		return false
	}
	if b.cfg.MinADX > 0 {
		if adx, ok := value(snap.ADX); !ok || adx < b.cfg.MinADX {
			return false
		}
	}
	if b.cfg.MinAvgVolume > 0 {
		if vol, ok := value(snap.AvgVolume20); !ok || vol < b.cfg.MinAvgVolume {
			return false
		}
	}
	if b.cfg.VolatilityMax > 0 && snap.Bollinger != nil && snap.Bollinger.Width > b.cfg.VolatilityMax {
		return false
	}
	return price > hh+b.cfg.ATRMultiplier*atr
}

func (b *ATRBreakout) ShouldExit(snap *model.Snapshot, price, entryPrice, peak float64) bool {
	if price <= b.StopPrice(snap, entryPrice) {
		return true
	}
	if price >= risk.ATRTarget(entryPrice, b.atr(snap), b.cfg.StopATR, 2) {
		return true
	}
	return snap != nil && snap.MACD != nil && snap.MACD.Value < snap.MACD.Signal
}

func (b *ATRBreakout) StopPrice(snap *model.Snapshot, entryPrice float64) float64 {
	return risk.ATRStop(entryPrice, b.atr(snap), b.cfg.StopATR)
}

func (b *ATRBreakout) atr(snap *model.Snapshot) float64 {
	if snap == nil {
		return 0
	}
	atr, _ := value(snap.ATR)
	return atr
}
