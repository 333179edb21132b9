package strategy

import (
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type builder func(p *params) (Policy, error)

var registry = map[string]builder{
	"crossover":    buildCrossover,
	"trend":        buildTrendFollowing,
	"atr_breakout": buildATRBreakout,
	"improved":     buildImproved,
}

// Names lists the strategies New can build, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a named policy from its defaults overridden by params. Unknown
// names, unknown parameter keys and out-of-range values are errors.
func New(name string, values map[string]float64) (Policy, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Errorf("unknown strategy %q (available: %s)", name, strings.Join(Names(), ", "))
	}

	p := &params{values: values, used: make(map[string]bool, len(values))}
	policy, err := build(p)
	if err != nil {
		return nil, errors.Wrapf(err, "strategy %s", name)
	}
	if err := p.unknown(); err != nil {
		return nil, errors.Wrapf(err, "strategy %s", name)
	}
	return policy, nil
}

// params hands out overrides and remembers which keys were consumed
type params struct {
	values map[string]float64
	used   map[string]bool
	err    error
}

func (p *params) number(key string, dst *float64) {
	v, ok := p.values[key]
	p.used[key] = true
	if !ok {
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(errors.Errorf("parameter %s must be finite, got %v", key, v))
		return
	}
	*dst = v
}

func (p *params) integer(key string, dst *int) {
	v, ok := p.values[key]
	p.used[key] = true
	if !ok {
		return
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		p.fail(errors.Errorf("parameter %s must be an integer, got %v", key, v))
		return
	}
	*dst = int(v)
}

func (p *params) check(cond bool, format string, args ...any) {
	if !cond {
		p.fail(errors.Errorf(format, args...))
	}
}

func (p *params) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *params) unknown() error {
	var keys []string
	for k := range p.values {
		if !p.used[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return errors.Errorf("unknown parameters: %s", strings.Join(keys, ", "))
}

func (p *params) fraction(dst *float64) {
	p.number("positionFraction", dst)
	p.check(*dst > 0 && *dst <= 1, "positionFraction must be in (0, 1], got %v", *dst)
}

func (p *params) percent(key string, dst *float64) {
	p.number(key, dst)
	p.check(*dst >= 0 && *dst < 1, "%s must be in [0, 1), got %v", key, *dst)
}

func (p *params) rsiBand(low, high *float64) {
	p.number("rsiLow", low)
	p.number("rsiHigh", high)
	p.check(*low >= 0 && *low < *high, "rsiLow must be in [0, rsiHigh), got %v-%v", *low, *high)
}

func buildCrossover(p *params) (Policy, error) {
	cfg := DefaultCrossoverConfig()
	p.percent("stopLoss", &cfg.StopLoss)
	p.rsiBand(&cfg.RSILow, &cfg.RSIHigh)
	p.fraction(&cfg.PositionFraction)
	if p.err != nil {
		return nil, p.err
	}
	return NewCrossover(cfg), nil
}

func buildTrendFollowing(p *params) (Policy, error) {
	cfg := DefaultTrendFollowingConfig()
	p.percent("stopLoss", &cfg.StopLoss)
	p.percent("trailingStop", &cfg.TrailingStop)
	p.number("minAdx", &cfg.MinADX)
	p.check(cfg.MinADX >= 0 && cfg.MinADX <= 100, "minAdx must be in [0, 100], got %v", cfg.MinADX)
	p.fraction(&cfg.PositionFraction)
	if p.err != nil {
		return nil, p.err
	}
	return NewTrendFollowing(cfg), nil
}

func buildATRBreakout(p *params) (Policy, error) {
	cfg := DefaultATRBreakoutConfig()
	p.integer("breakoutPeriod", &cfg.BreakoutPeriod)
	p.check(cfg.BreakoutPeriod > 0, "breakoutPeriod must be positive, got %d", cfg.BreakoutPeriod)
	p.number("atrMultiplier", &cfg.ATRMultiplier)
	p.check(cfg.ATRMultiplier >= 0, "atrMultiplier must not be negative, got %v", cfg.ATRMultiplier)
	p.number("volatilityMax", &cfg.VolatilityMax)
	p.check(cfg.VolatilityMax >= 0, "volatilityMax must not be negative, got %v", cfg.VolatilityMax)
	p.number("stopAtr", &cfg.StopATR)
	p.check(cfg.StopATR > 0, "stopAtr must be positive, got %v", cfg.StopATR)
	p.number("minAdx", &cfg.MinADX)
	p.number("minAvgVol", &cfg.MinAvgVolume)
	p.fraction(&cfg.PositionFraction)
	if p.err != nil {
		return nil, p.err
	}
	return NewATRBreakout(cfg), nil
}

func buildImproved(p *params) (Policy, error) {
	cfg := DefaultImprovedConfig()
	p.integer("maShort", &cfg.MAShort)
	p.integer("maLong", &cfg.MALong)
	p.check(cfg.MAShort > 0 && cfg.MAShort < cfg.MALong, "maShort must be positive and below maLong, got %d-%d", cfg.MAShort, cfg.MALong)
	p.check(resolvedPeriod(cfg.MAShort) != resolvedPeriod(cfg.MALong),
		"maShort %d and maLong %d resolve to the same moving average", cfg.MAShort, cfg.MALong)
	p.rsiBand(&cfg.RSILow, &cfg.RSIHigh)
	p.percent("stopLoss", &cfg.StopLoss)
	p.number("takeProfit", &cfg.TakeProfit)
	p.check(cfg.TakeProfit >= 0, "takeProfit must not be negative, got %v", cfg.TakeProfit)
	p.percent("trailingStop", &cfg.TrailingStop)
	p.fraction(&cfg.PositionFraction)
	if p.err != nil {
		return nil, p.err
	}
	return NewImproved(cfg), nil
}
