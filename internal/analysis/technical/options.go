package technical

import (
	"fmt"
	"strings"
)

// ADXSeedMode selects how the first ADX value is formed
type ADXSeedMode int

const (
	// ADXSeedWilder seeds ADX with the mean of the first ADXPeriod distinct DX values.
	ADXSeedWilder ADXSeedMode = iota
	// ADXSeedFirstDX seeds ADX with the first DX value, reproducing the legacy
	// approximation that summed one DX value ADXPeriod times.
	ADXSeedFirstDX
)

func (m ADXSeedMode) String() string {
	switch m {
	case ADXSeedFirstDX:
		return "first_dx"
	default:
		return "wilder"
	}
}

// ParseADXSeed converts a config string into an ADXSeedMode
func ParseADXSeed(s string) (ADXSeedMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wilder":
		return ADXSeedWilder, nil
	case "first_dx", "firstdx", "legacy":
		return ADXSeedFirstDX, nil
	}
	return ADXSeedWilder, fmt.Errorf("unknown ADX seed mode %q", s)
}

// Options holds indicator periods. Zero or negative values fall back to
// DefaultOptions.
type Options struct {
	RSIPeriod        int
	ATRPeriod        int
	ADXPeriod        int
	BBPeriod         int
	BBStdDev         float64
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
	ChannelPeriod    int // highest high / lowest low lookback
	VolumePeriod     int
	Warmup           int // first bar index that gets a snapshot
	ADXSeed          ADXSeedMode
}

// DefaultOptions returns the standard indicator configuration
func DefaultOptions() Options {
	return Options{
		RSIPeriod:        14,
		ATRPeriod:        14,
		ADXPeriod:        14,
		BBPeriod:         20,
		BBStdDev:         2,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		ChannelPeriod:    20,
		VolumePeriod:     20,
		Warmup:           50,
		ADXSeed:          ADXSeedWilder,
	}
}

// longestMA is the period of the slowest fixed moving average (MA50)
const longestMA = 50

// Lookback returns the first bar index at which every indicator can be
// defined. ADX can stay undefined past it on bars without directional
// movement. A Warmup below Lookback yields snapshots with nil fields.
func (o Options) Lookback() int {
	o = o.normalize()
	adx := 2*o.ADXPeriod - 1
	if o.ADXSeed == ADXSeedFirstDX {
		adx = o.ADXPeriod
	}
	return max(
		longestMA-1,
		o.VolumePeriod-1,
		o.BBPeriod-1,
		o.RSIPeriod,
		o.ATRPeriod,
		o.MACDSlowPeriod+o.MACDSignalPeriod-1, // previous signal value included
		adx,
		o.ChannelPeriod, // extrema exclude the current bar
	)
}

func (o Options) normalize() Options {
	def := DefaultOptions()
	pick := func(v, d int) int {
		if v <= 0 {
			return d
		}
		return v
	}
	o.RSIPeriod = pick(o.RSIPeriod, def.RSIPeriod)
	o.ATRPeriod = pick(o.ATRPeriod, def.ATRPeriod)
	o.ADXPeriod = pick(o.ADXPeriod, def.ADXPeriod)
	o.BBPeriod = pick(o.BBPeriod, def.BBPeriod)
	o.MACDFastPeriod = pick(o.MACDFastPeriod, def.MACDFastPeriod)
	o.MACDSlowPeriod = pick(o.MACDSlowPeriod, def.MACDSlowPeriod)
	o.MACDSignalPeriod = pick(o.MACDSignalPeriod, def.MACDSignalPeriod)
	o.ChannelPeriod = pick(o.ChannelPeriod, def.ChannelPeriod)
	o.VolumePeriod = pick(o.VolumePeriod, def.VolumePeriod)
	o.Warmup = pick(o.Warmup, def.Warmup)
	if o.BBStdDev <= 0 {
		o.BBStdDev = def.BBStdDev
	}
	return o
}
