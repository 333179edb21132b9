package technical

type indexedValue struct {
	index int
	value float64
}

// channelWindow tracks the highest high and lowest low of the previous period
// bars with monotonic deques. The bar being evaluated is never part of its own
// window, so a close can be compared against the channel it breaks out of.
type channelWindow struct {
	period int
	seen   int
	highs  []indexedValue // decreasing values
	lows   []indexedValue // increasing values
}

func newChannelWindow(period int) *channelWindow {
	return &channelWindow{period: period}
}

// bounds returns resistance and support over the last period bars pushed so far
func (c *channelWindow) bounds() (resistance, support float64, ok bool) {
	if c.seen < c.period {
		return 0, 0, false
	}
	return c.highs[0].value, c.lows[0].value, true
}

func (c *channelWindow) push(high, low float64) {
	i := c.seen
	c.seen++

	for len(c.highs) > 0 && c.highs[len(c.highs)-1].value <= high {
		c.highs = c.highs[:len(c.highs)-1]
	}
	c.highs = append(c.highs, indexedValue{index: i, value: high})

	for len(c.lows) > 0 && c.lows[len(c.lows)-1].value >= low {
		c.lows = c.lows[:len(c.lows)-1]
	}
	c.lows = append(c.lows, indexedValue{index: i, value: low})

	oldest := i - c.period + 1
	for c.highs[0].index < oldest {
		c.highs = c.highs[1:]
	}
	for c.lows[0].index < oldest {
		c.lows = c.lows[1:]
	}
}
