// Package technical computes technical indicators over a bar series in a
// single causal pass.
package technical

import "github.com/Alias1177/Backtester/internal/model"

// Calculator produces one indicator snapshot per bar. Every update is
// incremental, so a full series costs O(n) and the snapshot for bar i depends
// only on bars 0..i.
type Calculator struct {
	opts  Options
	index int

	ma5, ma7, ma20, ma50 *movingAverage
	avgVolume            *movingAverage

	rsi       *rsiState
	macd      *macdState
	bollinger *bollingerState
	atr       *atrState
	adx       *adxState
	channel   *channelWindow
}

// NewCalculator creates a Calculator with the given options
func NewCalculator(opts Options) *Calculator {
	opts = opts.normalize()
	return &Calculator{
		opts:      opts,
		ma5:       newMovingAverage(5),
		ma7:       newMovingAverage(7),
		ma20:      newMovingAverage(20),
		ma50:      newMovingAverage(50),
		avgVolume: newMovingAverage(opts.VolumePeriod),
		rsi:       newRSIState(opts.RSIPeriod),
		macd:      newMACDState(opts.MACDFastPeriod, opts.MACDSlowPeriod, opts.MACDSignalPeriod),
		bollinger: newBollingerState(opts.BBPeriod, opts.BBStdDev),
		atr:       newATRState(opts.ATRPeriod),
		adx:       newADXState(opts.ADXPeriod, opts.ADXSeed),
		channel:   newChannelWindow(opts.ChannelPeriod),
	}
}

// Index returns the number of bars consumed so far
func (c *Calculator) Index() int {
	return c.index
}

// Next consumes the next bar and returns its snapshot, or nil while the bar
// index is still inside the warm-up period.
func (c *Calculator) Next(bar model.Bar) *model.Snapshot {
	snap := &model.Snapshot{
		Timestamp: bar.Timestamp,
		Volume:    bar.Volume,
	}

	// The channel is read before the current bar enters it.
	if hh, ll, ok := c.channel.bounds(); ok {
		snap.HighestHigh20 = ptr(hh)
		snap.LowestLow20 = ptr(ll)
	}
	c.channel.push(bar.High, bar.Low)

	snap.MA5 = c.ma5.update(bar.Close)
	snap.MA7 = c.ma7.update(bar.Close)
	snap.MA20 = c.ma20.update(bar.Close)
	snap.MA50 = c.ma50.update(bar.Close)
	snap.AvgVolume20 = c.avgVolume.update(bar.Volume)

	if rsi, ok := c.rsi.update(bar.Close); ok {
		snap.RSI = ptr(rsi)
	}
	snap.MACD = c.macd.update(bar.Close)
	snap.Bollinger = c.bollinger.update(bar.Close)
	if atr, ok := c.atr.update(bar); ok {
		snap.ATR = ptr(atr)
	}
	if adx, ok := c.adx.update(bar); ok {
		snap.ADX = ptr(adx)
	}

	i := c.index
	c.index++
	if i < c.opts.Warmup {
		return nil
	}
	return snap
}

// CalculateAll computes the snapshot for every bar. The result has one slot
// per bar; slots before the warm-up index are nil.
func CalculateAll(bars []model.Bar, opts Options) []*model.Snapshot {
	calc := NewCalculator(opts)
	snaps := make([]*model.Snapshot, len(bars))
	for i, bar := range bars {
		snaps[i] = calc.Next(bar)
	}
	return snaps
}
