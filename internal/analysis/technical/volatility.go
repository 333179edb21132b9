package technical

import (
	"math"

	"github.com/Alias1177/Backtester/internal/model"
)

// bollingerState computes Bollinger Bands from a sliding window of closes
type bollingerState struct {
	window     *slidingWindow
	multiplier float64
}

func newBollingerState(period int, multiplier float64) *bollingerState {
	return &bollingerState{window: newSlidingWindow(period), multiplier: multiplier}
}

func (b *bollingerState) update(close float64) *model.Bollinger {
	b.window.push(close)
	if !b.window.full() {
		return nil
	}

	middle := b.window.mean()
	sd := math.Sqrt(b.window.variance())

	width := 0.0
	if middle != 0 {
		width = (2 * b.multiplier * sd) / middle
	}

	return &model.Bollinger{
		Middle: middle,
		Upper:  middle + b.multiplier*sd,
		Lower:  middle - b.multiplier*sd,
		Width:  width,
	}
}

// trueRange is the greatest of high-low, |high-prevClose| and |low-prevClose|
func trueRange(bar model.Bar, prevClose float64) float64 {
	highLow := bar.High - bar.Low
	highPrevClose := math.Abs(bar.High - prevClose)
	lowPrevClose := math.Abs(bar.Low - prevClose)
	return math.Max(highLow, math.Max(highPrevClose, lowPrevClose))
}

// atrState is the Wilder-smoothed average true range
type atrState struct {
	avg       *wilder
	prevClose float64
	seen      bool
}

func newATRState(period int) *atrState {
	return &atrState{avg: newWilder(period)}
}

func (a *atrState) update(bar model.Bar) (float64, bool) {
	if !a.seen {
		a.seen = true
		a.prevClose = bar.Close
		return 0, false
	}
	tr := trueRange(bar, a.prevClose)
	a.prevClose = bar.Close
	return a.avg.update(tr)
}

// adxState smooths +DM, -DM and true range with Wilder averages, derives DX
// and smooths DX into ADX. Bars where DX is undefined (no range or no
// directional movement) report no ADX and do not feed the smoothing.
type adxState struct {
	period   int
	seedMode ADXSeedMode

	plusDM  *wilder
	minusDM *wilder
	tr      *wilder

	dxSeed *wilder // used by ADXSeedWilder
	adx    float64
	hasADX bool

	prev model.Bar
	seen bool
}

func newADXState(period int, seedMode ADXSeedMode) *adxState {
	return &adxState{
		period:   period,
		seedMode: seedMode,
		plusDM:   newWilder(period),
		minusDM:  newWilder(period),
		tr:       newWilder(period),
		dxSeed:   newWilder(period),
	}
}

func (a *adxState) update(bar model.Bar) (float64, bool) {
	if !a.seen {
		a.seen = true
		a.prev = bar
		return 0, false
	}

	upMove := bar.High - a.prev.High
	downMove := a.prev.Low - bar.Low

	pDM := 0.0
	if upMove > downMove && upMove > 0 {
		pDM = upMove
	}
	mDM := 0.0
	if downMove > upMove && downMove > 0 {
		mDM = downMove
	}

	tr := trueRange(bar, a.prev.Close)
	a.prev = bar

	smoothedPlus, ok := a.plusDM.update(pDM)
	smoothedMinus, _ := a.minusDM.update(mDM)
	smoothedTR, _ := a.tr.update(tr)
	if !ok {
		return 0, false
	}

	dx, ok := directionalIndex(smoothedPlus, smoothedMinus, smoothedTR)
	if !ok {
		return 0, false
	}

	if a.hasADX {
		a.adx += (dx - a.adx) / float64(a.period)
		return a.adx, true
	}

	switch a.seedMode {
	case ADXSeedFirstDX:
		a.adx = dx
		a.hasADX = true
	default:
		if seed, ready := a.dxSeed.update(dx); ready {
			a.adx = seed
			a.hasADX = true
		}
	}
	if !a.hasADX {
		return 0, false
	}
	return a.adx, true
}

func directionalIndex(plusDM, minusDM, tr float64) (float64, bool) {
	if tr == 0 {
		return 0, false
	}
	plusDI := plusDM / tr * 100
	minusDI := minusDM / tr * 100
	sum := plusDI + minusDI
	if sum == 0 {
		return 0, false
	}
	return math.Abs(plusDI-minusDI) / sum * 100, true
}
