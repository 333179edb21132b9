package technical

import "github.com/Alias1177/Backtester/internal/model"

// rsiState tracks Wilder-smoothed average gain and loss of one-bar changes
type rsiState struct {
	gain      *wilder
	loss      *wilder
	prevClose float64
	seen      bool
}

func newRSIState(period int) *rsiState {
	return &rsiState{gain: newWilder(period), loss: newWilder(period)}
}

func (r *rsiState) update(close float64) (float64, bool) {
	if !r.seen {
		r.seen = true
		r.prevClose = close
		return 0, false
	}

	change := close - r.prevClose
	r.prevClose = close

	var up, down float64
	if change > 0 {
		up = change
	} else {
		down = -change
	}
	avgGain, ok := r.gain.update(up)
	avgLoss, _ := r.loss.update(down)
	if !ok {
		return 0, false
	}
	return rsiFromAverages(avgGain, avgLoss), true
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0 // no movement at all
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// macdState maintains the fast/slow EMAs, the signal EMA over the MACD series
// and the previous bar's values for crossover detection.
type macdState struct {
	fast, slow, signal *ema

	prevValue     float64
	hasPrevValue  bool
	prevSignal    float64
	hasPrevSignal bool
}

func newMACDState(fast, slow, signal int) *macdState {
	return &macdState{fast: newEMA(fast), slow: newEMA(slow), signal: newEMA(signal)}
}

func (m *macdState) update(close float64) *model.MACD {
	f, fastOK := m.fast.update(close)
	s, slowOK := m.slow.update(close)
	if !fastOK || !slowOK {
		return nil
	}

	value := f - s
	sig, sigOK := m.signal.update(value)

	var out *model.MACD
	if sigOK {
		out = &model.MACD{
			Value:     value,
			Signal:    sig,
			Histogram: value - sig,
		}
		if m.hasPrevValue {
			out.PrevValue = ptr(m.prevValue)
		}
		if m.hasPrevSignal {
			out.PrevSignal = ptr(m.prevSignal)
		}
	}

	m.prevValue, m.hasPrevValue = value, true
	m.prevSignal, m.hasPrevSignal = sig, sigOK
	return out
}
