package technical

// movingAverage is a simple moving average over a sliding window. It backs
// both the close-price MAs and the volume average.
type movingAverage struct {
	window *slidingWindow
}

func newMovingAverage(period int) *movingAverage {
	return &movingAverage{window: newSlidingWindow(period)}
}

func (m *movingAverage) update(v float64) *float64 {
	m.window.push(v)
	if !m.window.full() {
		return nil
	}
	return ptr(m.window.mean())
}

func ptr(v float64) *float64 {
	return &v
}
