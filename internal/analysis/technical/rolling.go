package technical

// slidingWindow keeps a running sum and sum of squares over the last size
// values so the mean and variance never rescan the window. The sums are
// rebuilt from the buffer once per full rotation to stop rounding drift, and a
// window holding one repeated value reports that value exactly.
type slidingWindow struct {
	size  int
	buf   []float64
	next  int
	count int
	sum   float64
	sumSq float64
	run   int // trailing values equal to the latest one
}

func newSlidingWindow(size int) *slidingWindow {
	return &slidingWindow{size: size, buf: make([]float64, size)}
}

func (w *slidingWindow) push(v float64) {
	if w.count > 0 && w.buf[w.latest()] == v {
		w.run++
	} else {
		w.run = 1
	}

	if w.count == w.size {
		old := w.buf[w.next]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.buf[w.next] = v
	w.sum += v
	w.sumSq += v * v
	w.next = (w.next + 1) % w.size

	if w.next == 0 {
		w.resum()
	}
}

func (w *slidingWindow) latest() int {
	return (w.next - 1 + w.size) % w.size
}

func (w *slidingWindow) resum() {
	w.sum, w.sumSq = 0, 0
	for _, v := range w.buf[:w.count] {
		w.sum += v
		w.sumSq += v * v
	}
}

func (w *slidingWindow) full() bool {
	return w.count == w.size
}

func (w *slidingWindow) flat() bool {
	return w.run >= w.size
}

func (w *slidingWindow) mean() float64 {
	if w.flat() {
		return w.buf[w.latest()]
	}
	return w.sum / float64(w.size)
}

// variance returns the population variance, clamped at zero against rounding
func (w *slidingWindow) variance() float64 {
	if w.flat() {
		return 0
	}
	m := w.mean()
	v := w.sumSq/float64(w.size) - m*m
	if v < 0 {
		return 0
	}
	return v
}

// seedMean averages the first period samples of a recursive average. A run of
// identical samples averages to that sample exactly.
type seedMean struct {
	period int
	n      int
	sum    float64
	first  float64
	same   bool
}

func (s *seedMean) add(v float64) (float64, bool) {
	if s.n == 0 {
		s.first, s.same = v, true
	} else if v != s.first {
		s.same = false
	}
	s.n++
	s.sum += v
	if s.n < s.period {
		return 0, false
	}
	if s.same {
		return s.first, true
	}
	return s.sum / float64(s.period), true
}

func (s *seedMean) done() bool {
	return s.n >= s.period
}

// ema is seeded with the simple average of its first period inputs and then
// updated incrementally. The update is written as a step toward the input so
// an input equal to the current value leaves it unchanged.
type ema struct {
	seed  seedMean
	alpha float64
	value float64
}

func newEMA(period int) *ema {
	return &ema{seed: seedMean{period: period}, alpha: 2.0 / float64(period+1)}
}

func (e *ema) update(v float64) (float64, bool) {
	if !e.seed.done() {
		avg, ok := e.seed.add(v)
		if ok {
			e.value = avg
		}
		return e.value, ok
	}
	e.value += e.alpha * (v - e.value)
	return e.value, true
}

// wilder is Wilder's smoothing: the first value is the simple mean of period
// samples, then avg = avg + (sample - avg) / period.
type wilder struct {
	seed  seedMean
	value float64
}

func newWilder(period int) *wilder {
	return &wilder{seed: seedMean{period: period}}
}

func (w *wilder) update(v float64) (float64, bool) {
	if !w.seed.done() {
		avg, ok := w.seed.add(v)
		if ok {
			w.value = avg
		}
		return w.value, ok
	}
	w.value += (v - w.value) / float64(w.seed.period)
	return w.value, true
}
