package model

import "math"

// Bar represents a single OHLCV candle. Timestamp is the open time in
// milliseconds since the Unix epoch.
type Bar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Valid reports whether every price and the volume are finite and non-negative.
func (b Bar) Valid() bool {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// SanitizeBars returns the bars that form a strictly increasing, finite series,
// together with the number of bars that were dropped. A bar whose timestamp
// does not advance past the last accepted bar is dropped. The input slice is
// not modified.
func SanitizeBars(bars []Bar) ([]Bar, int) {
	clean := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Valid() {
			continue
		}
		if n := len(clean); n > 0 && b.Timestamp <= clean[n-1].Timestamp {
			continue
		}
		clean = append(clean, b)
	}
	return clean, len(bars) - len(clean)
}

// Closes extracts the close prices of a bar series
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
