package model

// MACD holds the MACD line, its signal line and the values one bar earlier.
// PrevValue and PrevSignal stay nil until the signal line existed on the
// previous bar.
type MACD struct {
	Value      float64  `json:"macd"`
	Signal     float64  `json:"signal"`
	Histogram  float64  `json:"histogram"`
	PrevValue  *float64 `json:"macd_prev,omitempty"`
	PrevSignal *float64 `json:"signal_prev,omitempty"`
}

// CrossedAbove reports whether the MACD line moved from at or below the signal
// line on the previous bar to strictly above it on this one.
func (m *MACD) CrossedAbove() bool {
	if m == nil || m.PrevValue == nil || m.PrevSignal == nil {
		return false
	}
	return m.Value > m.Signal && *m.PrevValue <= *m.PrevSignal
}

// Bollinger holds Bollinger band levels. Width is the band width relative to
// the middle band.
type Bollinger struct {
	Middle float64 `json:"middle"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
	Width  float64 `json:"width"`
}

// Snapshot holds every indicator known at the close of one bar. A nil field
// has not finished its warm-up yet.
type Snapshot struct {
	Timestamp     int64      `json:"timestamp"`
	MA5           *float64   `json:"ma5,omitempty"`
	MA7           *float64   `json:"ma7,omitempty"`
	MA20          *float64   `json:"ma20,omitempty"`
	MA50          *float64   `json:"ma50,omitempty"`
	RSI           *float64   `json:"rsi,omitempty"`
	MACD          *MACD      `json:"macd,omitempty"`
	Bollinger     *Bollinger `json:"bollinger,omitempty"`
	ATR           *float64   `json:"atr,omitempty"`
	ADX           *float64   `json:"adx,omitempty"`
	HighestHigh20 *float64   `json:"highest_high_20,omitempty"`
	LowestLow20   *float64   `json:"lowest_low_20,omitempty"`
	AvgVolume20   *float64   `json:"avg_volume_20,omitempty"`
	Volume        float64    `json:"volume"`
}
