package model

import (
	"math"
	"testing"
)

func TestSanitizeBars(t *testing.T) {
	good := func(ts int64) Bar {
		return Bar{Timestamp: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	}
	nanClose := good(3)
	nanClose.Close = math.NaN()
	negVolume := good(4)
	negVolume.Volume = -1
	infHigh := good(5)
	infHigh.High = math.Inf(1)

	tests := []struct {
		name        string
		bars        []Bar
		wantTimes   []int64
		wantDropped int
	}{
		{
			name:        "already clean",
			bars:        []Bar{good(1), good(2), good(3)},
			wantTimes:   []int64{1, 2, 3},
			wantDropped: 0,
		},
		{
			name:        "duplicate and out-of-order timestamps",
			bars:        []Bar{good(1), good(2), good(2), good(1), good(3)},
			wantTimes:   []int64{1, 2, 3},
			wantDropped: 2,
		},
		{
			name:        "non-finite and negative values",
			bars:        []Bar{good(1), nanClose, negVolume, infHigh, good(6)},
			wantTimes:   []int64{1, 6},
			wantDropped: 3,
		},
		{
			name:        "empty",
			bars:        nil,
			wantTimes:   nil,
			wantDropped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := SanitizeBars(tt.bars)
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %d, want %d", dropped, tt.wantDropped)
			}
			if len(got) != len(tt.wantTimes) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantTimes))
			}
			for i, b := range got {
				if b.Timestamp != tt.wantTimes[i] {
					t.Errorf("bar %d timestamp = %d, want %d", i, b.Timestamp, tt.wantTimes[i])
				}
			}
		})
	}
}

func TestSanitizeBarsDoesNotModifyInput(t *testing.T) {
	in := []Bar{{Timestamp: 2, Close: 1}, {Timestamp: 1, Close: 1}, {Timestamp: 3, Close: 1}}
	SanitizeBars(in)
	if in[0].Timestamp != 2 || in[1].Timestamp != 1 || in[2].Timestamp != 3 {
		t.Errorf("input modified: %+v", in)
	}
}

func TestMACDCrossedAbove(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		macd *MACD
		want bool
	}{
		{"nil", nil, false},
		{"crossed", &MACD{Value: 1, Signal: 0.5, PrevValue: f(0.4), PrevSignal: f(0.5)}, true},
		{"touching then above", &MACD{Value: 1, Signal: 0.5, PrevValue: f(0.5), PrevSignal: f(0.5)}, true},
		{"already above", &MACD{Value: 1, Signal: 0.5, PrevValue: f(0.6), PrevSignal: f(0.5)}, false},
		{"below", &MACD{Value: 0.4, Signal: 0.5, PrevValue: f(0.3), PrevSignal: f(0.5)}, false},
		{"missing previous signal", &MACD{Value: 1, Signal: 0.5, PrevValue: f(0.4)}, false},
	}
	for _, tt := range tests {
		if got := tt.macd.CrossedAbove(); got != tt.want {
			t.Errorf("%s: CrossedAbove() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
