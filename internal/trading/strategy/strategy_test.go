package strategy

import (
	"strings"
	"testing"

	"github.com/Alias1177/Backtester/internal/analysis/technical"
	"github.com/Alias1177/Backtester/internal/model"
)

func f(v float64) *float64 { return &v }

func crossingMACD() *model.MACD {
	return &model.MACD{Value: 1, Signal: 0.5, Histogram: 0.5, PrevValue: f(0.4), PrevSignal: f(0.5)}
}

func TestCrossoverShouldEnter(t *testing.T) {
	c := NewCrossover(DefaultCrossoverConfig())
	base := func() *model.Snapshot {
		return &model.Snapshot{MA5: f(105), MA20: f(100), RSI: f(55), MACD: crossingMACD()}
	}

	tests := []struct {
		name   string
		mutate func(s *model.Snapshot)
		want   bool
	}{
		{"all conditions met", func(s *model.Snapshot) {}, true},
		{"ma5 below ma20", func(s *model.Snapshot) { s.MA5 = f(99) }, false},
		{"rsi overbought", func(s *model.Snapshot) { s.RSI = f(70) }, false},
		{"rsi oversold", func(s *model.Snapshot) { s.RSI = f(30) }, false},
		{"macd already above", func(s *model.Snapshot) { s.MACD.PrevValue = f(0.6) }, false},
		{"macd missing", func(s *model.Snapshot) { s.MACD = nil }, false},
		{"rsi missing", func(s *model.Snapshot) { s.RSI = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)
			if got := c.ShouldEnter(s, 100, 60); got != tt.want {
				t.Errorf("ShouldEnter() = %v, want %v", got, tt.want)
			}
		})
	}
	if c.ShouldEnter(nil, 100, 0) {
		t.Error("ShouldEnter(nil) = true, want false")
	}
}

func TestCrossoverShouldExit(t *testing.T) {
	c := NewCrossover(DefaultCrossoverConfig())
	hold := &model.Snapshot{MA5: f(105), MA20: f(100), RSI: f(55), MACD: crossingMACD()}

	tests := []struct {
		name  string
		snap  *model.Snapshot
		price float64
		want  bool
	}{
		{"hold", hold, 100, false},
		{"stop breached", hold, 95, true},
		{"stop breached without snapshot", nil, 94, true},
		{"macd below signal", &model.Snapshot{MA5: f(105), MA20: f(100), RSI: f(55), MACD: &model.MACD{Value: 0.1, Signal: 0.2}}, 100, true},
		{"rsi overbought", &model.Snapshot{MA5: f(105), MA20: f(100), RSI: f(75), MACD: crossingMACD()}, 100, true},
		{"ma5 under ma20", &model.Snapshot{MA5: f(99), MA20: f(100), RSI: f(55), MACD: crossingMACD()}, 100, true},
	}
	for _, tt := range tests {
		if got := c.ShouldExit(tt.snap, tt.price, 100, 100); got != tt.want {
			t.Errorf("%s: ShouldExit() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTrendFollowing(t *testing.T) {
	p := NewTrendFollowing(DefaultTrendFollowingConfig())
	snap := &model.Snapshot{MA20: f(110), MA50: f(100), ADX: f(15), MACD: &model.MACD{Value: 1, Signal: 0.5}}

	if !p.ShouldEnter(snap, 115, 0) {
		t.Error("ShouldEnter() = false in an uptrend")
	}
	if p.ShouldEnter(snap, 105, 0) {
		t.Error("ShouldEnter() = true with price below MA20")
	}

	strict := NewTrendFollowing(TrendFollowingConfig{StopLoss: 0.05, TrailingStop: 0.03, MinADX: 25, PositionFraction: 1})
	if strict.ShouldEnter(snap, 115, 0) {
		t.Error("ShouldEnter() = true with ADX below the floor")
	}

	if !p.ShouldExit(snap, 120, 100, 124) {
		t.Error("ShouldExit() = false after a 3.2% pullback from the peak")
	}
	if p.ShouldExit(snap, 121, 100, 124) {
		t.Error("ShouldExit() = true within the trailing band")
	}
	if !p.ShouldExit(&model.Snapshot{MA20: f(99), MA50: f(100)}, 101, 100, 101) {
		t.Error("ShouldExit() = false after MA20 fell below MA50")
	}
}

func TestATRBreakout(t *testing.T) {
	b := NewATRBreakout(DefaultATRBreakoutConfig())
	snap := func() *model.Snapshot {
		return &model.Snapshot{
			ATR:           f(2),
			HighestHigh20: f(100),
			ADX:           f(30),
			AvgVolume20:   f(500),
			Bollinger:     &model.Bollinger{Width: 0.02},
			MACD:          &model.MACD{Value: 1, Signal: 0.5},
		}
	}

	tests := []struct {
		name   string
		cfg    ATRBreakoutConfig
		mutate func(s *model.Snapshot)
		price  float64
		want   bool
	}{
		{"breaks out", DefaultATRBreakoutConfig(), func(*model.Snapshot) {}, 103.5, true},
		{"at threshold", DefaultATRBreakoutConfig(), func(*model.Snapshot) {}, 103, false},
		{"too volatile", DefaultATRBreakoutConfig(), func(s *model.Snapshot) { s.Bollinger.Width = 0.08 }, 110, false},
		{"missing atr", DefaultATRBreakoutConfig(), func(s *model.Snapshot) { s.ATR = nil }, 110, false},
		{"missing channel", DefaultATRBreakoutConfig(), func(s *model.Snapshot) { s.HighestHigh20 = nil }, 110, false},
		{"adx filter", ATRBreakoutConfig{BreakoutPeriod: 20, ATRMultiplier: 1.5, VolatilityMax: 0.05, StopATR: 1, MinADX: 40}, func(*model.Snapshot) {}, 110, false},
		{"volume filter", ATRBreakoutConfig{BreakoutPeriod: 20, ATRMultiplier: 1.5, VolatilityMax: 0.05, StopATR: 1, MinAvgVolume: 1000}, func(*model.Snapshot) {}, 110, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snap()
			tt.mutate(s)
			if got := NewATRBreakout(tt.cfg).ShouldEnter(s, tt.price, 0); got != tt.want {
				t.Errorf("ShouldEnter() = %v, want %v", got, tt.want)
			}
		})
	}

	s := snap()
	if got := b.StopPrice(s, 100); got != 98 {
		t.Errorf("StopPrice() = %v, want 98", got)
	}
	if !b.ShouldExit(s, 98, 100, 100) {
		t.Error("ShouldExit() = false at the ATR stop")
	}
	if !b.ShouldExit(s, 104, 100, 104) {
		t.Error("ShouldExit() = false at the ATR target")
	}
	if b.ShouldExit(s, 101, 100, 101) {
		t.Error("ShouldExit() = true between stop and target")
	}

	opts := b.TuneIndicators(technical.DefaultOptions())
	if opts.ChannelPeriod != 20 {
		t.Errorf("ChannelPeriod = %d, want 20", opts.ChannelPeriod)
	}
}

func TestImproved(t *testing.T) {
	p := NewImproved(DefaultImprovedConfig())
	snap := &model.Snapshot{
		MA7:  f(105),
		MA50: f(100),
		RSI:  f(50),
		MACD: &model.MACD{Value: 1, Signal: 0.5, PrevValue: f(0.8)},
	}

	if !p.ShouldEnter(snap, 100, 0) {
		t.Error("ShouldEnter() = false with every filter passing")
	}
	falling := *snap
	falling.MACD = &model.MACD{Value: 1, Signal: 0.5, PrevValue: f(1.2)}
	if p.ShouldEnter(&falling, 100, 0) {
		t.Error("ShouldEnter() = true with falling MACD")
	}

	tests := []struct {
		name  string
		price float64
		peak  float64
		want  bool
	}{
		{"stop loss", 95, 100, true},
		{"take profit", 108, 108, true},
		{"trailing stop", 104, 107.3, true},
		{"hold", 104, 105, false},
	}
	for _, tt := range tests {
		if got := p.ShouldExit(snap, tt.price, 100, tt.peak); got != tt.want {
			t.Errorf("%s: ShouldExit() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLabeled(t *testing.T) {
	labels := map[int64]bool{1000: true, 2000: false}
	l := NewLabeled(labels, DefaultLabeledConfig())
	labels[3000] = true

	tests := []struct {
		ts   int64
		want bool
	}{
		{1000, true},
		{2000, false},
		{3000, false},
		{4000, false},
	}
	for _, tt := range tests {
		if got := l.ShouldEnter(&model.Snapshot{Timestamp: tt.ts}, 100, 0); got != tt.want {
			t.Errorf("ShouldEnter(ts=%d) = %v, want %v", tt.ts, got, tt.want)
		}
	}

	if !l.ShouldExit(nil, 97, 100, 100) {
		t.Error("ShouldExit() = false at the 3% stop")
	}
	if !l.ShouldExit(nil, 106, 100, 106) {
		t.Error("ShouldExit() = false at the 6% target")
	}
	cross := &model.Snapshot{MACD: &model.MACD{Value: -1, Signal: 0}}
	if !l.ShouldExit(cross, 100, 100, 100) {
		t.Error("ShouldExit() = false on MACD below signal")
	}
	noCross := NewLabeled(nil, LabeledConfig{StopLoss: 0.03, TakeProfit: 0.06, PositionFraction: 0.2})
	if noCross.ShouldExit(cross, 100, 100, 100) {
		t.Error("ShouldExit() = true with MACD exits disabled")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		params   map[string]float64
		wantName string
		wantErr  string
	}{
		{"improved defaults", "improved", nil, "improved(ma7-50,rsi35-70,sl0.05,tp0.08)", ""},
		{"improved overrides", "improved", map[string]float64{"maShort": 5, "maLong": 20, "stopLoss": 0.03}, "improved(ma5-20,rsi35-70,sl0.03,tp0.08)", ""},
		{"atr breakout defaults", "atr_breakout", nil, "atr_breakout(p20,k1.5,vol0.05)", ""},
		{"atr breakout overrides", "ATR_Breakout", map[string]float64{"breakoutPeriod": 30, "atrMultiplier": 2}, "atr_breakout(p30,k2,vol0.05)", ""},
		{"crossover", "crossover", map[string]float64{"rsiHigh": 101}, "crossover(rsi30-101,sl0.05)", ""},
		{"trend", "trend", map[string]float64{"minAdx": 20}, "trend(sl0.05,trail0.03,adx20)", ""},
		{"unknown strategy", "martingale", nil, "", "unknown strategy"},
		{"unknown parameter", "crossover", map[string]float64{"leverage": 3}, "", "unknown parameters: leverage"},
		{"ma order", "improved", map[string]float64{"maShort": 50, "maLong": 20}, "", "maShort must be positive and below maLong"},
		{"same resolved ma", "improved", map[string]float64{"maShort": 10, "maLong": 15}, "", "resolve to the same moving average"},
		{"fractional period", "atr_breakout", map[string]float64{"breakoutPeriod": 20.5}, "", "must be an integer"},
		{"fraction out of range", "crossover", map[string]float64{"positionFraction": 1.5}, "", "positionFraction"},
		{"inverted rsi band", "crossover", map[string]float64{"rsiLow": 80}, "", "rsiLow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.strategy, tt.params)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("New() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
			if _, ok := p.(StopLosser); !ok {
				t.Errorf("%T does not implement StopLosser", p)
			}
		})
	}
}

func TestNames(t *testing.T) {
	want := []string{"atr_breakout", "crossover", "improved", "trend"}
	got := Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
