package model

import (
	"math"

	"github.com/bytedance/sonic"
)

// PerformanceSummary holds statistics derived from an equity curve and a
// trade log. Ratios are fractions, not percentages.
type PerformanceSummary struct {
	TotalReturn  float64
	CAGR         float64
	MaxDrawdown  float64
	Sharpe       float64
	ProfitFactor float64 // +Inf when there are gains and no losses
	Trades       int
	Wins         int
	Losses       int
	WinRate      float64
	AvgWin       float64
	AvgLoss      float64 // signed, <= 0
	Expectancy   float64
}

type performanceSummaryJSON struct {
	TotalReturn  any     `json:"total_return"`
	CAGR         any     `json:"cagr"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	Sharpe       any     `json:"sharpe"`
	ProfitFactor any     `json:"profit_factor"`
	Trades       int     `json:"trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	Expectancy   float64 `json:"expectancy"`
}

// MarshalJSON writes infinite ratios as "Inf"/"-Inf" and NaN as null, which
// plain JSON numbers cannot express.
func (s PerformanceSummary) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(performanceSummaryJSON{
		TotalReturn:  jsonNumber(s.TotalReturn),
		CAGR:         jsonNumber(s.CAGR),
		MaxDrawdown:  s.MaxDrawdown,
		Sharpe:       jsonNumber(s.Sharpe),
		ProfitFactor: jsonNumber(s.ProfitFactor),
		Trades:       s.Trades,
		Wins:         s.Wins,
		Losses:       s.Losses,
		WinRate:      s.WinRate,
		AvgWin:       s.AvgWin,
		AvgLoss:      s.AvgLoss,
		Expectancy:   s.Expectancy,
	})
}

func jsonNumber(v float64) any {
	switch {
	case math.IsNaN(v):
		return nil
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return v
}
