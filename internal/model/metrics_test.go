package model

import (
	"math"
	"strings"
	"testing"
)

func TestPerformanceSummaryMarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		summary PerformanceSummary
		want    []string
	}{
		{
			name:    "infinite profit factor",
			summary: PerformanceSummary{ProfitFactor: math.Inf(1), Trades: 2, Wins: 2, WinRate: 1},
			want:    []string{`"profit_factor":"Inf"`, `"trades":2`, `"win_rate":1`},
		},
		{
			name:    "negative infinity and NaN",
			summary: PerformanceSummary{CAGR: math.Inf(-1), Sharpe: math.NaN()},
			want:    []string{`"cagr":"-Inf"`, `"sharpe":null`},
		},
		{
			name:    "finite values",
			summary: PerformanceSummary{TotalReturn: 0.25, ProfitFactor: 1.5, AvgLoss: -10},
			want:    []string{`"total_return":0.25`, `"profit_factor":1.5`, `"avg_loss":-10`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.summary.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(data), w) {
					t.Errorf("%s missing %s", data, w)
				}
			}
		})
	}
}
