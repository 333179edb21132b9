package backtest

import (
	"math"

	"github.com/Alias1177/Backtester/internal/model"
)

const (
	secondsPerYear     = 365 * 24 * 3600.0
	millisPerYear      = secondsPerYear * 1000
	minYears           = 1e-9
	defaultSampleDelta = 60.0 // seconds, when the curve is too short to infer one
)

// CalculatePerformanceMetrics computes the performance summary of an equity
// curve and its trade log. Only closed trades are counted. It returns nil for
// an empty curve.
func CalculatePerformanceMetrics(curve []model.EquityPoint, trades []model.Trade) *model.PerformanceSummary {
	if len(curve) == 0 {
		return nil
	}

	first, last := curve[0], curve[len(curve)-1]
	summary := &model.PerformanceSummary{}

	if first.Equity != 0 {
		growth := last.Equity / first.Equity
		summary.TotalReturn = growth - 1

		years := math.Max(float64(last.Timestamp-first.Timestamp)/millisPerYear, minYears)
		summary.CAGR = math.Pow(growth, 1/years) - 1
	}

	summary.MaxDrawdown = calculateMaxDrawdown(curve)
	summary.Sharpe = calculateSharpeRatio(curve)
	summarizeTrades(summary, trades)

	return summary
}

// calculateMaxDrawdown scans the curve with a running peak
func calculateMaxDrawdown(curve []model.EquityPoint) float64 {
	maxDrawdown := 0.0
	peak := curve[0].Equity

	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak <= 0 {
			continue
		}
		if drawdown := (peak - p.Equity) / peak; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}

// calculateSharpeRatio annualizes the per-sample simple returns using the
// mean spacing of the curve's timestamps.
func calculateSharpeRatio(curve []model.EquityPoint) float64 {
	var returns []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	delta := defaultSampleDelta
	if len(curve) >= 2 {
		span := float64(curve[len(curve)-1].Timestamp-curve[0].Timestamp) / 1000
		delta = span / float64(len(curve)-1)
	}
	periodsPerYear := secondsPerYear / math.Max(1, delta)

	m := mean(returns)
	sd := stdDev(returns, m)
	if sd == 0 {
		return 0
	}
	return m * math.Sqrt(periodsPerYear) / sd
}

func summarizeTrades(summary *model.PerformanceSummary, trades []model.Trade) {
	var grossProfit, grossLoss, lossSum float64

	for _, t := range trades {
		if !t.Closed() {
			continue
		}
		profit := *t.Profit
		if profit > 0 {
			summary.Wins++
			grossProfit += profit
		} else {
			summary.Losses++
			lossSum += profit
		}
	}
	grossLoss = -lossSum

	summary.Trades = summary.Wins + summary.Losses
	if summary.Trades > 0 {
		summary.WinRate = float64(summary.Wins) / float64(summary.Trades)
	}
	if summary.Wins > 0 {
		summary.AvgWin = grossProfit / float64(summary.Wins)
	}
	if summary.Losses > 0 {
		summary.AvgLoss = lossSum / float64(summary.Losses)
	}

	switch {
	case grossLoss > 0:
		summary.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		summary.ProfitFactor = math.Inf(1)
	}

	summary.Expectancy = summary.AvgWin*summary.WinRate - math.Abs(summary.AvgLoss)*(1-summary.WinRate)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation
func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}
