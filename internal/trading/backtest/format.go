package backtest

import (
	"fmt"
	"math"

	"github.com/Alias1177/Backtester/internal/model"
)

// FormatResults creates a human-readable summary of a backtest result and its metrics
func (e *Engine) FormatResults(result *model.BacktestResult, summary *model.PerformanceSummary) string {
	if result == nil {
		return "No backtest results available"
	}

	output := "\n===== BACKTEST RESULTS =====\n"
	output += fmt.Sprintf("Strategy: %s\n", result.Strategy)
	output += fmt.Sprintf("Initial capital: %.2f\n", result.InitialCapital)
	output += fmt.Sprintf("Final equity: %.2f\n", result.FinalEquity)
	output += fmt.Sprintf("Total trades: %d\n", result.TradeCount)
	output += fmt.Sprintf("Winning trades: %d (%.2f%%)\n", result.Wins, result.WinRate*100)
	output += fmt.Sprintf("Losing trades: %d\n", result.Losses)
	output += fmt.Sprintf("Maximum drawdown: %.2f%%\n", result.MaxDrawdown*100)

	if summary == nil {
		output += "\nNo bars past warm-up, metrics unavailable\n"
		return output
	}

	output += "\nPerformance metrics:\n"
	output += fmt.Sprintf("- Total return: %s\n", formatPercent(summary.TotalReturn))
	output += fmt.Sprintf("- CAGR: %s\n", formatPercent(summary.CAGR))
	output += fmt.Sprintf("- Sharpe ratio: %.2f\n", summary.Sharpe)
	output += fmt.Sprintf("- Profit factor: %s\n", formatRatio(summary.ProfitFactor))
	output += fmt.Sprintf("- Average win: %.2f\n", summary.AvgWin)
	output += fmt.Sprintf("- Average loss: %.2f\n", summary.AvgLoss)
	output += fmt.Sprintf("- Expectancy: %.2f\n", summary.Expectancy)

	return output
}

func formatPercent(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatRatio(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%.2f", v)
}
