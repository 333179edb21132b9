package sweep

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Backtester/internal/analysis/technical"
	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/backtest"
	"github.com/Alias1177/Backtester/internal/trading/strategy"
)

// Result is one parameter combination and its outcome
type Result struct {
	RunID       string                    `json:"run_id"`
	Strategy    string                    `json:"strategy"`
	Params      map[string]float64        `json:"params"`
	FinalEquity float64                   `json:"final_equity"`
	TradeCount  int                       `json:"trade_count"`
	Metrics     *model.PerformanceSummary `json:"metrics"`
	Backtest    *model.BacktestResult     `json:"-"`
}

// Run backtests every valid combination of grid for the named strategy and
// returns the results ranked by CAGR, best first. Combinations the strategy
// rejects are skipped. Runs execute sequentially and ctx is checked between them.
func Run(ctx context.Context, bars []model.Bar, opts backtest.Options, name string, grid Grid) ([]Result, error) {
	logger := log.With().Str("component", "sweep").Str("strategy", name).Logger()

	clean, dropped := model.SanitizeBars(bars)
	if dropped > 0 {
		logger.Debug().Int("dropped", dropped).Msg("Skipped malformed bars")
	}

	engine := backtest.NewEngine(opts)
	var shared []*model.Snapshot

	combos := grid.Expand()
	results := make([]Result, 0, len(combos))
	skipped := 0

	for _, params := range combos {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		policy, err := strategy.New(name, params)
		if err != nil {
			skipped++
			logger.Debug().Err(err).Interface("params", params).Msg("Skipping invalid combination")
			continue
		}

		var res *model.BacktestResult
		if _, tuned := policy.(strategy.IndicatorTuner); tuned {
			res, err = engine.Run(clean, policy)
		} else {
			if shared == nil {
				shared = technical.CalculateAll(clean, opts.Indicators)
			}
			res, err = engine.RunWithSnapshots(clean, shared, policy)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "running %s", policy.Name())
		}

		results = append(results, Result{
			RunID:       uuid.NewString(),
			Strategy:    res.Strategy,
			Params:      params,
			FinalEquity: res.FinalEquity,
			TradeCount:  res.TradeCount,
			Metrics:     backtest.CalculatePerformanceMetrics(res.EquityCurve, res.TradeLog),
			Backtest:    res,
		})
	}

	if len(results) == 0 {
		return nil, errors.Errorf("no valid parameter combinations for %s (%d rejected)", name, skipped)
	}

	Rank(results)
	logger.Info().Int("runs", len(results)).Int("skipped", skipped).Str("best", results[0].Strategy).Msg("Sweep finished")
	return results, nil
}

// Rank sorts results by CAGR descending. Results without metrics go last and
// ties keep their input order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return cagr(results[i]) > cagr(results[j])
	})
}

func cagr(r Result) float64 {
	if r.Metrics == nil || math.IsNaN(r.Metrics.CAGR) {
		return math.Inf(-1)
	}
	return r.Metrics.CAGR
}
