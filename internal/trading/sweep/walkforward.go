package sweep

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Backtester/internal/model"
	"github.com/Alias1177/Backtester/internal/trading/backtest"
	"github.com/Alias1177/Backtester/internal/trading/strategy"
)

// WalkForwardOptions sizes the rolling train/test windows as fractions of the
// whole series. The window advances by the test length.
type WalkForwardOptions struct {
	TrainRatio float64
	TestRatio  float64
	MinBars    int
}

func DefaultWalkForwardOptions() WalkForwardOptions {
	return WalkForwardOptions{TrainRatio: 0.6, TestRatio: 0.2, MinBars: 500}
}

// Fold is one train/test split. Ranges are half-open bar index intervals and
// Test shares the RunID of the training run it evaluates.
type Fold struct {
	TrainStart int    `json:"train_start"`
	TrainEnd   int    `json:"train_end"`
	TestStart  int    `json:"test_start"`
	TestEnd    int    `json:"test_end"`
	TrainRuns  int    `json:"train_runs"`
	Best       Result `json:"best"`
	Test       Result `json:"test"`
}

// WalkForward picks the best grid combination on each training window and
// evaluates it on the following test window.
func WalkForward(ctx context.Context, bars []model.Bar, opts backtest.Options, name string, grid Grid, wf WalkForwardOptions) ([]Fold, error) {
	clean, _ := model.SanitizeBars(bars)
	n := len(clean)
	if n < wf.MinBars {
		return nil, errors.Errorf("walk-forward needs at least %d bars, got %d", wf.MinBars, n)
	}
	if wf.TrainRatio <= 0 || wf.TestRatio <= 0 || wf.TrainRatio+wf.TestRatio > 1 {
		return nil, errors.Errorf("invalid walk-forward ratios %v/%v", wf.TrainRatio, wf.TestRatio)
	}

	trainLen := int(float64(n) * wf.TrainRatio)
	testLen := int(float64(n) * wf.TestRatio)
	if testLen == 0 {
		return nil, errors.Errorf("test window is empty for %d bars", n)
	}

	logger := log.With().Str("component", "walkforward").Str("strategy", name).Logger()
	engine := backtest.NewEngine(opts)

	var folds []Fold
	for start := 0; start+trainLen+testLen <= n; start += testLen {
		fold := Fold{
			TrainStart: start,
			TrainEnd:   start + trainLen,
			TestStart:  start + trainLen,
			TestEnd:    start + trainLen + testLen,
		}

		train, err := Run(ctx, clean[fold.TrainStart:fold.TrainEnd], opts, name, grid)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d training", len(folds))
		}
		fold.Best = train[0]
		fold.TrainRuns = len(train)

		policy, err := strategy.New(name, fold.Best.Params)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		res, err := engine.Run(clean[fold.TestStart:fold.TestEnd], policy)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d test", len(folds))
		}
		fold.Test = Result{
			RunID:       fold.Best.RunID,
			Strategy:    res.Strategy,
			Params:      fold.Best.Params,
			FinalEquity: res.FinalEquity,
			TradeCount:  res.TradeCount,
			Metrics:     backtest.CalculatePerformanceMetrics(res.EquityCurve, res.TradeLog),
			Backtest:    res,
		}

		logger.Info().
			Int("fold", len(folds)).
			Str("best", fold.Best.Strategy).
			Float64("test_final_equity", res.FinalEquity).
			Int("test_trades", res.TradeCount).
			Msg("Walk-forward fold finished")
		folds = append(folds, fold)
	}

	return folds, nil
}
