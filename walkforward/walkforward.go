// Package walkforward validates a strategy's out-of-sample robustness by
// splitting bars into W non-overlapping windows, each split 70/30 into a
// train slice and a test slice, run independently through the backtest
// engine.
package walkforward

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"quantcore/backtest"
	"quantcore/stats"
	"quantcore/types"
)

// Config controls window count and the pass/fail threshold.
type Config struct {
	Windows   int
	Threshold float64 // defaults to 0.6 when zero
}

const trainFraction = 0.7

// Validate splits bars into cfg.Windows equal segments, each split
// 70% train / 30% test, runs the backtest engine on each slice
// independently and reports the aggregate result.
func Validate(ctx context.Context, def types.Definition, bars []types.Bar, backtestCfg backtest.Config, cfg Config) (types.WalkForwardResult, error) {
	if cfg.Windows <= 0 {
		return types.WalkForwardResult{}, fmt.Errorf("walkforward: windows must be positive, got %d", cfg.Windows)
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 0.6
	}
	segSize := len(bars) / cfg.Windows
	if segSize < 4 {
		return types.WalkForwardResult{}, fmt.Errorf("walkforward: not enough bars (%d) for %d windows", len(bars), cfg.Windows)
	}

	windows := make([]types.WalkForwardWindow, cfg.Windows)
	testReturns := make([][]float64, cfg.Windows)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Windows; w++ {
		w := w
		segStart := w * segSize
		segEnd := segStart + segSize
		if w == cfg.Windows-1 {
			segEnd = len(bars)
		}
		trainEnd := segStart + int(float64(segEnd-segStart)*trainFraction)
		if trainEnd <= segStart || trainEnd >= segEnd {
			return types.WalkForwardResult{}, fmt.Errorf("walkforward: window %d too small to split train/test", w)
		}

		g.Go(func() error {
			trainBars := bars[segStart:trainEnd]
			testBars := bars[trainEnd:segEnd]

			trainResult, err := backtest.Run(gctx, def, trainBars, backtestCfg)
			if err != nil {
				return fmt.Errorf("window %d train: %w", w, err)
			}
			testResult, err := backtest.Run(gctx, def, testBars, backtestCfg)
			if err != nil {
				return fmt.Errorf("window %d test: %w", w, err)
			}

			windows[w] = types.WalkForwardWindow{
				TrainStart:  trainBars[0].TimestampMs,
				TrainEnd:    trainBars[len(trainBars)-1].TimestampMs,
				TestStart:   testBars[0].TimestampMs,
				TestEnd:     testBars[len(testBars)-1].TimestampMs,
				TrainSharpe: trainResult.Sharpe,
				TestSharpe:  testResult.Sharpe,
			}
			testReturns[w] = testResult.DailyReturns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.WalkForwardResult{}, err
	}

	var avgTrainSharpe float64
	var combinedTest []float64
	for w, win := range windows {
		avgTrainSharpe += win.TrainSharpe
		combinedTest = append(combinedTest, testReturns[w]...)
	}
	avgTrainSharpe /= float64(cfg.Windows)
	combinedTestSharpe := stats.Sharpe(combinedTest)

	ratio := 0.0
	if avgTrainSharpe != 0 {
		ratio = combinedTestSharpe / avgTrainSharpe
	}

	return types.WalkForwardResult{
		Passed:             ratio >= threshold,
		Windows:            windows,
		CombinedTestSharpe: stats.Finite(combinedTestSharpe),
		AvgTrainSharpe:      stats.Finite(avgTrainSharpe),
		Ratio:               stats.Finite(ratio),
		Threshold:           threshold,
	}, nil
}
