package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/types"
)

func closesToBars(closes []float64) []types.Bar {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{TimestampMs: int64(i) * 3_600_000, Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return bars
}

func smaCrossDefinition() types.Definition {
	return types.Definition{
		ID:      "strat-1",
		Tag:     "sma_cross",
		Symbols: []string{"TEST"},
		Params:  map[string]float64{"fast": 3, "slow": 5},
	}
}

func TestS1SMAGoldenCrossProducesTrade(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 102, 105, 110, 115, 120, 115, 108, 100, 95, 90}
	bars := closesToBars(closes)
	cfg := Config{Capital: 10000, Market: types.MarketCrypto}

	result, err := Run(context.Background(), smaCrossDefinition(), bars, cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.TotalTrades, 1)
	require.NotEmpty(t, result.Trades)
	assert.Equal(t, "sma_golden_cross", result.Trades[0].Reason)
}

func TestS3CommissionCostDrag(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 102, 105, 110, 115, 120, 115, 108, 100, 95, 90}
	bars := closesToBars(closes)

	noCost := Config{Capital: 10000, Market: types.MarketCrypto}
	withCost := Config{Capital: 10000, Market: types.MarketCrypto, CommissionRate: 0.001, SlippageBps: 5}

	resNoCost, err := Run(context.Background(), smaCrossDefinition(), bars, noCost)
	require.NoError(t, err)
	resWithCost, err := Run(context.Background(), smaCrossDefinition(), bars, withCost)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, resNoCost.FinalEquity, resWithCost.FinalEquity-0.01)
}

func TestEquityCurveLengthMatchesBars(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105, 106}
	bars := closesToBars(closes)
	cfg := Config{Capital: 10000, Market: types.MarketCrypto}

	result, err := Run(context.Background(), smaCrossDefinition(), bars, cfg)
	require.NoError(t, err)
	assert.Len(t, result.EquityCurve, len(bars))
	assert.Len(t, result.DailyReturns, len(bars)-1)
}

func TestEquityCurveNeverNegative(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 102, 105, 110, 115, 120, 115, 108, 100, 95, 90}
	bars := closesToBars(closes)
	cfg := Config{Capital: 10000, Market: types.MarketCrypto, CommissionRate: 0.01, SlippageBps: 50}

	result, err := Run(context.Background(), smaCrossDefinition(), bars, cfg)
	require.NoError(t, err)
	for _, e := range result.EquityCurve {
		assert.GreaterOrEqual(t, e, 0.0)
	}
}

func TestRunRejectsUnknownStrategyTag(t *testing.T) {
	bars := closesToBars([]float64{100, 101, 102})
	def := types.Definition{Tag: "does_not_exist"}
	_, err := Run(context.Background(), def, bars, Config{Capital: 1000})
	assert.Error(t, err)
}

func TestCancellationDiscardsPartialRun(t *testing.T) {
	bars := closesToBars([]float64{100, 101, 102, 103, 104})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, smaCrossDefinition(), bars, Config{Capital: 1000, Market: types.MarketCrypto})
	assert.ErrorIs(t, err, context.Canceled)
}
