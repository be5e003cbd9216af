package walkforward

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/backtest"
	"quantcore/types"
)

func bars(n int) []types.Bar {
	out := make([]types.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price += float64((i%7)-3) * 0.5
		out[i] = types.Bar{TimestampMs: int64(i) * 3_600_000, Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 1000}
	}
	return out
}

func TestValidateWindowsNonOverlapping(t *testing.T) {
	def := types.Definition{ID: "strat-1", Tag: "sma_cross", Symbols: []string{"TEST"}, Params: map[string]float64{"fast": 3, "slow": 5}}
	btCfg := backtest.Config{Capital: 10000, Market: types.MarketCrypto}

	result, err := Validate(context.Background(), def, bars(200), btCfg, Config{Windows: 4})
	require.NoError(t, err)
	require.Len(t, result.Windows, 4)
	for i, w := range result.Windows {
		assert.LessOrEqual(t, w.TrainEnd, w.TestStart)
		if i > 0 {
			assert.Less(t, result.Windows[i-1].TestEnd, w.TrainStart+1)
		}
	}
}

func TestValidatePassedReflectsRatioVsThreshold(t *testing.T) {
	def := types.Definition{ID: "strat-1", Tag: "sma_cross", Symbols: []string{"TEST"}, Params: map[string]float64{"fast": 3, "slow": 5}}
	btCfg := backtest.Config{Capital: 10000, Market: types.MarketCrypto}

	result, err := Validate(context.Background(), def, bars(200), btCfg, Config{Windows: 4, Threshold: 0.6})
	require.NoError(t, err)
	assert.Equal(t, result.Ratio >= 0.6, result.Passed)
}

func TestValidateRejectsTooFewBars(t *testing.T) {
	def := types.Definition{ID: "strat-1", Tag: "sma_cross"}
	btCfg := backtest.Config{Capital: 10000}
	_, err := Validate(context.Background(), def, bars(5), btCfg, Config{Windows: 4})
	assert.Error(t, err)
}
