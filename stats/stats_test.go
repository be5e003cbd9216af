package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, Mean(values), 1e-9)
	assert.InDelta(t, 1.5811388, StdDev(values), 1e-6)
}

func TestMeanAndStdDevDegenerateInputsAreNotANumber(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
}

func TestSharpeZeroStdDevEdgeCases(t *testing.T) {
	flatPositive := []float64{0.01, 0.01, 0.01}
	assert.True(t, math.IsInf(Sharpe(flatPositive), 1))

	flatZero := []float64{0, 0, 0}
	assert.Equal(t, 0.0, Sharpe(flatZero))

	flatNegative := []float64{-0.01, -0.01, -0.01}
	assert.True(t, math.IsInf(Sharpe(flatNegative), -1))
}

func TestSortinoIgnoresUpside(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.01, 0.01}
	s := Sortino(returns)
	assert.False(t, math.IsNaN(s))
	assert.Greater(t, s, 0.0)
}

func TestMaxDrawdown(t *testing.T) {
	curve := []float64{100, 110, 90, 95, 120, 80}
	pct, peakIdx, troughIdx := MaxDrawdown(curve)
	assert.InDelta(t, (80.0-120.0)/120.0*100, pct, 1e-9)
	assert.Equal(t, 4, peakIdx)
	assert.Equal(t, 5, troughIdx)
}

func TestCalmarEdgeCases(t *testing.T) {
	assert.True(t, math.IsInf(Calmar(10, 0), 1))
	assert.Equal(t, 0.0, Calmar(-10, 0))
	assert.InDelta(t, 2.0, Calmar(10, -5), 1e-9)
}

func TestProfitFactorEdgeCases(t *testing.T) {
	assert.True(t, math.IsInf(ProfitFactor([]float64{10, 20}), 1))
	assert.Equal(t, 0.0, ProfitFactor([]float64{-10, -20}))
	assert.InDelta(t, 1.5, ProfitFactor([]float64{30, -20}), 1e-9)
}

func TestWinRate(t *testing.T) {
	assert.InDelta(t, 50.0, WinRate([]float64{10, -5, 3, -1}), 1e-9)
	assert.Equal(t, 0.0, WinRate(nil))
}

func TestFiniteCoercesNonFinite(t *testing.T) {
	assert.Equal(t, 0.0, Finite(math.NaN()))
	assert.Equal(t, 0.0, Finite(math.Inf(1)))
	assert.Equal(t, 5.0, Finite(5.0))
}
