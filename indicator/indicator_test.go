package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	out := SMA(closes, 3)
	require.Len(t, out, 6)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 5.0, out[5], 1e-9)
}

func TestEMASeedsWithSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	out := EMA(closes, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9) // SMA(1,2,3)
	mult := 2.0 / 4.0
	expected := (closes[3]-out[2])*mult + out[2]
	assert.InDelta(t, expected, out[3], 1e-9)
}

func TestRSIAllUpSaturatesAt100(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	out := RSI(closes, 14)
	assert.InDelta(t, 100.0, out[14], 1e-9)
}

func TestRSIAllDownSaturatesAt0(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(20 - i)
	}
	out := RSI(closes, 14)
	assert.InDelta(t, 0.0, out[14], 1e-9)
}

func TestMACDHistogramIsDifference(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	res := MACD(closes, 12, 26, 9)
	for i := range closes {
		if math.IsNaN(res.MACD[i]) || math.IsNaN(res.Signal[i]) {
			continue
		}
		assert.InDelta(t, res.MACD[i]-res.Signal[i], res.Histogram[i], 1e-9)
	}
}

func TestBollingerBandsStraddleMiddle(t *testing.T) {
	closes := []float64{10, 11, 9, 12, 8, 13, 7, 14, 6, 15}
	bands := Bollinger(closes, 5, 2)
	for i := 4; i < len(closes); i++ {
		assert.True(t, bands.Upper[i] >= bands.Middle[i])
		assert.True(t, bands.Lower[i] <= bands.Middle[i])
	}
}

func TestATRUsesTrueRange(t *testing.T) {
	highs := []float64{10, 11, 12, 11, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23}
	lows := []float64{9, 10, 10, 9, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
	closes := []float64{9.5, 10.5, 11, 10, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22}
	out := ATR(highs, lows, closes, 14)
	require.Len(t, out, 15)
	assert.False(t, math.IsNaN(out[14]))
	assert.Greater(t, out[14], 0.0)
}
