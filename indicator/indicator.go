// Package indicator implements the pure numerical primitives of
// quantcore's technical-analysis layer: SMA, EMA, RSI, MACD, Bollinger
// Bands and ATR. Every function returns a slice aligned 1:1 with its
// input series; warm-up positions that have no defined value are filled
// with NaN.
package indicator

import "math"

// NaN is the distinguished not-a-number sentinel used to mark undefined
// warm-up positions.
var NaN = math.NaN()

// SMA is the trailing window mean over period n.
func SMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n <= 0 {
		for i := range out {
			out[i] = NaN
		}
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i < n-1 {
			out[i] = NaN
		} else {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// EMA uses multiplier 2/(n+1), seeded with the SMA of the first n values.
func EMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n <= 0 || len(values) == 0 {
		for i := range out {
			out[i] = NaN
		}
		return out
	}
	mult := 2.0 / (float64(n) + 1.0)
	for i := range out {
		out[i] = NaN
	}
	if len(values) < n {
		return out
	}
	seed := 0.0
	for i := 0; i < n; i++ {
		seed += values[i]
	}
	seed /= float64(n)
	out[n-1] = seed
	prev := seed
	for i := n; i < len(values); i++ {
		prev = (values[i]-prev)*mult + prev
		out[i] = prev
	}
	return out
}

// RSI uses Wilder smoothing over period n. An all-up window saturates at
// 100, an all-down window at 0.
func RSI(closes []float64, n int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = NaN
	}
	if n <= 0 || len(closes) <= n {
		return out
	}
	var gainSum, lossSum float64
	for i := 1; i <= n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}
	avgGain := gainSum / float64(n)
	avgLoss := lossSum / float64(n)
	out[n] = rsiFromAverages(avgGain, avgLoss)

	for i := n + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(n-1) + gain) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + loss) / float64(n)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACDResult bundles the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow) as the MACD line, EMA(signal) of the
// MACD line as the signal line, and MACD - signal as the histogram.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	macdLine := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(emaFast[i]) || math.IsNaN(emaSlow[i]) {
			macdLine[i] = NaN
		} else {
			macdLine[i] = emaFast[i] - emaSlow[i]
		}
	}
	signalLine := emaOverSeries(macdLine, signal)
	hist := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(macdLine[i]) || math.IsNaN(signalLine[i]) {
			hist[i] = NaN
		} else {
			hist[i] = macdLine[i] - signalLine[i]
		}
	}
	return MACDResult{MACD: macdLine, Signal: signalLine, Histogram: hist}
}

// emaOverSeries computes an EMA over a series that may itself start with
// NaN warm-up values (as the MACD line does), seeding once n valid values
// have accumulated.
func emaOverSeries(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = NaN
	}
	if n <= 0 {
		return out
	}
	mult := 2.0 / (float64(n) + 1.0)
	firstValid := -1
	for i, v := range values {
		if !math.IsNaN(v) {
			firstValid = i
			break
		}
	}
	if firstValid < 0 || firstValid+n > len(values) {
		return out
	}
	seed := 0.0
	for i := firstValid; i < firstValid+n; i++ {
		seed += values[i]
	}
	seed /= float64(n)
	seedIdx := firstValid + n - 1
	out[seedIdx] = seed
	prev := seed
	for i := seedIdx + 1; i < len(values); i++ {
		prev = (values[i]-prev)*mult + prev
		out[i] = prev
	}
	return out
}

// BollingerBands is the SMA(n) middle band plus upper/lower bands at
// middle +/- stdDev*sigma (population standard deviation, symmetric
// spread).
type BollingerBands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

func Bollinger(closes []float64, n int, stdDev float64) BollingerBands {
	middle := SMA(closes, n)
	upper := make([]float64, len(closes))
	lower := make([]float64, len(closes))
	for i := range closes {
		if i < n-1 {
			upper[i], lower[i] = NaN, NaN
			continue
		}
		window := closes[i-n+1 : i+1]
		sigma := popStdDev(window, middle[i])
		upper[i] = middle[i] + stdDev*sigma
		lower[i] = middle[i] - stdDev*sigma
	}
	return BollingerBands{Middle: middle, Upper: upper, Lower: lower}
}

func popStdDev(window []float64, mean float64) float64 {
	if len(window) == 0 {
		return NaN
	}
	var sumSq float64
	for _, v := range window {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(window)))
}

// ATR is the true-range, smoothed over n using Wilder's method:
// TR = max(H-L, |H-prevC|, |L-prevC|).
func ATR(highs, lows, closes []float64, n int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = NaN
	}
	if n <= 0 || len(closes) <= n {
		return out
	}
	tr := make([]float64, len(closes))
	tr[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	sum := 0.0
	for i := 1; i <= n; i++ {
		sum += tr[i]
	}
	avg := sum / float64(n)
	out[n] = avg
	for i := n + 1; i < len(closes); i++ {
		avg = (avg*float64(n-1) + tr[i]) / float64(n)
		out[i] = avg
	}
	return out
}
