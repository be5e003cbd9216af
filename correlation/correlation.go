// Package correlation computes pairwise Pearson correlation between
// strategies' equity-curve daily returns, used by the allocator's
// correlation-group capping and the leaderboard's correlation penalty.
package correlation

import (
	"context"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Series is one strategy's labeled daily-return series.
type Series struct {
	ID      string
	Returns []float64
}

// Pair is one high-correlation result entry.
type Pair struct {
	A   string
	B   string
	Rho float64
}

const highCorrelationThreshold = 0.7

// Matrix is the full symmetric correlation matrix, keyed by strategy id
// on both axes with 1 on the diagonal.
type Matrix map[string]map[string]float64

// Compute runs pairwise Pearson correlation across series concurrently
// (pairs are pure and independent) and returns the full matrix plus the
// list of pairs at |rho| >= 0.7, rounded to 3 decimals.
func Compute(ctx context.Context, series []Series) (Matrix, []Pair, error) {
	n := len(series)
	matrix := make(Matrix, n)
	for _, s := range series {
		matrix[s.ID] = map[string]float64{s.ID: 1}
	}

	type result struct {
		i, j int
		rho  float64
	}
	results := make([]result, 0, n*(n-1)/2)
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			i, j := i, j
			g.Go(func() error {
				rho := pearson(series[i].Returns, series[j].Returns)
				mu.Lock()
				results = append(results, result{i, j, rho})
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var pairs []Pair
	for _, r := range results {
		a, b := series[r.i].ID, series[r.j].ID
		matrix[a][b] = r.rho
		matrix[b][a] = r.rho
		if math.Abs(r.rho) >= highCorrelationThreshold {
			pairs = append(pairs, Pair{A: a, B: b, Rho: round3(r.rho)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return matrix, pairs, nil
}

// pearson computes the Pearson correlation coefficient between two
// equal-or-unequal-length return series truncated to their common
// length. Series shorter than 3 or with zero variance return 0.
func pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 3 {
		return 0
	}
	a, b = a[:n], b[:n]

	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
