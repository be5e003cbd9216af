// Package allocator computes per-strategy capital allocations from
// fitness scores via a capped Half-Kelly scheme, grouping correlated
// strategies via union-find to avoid over-concentrating exposure.
package allocator

import (
	"fmt"

	"quantcore/types"
)

// Candidate is one eligible strategy's allocator input.
type Candidate struct {
	StrategyID      string
	Level           types.Level
	Fitness         float64
	PaperDaysActive int
	Sharpe          *float64
}

// Constraints bounds the allocator's output.
type Constraints struct {
	CashReservePct      float64
	MaxSingleStrategyPct float64
	MaxTotalExposurePct float64
	RebalanceFrequency  string
}

// Allocation is one strategy's resulting capital assignment.
type Allocation struct {
	StrategyID string
	CapitalUsd float64
	WeightPct  float64
	Reason     string
}

// Eligible filters candidates to L2_PAPER/L3_LIVE strategies with
// positive fitness, per spec.md §4.8.
func Eligible(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if (c.Level == types.LevelPaper || c.Level == types.LevelLive) && c.Fitness > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Allocate runs the 5-step Half-Kelly algorithm and returns one
// allocation per candidate in the same order.
func Allocate(candidates []Candidate, totalCapital float64, constraints Constraints, correlations map[[2]string]float64) ([]Allocation, error) {
	if totalCapital < 0 {
		return nil, fmt.Errorf("allocator: negative total capital %.2f", totalCapital)
	}
	n := len(candidates)
	if n == 0 {
		return nil, nil
	}

	var fitnessSum float64
	for _, c := range candidates {
		fitnessSum += c.Fitness
	}
	if fitnessSum <= 0 {
		return nil, fmt.Errorf("allocator: non-positive total fitness")
	}

	weights := make([]float64, n)
	for i, c := range candidates {
		weights[i] = (c.Fitness / fitnessSum) * 0.5
	}

	maxSingle := constraints.MaxSingleStrategyPct / 100
	for i, c := range candidates {
		if weights[i] > maxSingle {
			weights[i] = maxSingle
		}
		if c.Level == types.LevelLive && c.PaperDaysActive < 30 && weights[i] > 0.10 {
			weights[i] = 0.10
		}
		if c.Level == types.LevelPaper && weights[i] > 0.15 {
			weights[i] = 0.15
		}
	}

	if correlations != nil {
		applyCorrelationGroupCap(candidates, weights, correlations)
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}
	maxTotal := constraints.MaxTotalExposurePct / 100
	if totalWeight > maxTotal && totalWeight > 0 {
		scale := maxTotal / totalWeight
		for i := range weights {
			weights[i] *= scale
		}
	}

	out := make([]Allocation, n)
	for i, c := range candidates {
		capital := weights[i] * totalCapital
		capCeiling := maxSingle * totalCapital
		if capital > capCeiling {
			capital = capCeiling
		}
		weightPct := round1(weights[i] * 100)
		out[i] = Allocation{
			StrategyID: c.StrategyID,
			CapitalUsd: round2(capital),
			WeightPct:  weightPct,
			Reason:     reason(c, weightPct),
		}
	}
	return out, nil
}

func reason(c Candidate, weightPct float64) string {
	sharpeStr := "n/a"
	if c.Sharpe != nil {
		sharpeStr = fmt.Sprintf("%.2f", *c.Sharpe)
	}
	return fmt.Sprintf("fitness=%.4f, level=%s, weight=%.1f%%, sharpe?=%s", c.Fitness, c.Level, weightPct, sharpeStr)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// unionFind is a minimal disjoint-set used to group strategies whose
// pairwise correlation exceeds the high-correlation threshold.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

const highCorrelationThreshold = 0.7
const correlationGroupCap = 0.4

func applyCorrelationGroupCap(candidates []Candidate, weights []float64, correlations map[[2]string]float64) {
	n := len(candidates)
	idx := make(map[string]int, n)
	for i, c := range candidates {
		idx[c.StrategyID] = i
	}

	uf := newUnionFind(n)
	for pair, rho := range correlations {
		i, iok := idx[pair[0]]
		j, jok := idx[pair[1]]
		if !iok || !jok || i == j {
			continue
		}
		if absf(rho) >= highCorrelationThreshold {
			uf.union(i, j)
		}
	}

	groupTotal := map[int]float64{}
	for i, w := range weights {
		root := uf.find(i)
		groupTotal[root] += w
	}
	for root, total := range groupTotal {
		if total > correlationGroupCap {
			scale := correlationGroupCap / total
			for i := range weights {
				if uf.find(i) == root {
					weights[i] *= scale
				}
			}
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
