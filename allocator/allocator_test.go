package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/types"
)

func TestS4HalfKellyAllocation(t *testing.T) {
	candidates := []Candidate{
		{StrategyID: "s1", Level: types.LevelLive, Fitness: 3.0, PaperDaysActive: 365},
		{StrategyID: "s2", Level: types.LevelLive, Fitness: 2.5, PaperDaysActive: 365},
		{StrategyID: "s3", Level: types.LevelLive, Fitness: 2.0, PaperDaysActive: 365},
	}
	constraints := Constraints{CashReservePct: 30, MaxSingleStrategyPct: 30, MaxTotalExposurePct: 70}

	allocs, err := Allocate(candidates, 100000, constraints, nil)
	require.NoError(t, err)
	require.Len(t, allocs, 3)
	assert.Greater(t, allocs[0].CapitalUsd, allocs[1].CapitalUsd)
	assert.Greater(t, allocs[1].CapitalUsd, allocs[2].CapitalUsd)

	var total float64
	for _, a := range allocs {
		total += a.CapitalUsd
	}
	assert.LessOrEqual(t, total, 70000.0+1.0)
}

func TestS5GroupCorrelationCap(t *testing.T) {
	candidates := []Candidate{
		{StrategyID: "s1", Level: types.LevelLive, Fitness: 1.0, PaperDaysActive: 365},
		{StrategyID: "s2", Level: types.LevelLive, Fitness: 1.0, PaperDaysActive: 365},
		{StrategyID: "s3", Level: types.LevelLive, Fitness: 1.0, PaperDaysActive: 365},
	}
	constraints := Constraints{MaxSingleStrategyPct: 100, MaxTotalExposurePct: 100}

	noCorr, err := Allocate(candidates, 100000, constraints, nil)
	require.NoError(t, err)

	corr := map[[2]string]float64{
		{"s1", "s2"}: 0.9,
		{"s1", "s3"}: 0.1,
		{"s2", "s3"}: 0.2,
	}
	withCorr, err := Allocate(candidates, 100000, constraints, corr)
	require.NoError(t, err)

	sumPair := func(allocs []Allocation) float64 {
		var sum float64
		for _, a := range allocs {
			if a.StrategyID == "s1" || a.StrategyID == "s2" {
				sum += a.CapitalUsd
			}
		}
		return sum
	}
	assert.LessOrEqual(t, sumPair(withCorr), sumPair(noCorr)+0.01)
}

func TestEligibleFiltersLevelAndFitness(t *testing.T) {
	candidates := []Candidate{
		{StrategyID: "incubate", Level: types.LevelIncubate, Fitness: 5},
		{StrategyID: "negative", Level: types.LevelPaper, Fitness: -1},
		{StrategyID: "ok", Level: types.LevelPaper, Fitness: 1},
	}
	eligible := Eligible(candidates)
	require.Len(t, eligible, 1)
	assert.Equal(t, "ok", eligible[0].StrategyID)
}

func TestAllocatorCapsNewL3AndL2(t *testing.T) {
	candidates := []Candidate{
		{StrategyID: "new-l3", Level: types.LevelLive, Fitness: 10, PaperDaysActive: 5},
		{StrategyID: "l2", Level: types.LevelPaper, Fitness: 10, PaperDaysActive: 365},
	}
	constraints := Constraints{MaxSingleStrategyPct: 100, MaxTotalExposurePct: 100}
	allocs, err := Allocate(candidates, 100000, constraints, nil)
	require.NoError(t, err)
	for _, a := range allocs {
		if a.StrategyID == "new-l3" {
			assert.LessOrEqual(t, a.WeightPct, 10.0+0.05)
		}
		if a.StrategyID == "l2" {
			assert.LessOrEqual(t, a.WeightPct, 15.0+0.05)
		}
	}
}
