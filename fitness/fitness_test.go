package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quantcore/types"
)

func TestCompositeFitnessWithPaperWeighting(t *testing.T) {
	in := Input{
		Recent:   WindowStats{Sharpe: 1.0, MaxDrawdownPct: -5},
		LongTerm: WindowStats{Sharpe: 0.8, MaxDrawdownPct: -8},
		Paper:    &WindowStats{Sharpe: 1.2, MaxDrawdownPct: -3},
	}
	f := CompositeFitness(in)
	// window scores: paper 1.2-3 = -1.8, recent 1-5 = -4, long-term 0.8-8 = -7.2;
	// 0.5*-1.8 + 0.35*-4 + 0.15*-7.2 = -3.38, no penalty applies
	assert.InDelta(t, -3.38, f, 1e-9)
}

func TestCompositeFitnessWithoutPaper(t *testing.T) {
	in := Input{
		Recent:   WindowStats{Sharpe: 1.0, MaxDrawdownPct: -5},
		LongTerm: WindowStats{Sharpe: 0.8, MaxDrawdownPct: -8},
	}
	f := CompositeFitness(in)
	// 0.7*(1-5) + 0.3*(0.8-8) = -2.8 - 2.16 = -4.96, no penalty applies
	assert.InDelta(t, -4.96, f, 1e-9)
}

func TestDecayPenaltyReducesScoreWhenLongTermBeatsRecent(t *testing.T) {
	healthy := CompositeFitness(Input{
		Recent:   WindowStats{Sharpe: 1.0},
		LongTerm: WindowStats{Sharpe: 1.0},
	})
	decaying := CompositeFitness(Input{
		Recent:   WindowStats{Sharpe: 0.2},
		LongTerm: WindowStats{Sharpe: 1.0},
	})
	assert.Less(t, decaying, healthy)
}

func TestRankExcludesKilledAndIncubate(t *testing.T) {
	profiles := []Profile{
		{StrategyID: "dead", Input: Input{Level: types.LevelKilled, Recent: WindowStats{Sharpe: 5}}},
		{StrategyID: "new", Input: Input{Level: types.LevelIncubate, Recent: WindowStats{Sharpe: 5}}},
		{StrategyID: "live", Input: Input{Level: types.LevelLive, Recent: WindowStats{Sharpe: 1}, LongTerm: WindowStats{Sharpe: 1}}},
	}
	entries := Rank(profiles)
	require := assert.New(t)
	require.Len(entries, 1)
	require.Equal("live", entries[0].StrategyID)
	require.Equal(1, entries[0].Rank)
}

func TestRankSortsDescendingByScore(t *testing.T) {
	profiles := []Profile{
		{StrategyID: "low", Input: Input{Level: types.LevelPaper, Recent: WindowStats{Sharpe: 0.5}, LongTerm: WindowStats{Sharpe: 0.5}}},
		{StrategyID: "high", Input: Input{Level: types.LevelLive, Recent: WindowStats{Sharpe: 2}, LongTerm: WindowStats{Sharpe: 2}}},
	}
	entries := Rank(profiles)
	assert.Equal(t, "high", entries[0].StrategyID)
	assert.Equal(t, "low", entries[1].StrategyID)
}
