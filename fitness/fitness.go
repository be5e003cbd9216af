// Package fitness scores strategies into a composite number used for
// ranking and capital allocation, and builds the leaderboard from those
// scores.
package fitness

import (
	"fmt"
	"sort"

	"quantcore/types"
)

// WindowScore is sharpe - |maxDrawdown|, a depth-penalized per-window
// score.
func WindowScore(sharpe, maxDrawdownPct float64) float64 {
	return sharpe - abs(maxDrawdownPct)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Input is the scored statistics feeding CompositeFitness. Paper is
// optional (nil when the strategy has no paper track record yet).
type Input struct {
	Recent           WindowStats
	LongTerm         WindowStats
	Paper            *WindowStats
	CorrelationWithPortfolio float64
	DaysSinceInception       float64
	Level            types.Level
	WalkForwardPassed bool
}

// WindowStats is the sharpe/drawdown pair scored for one evaluation
// window (recent, long-term or paper).
type WindowStats struct {
	Sharpe         float64
	MaxDrawdownPct float64
}

// CompositeFitness blends recent/long-term/(optional paper) window
// scores and subtracts decay, overfit, correlation and half-life
// penalties.
func CompositeFitness(in Input) float64 {
	recentScore := WindowScore(in.Recent.Sharpe, in.Recent.MaxDrawdownPct)
	longTermScore := WindowScore(in.LongTerm.Sharpe, in.LongTerm.MaxDrawdownPct)

	var base float64
	if in.Paper != nil {
		paperScore := WindowScore(in.Paper.Sharpe, in.Paper.MaxDrawdownPct)
		base = 0.5*paperScore + 0.35*recentScore + 0.15*longTermScore
	} else {
		base = 0.7*recentScore + 0.3*longTermScore
	}

	decayPenalty := max0(in.LongTerm.Sharpe-in.Recent.Sharpe) * 0.3

	overfitBaseline := in.Recent.Sharpe
	if in.Paper != nil {
		overfitBaseline = in.Paper.Sharpe
	}
	overfitPenalty := max0(in.Recent.Sharpe-overfitBaseline) * 0.5

	correlationPenalty := in.CorrelationWithPortfolio * 0.2

	halfLifePenalty := 0.0
	if in.DaysSinceInception > 180 {
		halfLifePenalty = 0.1 * (in.DaysSinceInception - 180) / 365
	}

	return base - decayPenalty - overfitPenalty - correlationPenalty - halfLifePenalty
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// confidenceMultiplier maps a ladder level to its leaderboard confidence
// weighting, with a bonus for a passed walk-forward validation.
func confidenceMultiplier(level types.Level, walkForwardPassed bool) float64 {
	base := 0.1
	switch level {
	case types.LevelBacktest:
		base = 0.3
	case types.LevelPaper:
		base = 0.7
	case types.LevelLive:
		base = 1.0
	}
	if walkForwardPassed {
		base += 0.1
	}
	return base
}

// Entry is one leaderboard row.
type Entry struct {
	StrategyID string
	Level      types.Level
	Fitness    float64
	Multiplier float64
	Score      float64
	Rank       int
}

// Profile is one strategy's fitness input bundle, keyed for the
// leaderboard.
type Profile struct {
	StrategyID string
	Input      Input
}

// Rank filters out KILLED and L0_INCUBATE strategies, computes each
// survivor's fitness and confidence-weighted score, and returns entries
// sorted descending by score with 1-indexed ranks.
func Rank(profiles []Profile) []Entry {
	entries := make([]Entry, 0, len(profiles))
	for _, p := range profiles {
		if p.Input.Level == types.LevelKilled || p.Input.Level == types.LevelIncubate {
			continue
		}
		f := CompositeFitness(p.Input)
		mult := confidenceMultiplier(p.Input.Level, p.Input.WalkForwardPassed)
		entries = append(entries, Entry{
			StrategyID: p.StrategyID,
			Level:      p.Input.Level,
			Fitness:    f,
			Multiplier: mult,
			Score:      f * mult,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Reason renders the allocator-facing explanation string for one entry.
func Reason(e Entry, weightPct float64, sharpe *float64) string {
	sharpeStr := "n/a"
	if sharpe != nil {
		sharpeStr = fmt.Sprintf("%.2f", *sharpe)
	}
	return fmt.Sprintf("fitness=%.4f, level=%s, weight=%.1f%%, sharpe?=%s", e.Fitness, e.Level, weightPct, sharpeStr)
}
