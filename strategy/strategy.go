// Package strategy defines the pluggable per-bar decision hook
// implemented by concrete trading strategies, plus a tag-keyed registry
// of built-in strategies (Design Note (b)).
package strategy

import (
	"context"

	"quantcore/types"
)

// Context is the read-only view a strategy hook sees for one bar.
type Context struct {
	Bars      []types.Bar
	Closes    []float64
	Highs     []float64
	Lows      []float64
	Portfolio types.PortfolioSnapshot
	Regime    types.Regime
	Memory    types.Memory
}

// Strategy is the capability set a concrete strategy implements. Init
// runs once before the first bar; OnBar runs once per bar and may yield
// a signal; OnDayEnd is optional (a strategy that has nothing to do at
// day boundaries simply no-ops).
type Strategy interface {
	Init(ctx context.Context, def types.Definition) error
	OnBar(ctx context.Context, sc Context) (*types.Signal, error)
	OnDayEnd(ctx context.Context, sc Context) error
}

// Builder constructs a fresh Strategy instance with its default
// parameters; Init then applies the definition's parameters. Registered
// builders are keyed by Definition.Tag.
type Builder func() Strategy

var builders = map[string]Builder{}

// Register adds a builder under tag, overwriting any previous builder
// for the same tag. Called from init() by each built-in strategy file.
func Register(tag string, b Builder) {
	builders[tag] = b
}

// Build constructs a fresh Strategy for tag, or nil if the tag is
// unregistered.
func Build(tag string) Strategy {
	b, ok := builders[tag]
	if !ok {
		return nil
	}
	return b()
}

// Tags lists every registered strategy tag.
func Tags() []string {
	out := make([]string, 0, len(builders))
	for tag := range builders {
		out = append(out, tag)
	}
	return out
}
