package strategy

import (
	"context"
	"fmt"

	"quantcore/indicator"
	"quantcore/types"
)

func init() {
	Register("sma_cross", func() Strategy { return &SMACross{Fast: 3, Slow: 5} })
}

// SMACross buys on a fast-over-slow SMA golden cross and closes on the
// reverse death cross. Matches scenario S1 in shape.
type SMACross struct {
	Fast   int
	Slow   int
	Symbol string
}

func (s *SMACross) Init(ctx context.Context, def types.Definition) error {
	if v, ok := def.Params["fast"]; ok {
		s.Fast = int(v)
	}
	if v, ok := def.Params["slow"]; ok {
		s.Slow = int(v)
	}
	if s.Fast <= 0 || s.Slow <= 0 || s.Fast >= s.Slow {
		return fmt.Errorf("sma_cross: invalid periods fast=%d slow=%d", s.Fast, s.Slow)
	}
	s.Symbol = "SYMBOL"
	if len(def.Symbols) > 0 {
		s.Symbol = def.Symbols[0]
	}
	return nil
}

func (s *SMACross) OnBar(ctx context.Context, sc Context) (*types.Signal, error) {
	i := len(sc.Closes) - 1
	if i < s.Slow {
		return nil, nil
	}
	fastSeries := indicator.SMA(sc.Closes, s.Fast)
	slowSeries := indicator.SMA(sc.Closes, s.Slow)
	fastNow, slowNow := fastSeries[i], slowSeries[i]
	fastPrev, slowPrev := fastSeries[i-1], slowSeries[i-1]
	if isNaN(fastNow) || isNaN(slowNow) || isNaN(fastPrev) || isNaN(slowPrev) {
		return nil, nil
	}

	hasLong := false
	for _, p := range sc.Portfolio.Positions {
		if p.Side == "long" {
			hasLong = true
		}
	}

	crossedUp := fastPrev <= slowPrev && fastNow > slowNow
	crossedDown := fastPrev >= slowPrev && fastNow < slowNow

	switch {
	case crossedUp && !hasLong:
		return &types.Signal{
			Action:     types.ActionBuy,
			Symbol:     s.Symbol,
			SizePct:    100,
			OrderType:  types.OrderTypeMarket,
			Reason:     "sma_golden_cross",
			Confidence: 0.6,
		}, nil
	case crossedDown && hasLong:
		return &types.Signal{
			Action:     types.ActionClose,
			Symbol:     s.Symbol,
			OrderType:  types.OrderTypeMarket,
			Reason:     "sma_death_cross",
			Confidence: 0.6,
		}, nil
	}
	return nil, nil
}

func (s *SMACross) OnDayEnd(ctx context.Context, sc Context) error { return nil }

func isNaN(f float64) bool { return f != f }
