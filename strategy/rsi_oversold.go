package strategy

import (
	"context"
	"fmt"

	"quantcore/indicator"
	"quantcore/types"
)

func init() {
	Register("rsi_oversold", func() Strategy { return &RSIOversold{Period: 14, Oversold: 30} })
}

// RSIOversold buys once RSI drops below the oversold threshold and no
// long position is already open. Matches scenario S2 in shape.
type RSIOversold struct {
	Period   int
	Oversold float64
	Symbol   string
}

func (s *RSIOversold) Init(ctx context.Context, def types.Definition) error {
	if v, ok := def.Params["period"]; ok {
		s.Period = int(v)
	}
	if v, ok := def.Params["oversold"]; ok {
		s.Oversold = v
	}
	if s.Period <= 0 {
		return fmt.Errorf("rsi_oversold: invalid period %d", s.Period)
	}
	s.Symbol = "SYMBOL"
	if len(def.Symbols) > 0 {
		s.Symbol = def.Symbols[0]
	}
	return nil
}

func (s *RSIOversold) OnBar(ctx context.Context, sc Context) (*types.Signal, error) {
	i := len(sc.Closes) - 1
	if i <= s.Period {
		return nil, nil
	}
	rsiSeries := indicator.RSI(sc.Closes, s.Period)
	rsiNow := rsiSeries[i]
	if isNaN(rsiNow) {
		return nil, nil
	}

	hasLong := false
	for _, p := range sc.Portfolio.Positions {
		if p.Side == "long" {
			hasLong = true
		}
	}

	if rsiNow < s.Oversold && !hasLong {
		return &types.Signal{
			Action:     types.ActionBuy,
			Symbol:     s.Symbol,
			SizePct:    100,
			OrderType:  types.OrderTypeMarket,
			Reason:     "rsi_oversold",
			Confidence: 0.5,
		}, nil
	}
	return nil, nil
}

func (s *RSIOversold) OnDayEnd(ctx context.Context, sc Context) error { return nil }
