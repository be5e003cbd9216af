// Package types holds the data model shared across quantcore's packages:
// price bars, strategy definitions, trade records, backtest/walk-forward
// results, paper trading state, strategy records, alerts and agent events.
package types

// Bar is one OHLCV observation at a timeframe. Bars are immutable once
// constructed; callers must not mutate a Bar after it has been appended to
// a history slice.
type Bar struct {
	TimestampMs int64
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
}
