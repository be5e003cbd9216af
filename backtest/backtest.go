// Package backtest runs a strategy bar-by-bar over historical data,
// producing a deterministic BacktestResult with exact cash accounting.
package backtest

import (
	"context"
	"fmt"

	"quantcore/fill"
	"quantcore/stats"
	"quantcore/strategy"
	"quantcore/types"
)

// Config carries the per-run cost model and market class.
type Config struct {
	Capital        float64
	CommissionRate float64 // fraction, e.g. 0.001 = 10bps
	SlippageBps    float64
	Market         types.Market
	TPlusDays      int
}

type openPosition struct {
	symbol          string
	side            types.PositionSide
	quantity        float64
	entryPrice      float64
	entryCommission float64
	entryTime       int64
	stopLoss        float64
	takeProfit      float64
	reason          string
}

// Run executes definition's bound strategy over bars under cfg and
// returns the full report. It is cancellable between bars: a cancelled
// context discards the partial run and returns ctx.Err().
func Run(ctx context.Context, def types.Definition, bars []types.Bar, cfg Config) (types.BacktestResult, error) {
	strat := strategy.Build(def.Tag)
	if strat == nil {
		return types.BacktestResult{}, fmt.Errorf("backtest: unknown strategy tag %q", def.Tag)
	}
	if err := strat.Init(ctx, def); err != nil {
		return types.BacktestResult{}, fmt.Errorf("backtest: init: %w", err)
	}
	if len(bars) == 0 {
		return types.BacktestResult{}, fmt.Errorf("backtest: no bars supplied")
	}

	cash := cfg.Capital
	var position *openPosition
	var trades []types.TradeRecord
	equityCurve := make([]float64, len(bars))
	memory := types.Memory{}

	closes := make([]float64, 0, len(bars))
	highs := make([]float64, 0, len(bars))
	lows := make([]float64, 0, len(bars))

	closePosition := func(exitPrice float64, exitTime int64, exitReason string) {
		if position == nil {
			return
		}
		side := fill.Sell
		if position.side == types.PositionShort {
			side = fill.Buy
		}
		exitFill, exitSlip := fill.Slippage(exitPrice, side, cfg.SlippageBps)
		notional := position.quantity * exitFill
		exitCommission := notional * cfg.CommissionRate

		var rawPnl float64
		if position.side == types.PositionLong {
			rawPnl = (exitFill - position.entryPrice) * position.quantity
			cash += notional - exitCommission
		} else {
			rawPnl = (position.entryPrice - exitFill) * position.quantity
			// covering a short: debit the buy-back notional, credit was
			// taken at entry (short sale proceeds assumed received then)
			cash -= notional + exitCommission
		}
		pnl := rawPnl - exitCommission
		pnlPct := 0.0
		if position.entryPrice*position.quantity != 0 {
			pnlPct = pnl / (position.entryPrice * position.quantity) * 100
		}
		trades = append(trades, types.TradeRecord{
			EntryTime:  position.entryTime,
			ExitTime:   exitTime,
			Symbol:     position.symbol,
			Side:       string(position.side),
			EntryPrice: position.entryPrice,
			ExitPrice:  exitFill,
			Quantity:   position.quantity,
			Commission: position.entryCommission + exitCommission,
			Slippage:   exitSlip,
			PnL:        pnl,
			PnLPct:     pnlPct,
			Reason:     position.reason,
			ExitReason: exitReason,
		})
		position = nil
	}

	openLong := func(symbol string, sizePct float64, midPrice float64, t int64, reason string, stopLoss, takeProfit float64) error {
		fillPrice, _ := fill.Slippage(midPrice, fill.Buy, cfg.SlippageBps)
		targetNotional := cash * sizePct / 100
		if targetNotional <= 0 {
			return nil
		}
		qty := targetNotional / (fillPrice * (1 + cfg.CommissionRate))
		notional := qty * fillPrice
		commission := notional * cfg.CommissionRate
		if notional+commission > cash+1e-6 {
			return fmt.Errorf("insufficient cash: need %.2f, have %.2f", notional+commission, cash)
		}
		cash -= notional + commission
		position = &openPosition{
			symbol:          symbol,
			side:            types.PositionLong,
			quantity:        qty,
			entryPrice:      fillPrice,
			entryCommission: commission,
			entryTime:       t,
			stopLoss:        stopLoss,
			takeProfit:      takeProfit,
			reason:          reason,
		}
		return nil
	}

	for i, bar := range bars {
		select {
		case <-ctx.Done():
			return types.BacktestResult{}, ctx.Err()
		default:
		}

		closes = append(closes, bar.Close)
		highs = append(highs, bar.High)
		lows = append(lows, bar.Low)

		// close-only stop-loss/take-profit evaluation (Open Question (a))
		if position != nil && position.side == types.PositionLong {
			if position.stopLoss > 0 && bar.Close <= position.stopLoss {
				closePosition(bar.Close, bar.TimestampMs, "stop-loss")
			} else if position.takeProfit > 0 && bar.Close >= position.takeProfit {
				closePosition(bar.Close, bar.TimestampMs, "take-profit")
			}
		}

		portfolio := buildPortfolio(cash, position, bar.Close)
		sc := strategy.Context{
			Bars:      bars[:i+1],
			Closes:    closes,
			Highs:     highs,
			Lows:      lows,
			Portfolio: portfolio,
			Regime:    types.RegimeSideways,
			Memory:    memory,
		}
		sig, err := strat.OnBar(ctx, sc)
		if err != nil {
			return types.BacktestResult{}, fmt.Errorf("backtest: onBar at index %d: %w", i, err)
		}
		if sig != nil {
			switch sig.Action {
			case types.ActionClose:
				if position != nil && position.symbol == sig.Symbol {
					closePosition(bar.Close, bar.TimestampMs, "signal-close")
				}
			case types.ActionBuy:
				if position != nil && position.side == types.PositionShort && position.symbol == sig.Symbol {
					closePosition(bar.Close, bar.TimestampMs, "reverse-to-long")
				}
				if position == nil {
					if err := openLong(sig.Symbol, sig.SizePct, bar.Close, bar.TimestampMs, sig.Reason, sig.StopLoss, sig.TakeProfit); err != nil {
						return types.BacktestResult{}, fmt.Errorf("backtest: buy at index %d: %w", i, err)
					}
				}
			case types.ActionSell:
				if position != nil && position.side == types.PositionLong && position.symbol == sig.Symbol {
					closePosition(bar.Close, bar.TimestampMs, "signal-sell")
				}
			}
		}

		equityCurve[i] = equity(cash, position, bar.Close)

		if i == len(bars)-1 || isDayBoundary(bars, i) {
			if err := strat.OnDayEnd(ctx, sc); err != nil {
				return types.BacktestResult{}, fmt.Errorf("backtest: onDayEnd at index %d: %w", i, err)
			}
		}
	}

	lastBar := bars[len(bars)-1]
	if position != nil {
		closePosition(lastBar.Close, lastBar.TimestampMs, "end-of-backtest")
		equityCurve[len(equityCurve)-1] = cash
	}

	dailyReturns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1]
		if prev == 0 {
			dailyReturns = append(dailyReturns, 0)
			continue
		}
		dailyReturns = append(dailyReturns, (equityCurve[i]-prev)/prev)
	}

	pnls := make([]float64, len(trades))
	for i, tr := range trades {
		pnls[i] = tr.PnL
	}
	maxDD, _, _ := stats.MaxDrawdown(equityCurve)
	totalReturnPct := 0.0
	if cfg.Capital != 0 {
		totalReturnPct = (cash - cfg.Capital) / cfg.Capital * 100
	}

	result := types.BacktestResult{
		StrategyID:     def.ID,
		StartDate:      bars[0].TimestampMs,
		EndDate:        lastBar.TimestampMs,
		InitialCapital: cfg.Capital,
		FinalEquity:    stats.Finite(cash),
		TotalReturnPct: stats.Finite(totalReturnPct),
		Sharpe:         stats.Finite(stats.Sharpe(dailyReturns)),
		Sortino:        stats.Finite(stats.Sortino(dailyReturns)),
		MaxDrawdownPct: stats.Finite(maxDD),
		Calmar:         stats.Finite(stats.Calmar(totalReturnPct, maxDD)),
		WinRatePct:     stats.Finite(stats.WinRate(pnls)),
		ProfitFactor:   stats.Finite(stats.ProfitFactor(pnls)),
		TotalTrades:    len(trades),
		Trades:         trades,
		EquityCurve:    equityCurve,
		DailyReturns:   dailyReturns,
	}
	return result, nil
}

func buildPortfolio(cash float64, position *openPosition, currentPrice float64) types.PortfolioSnapshot {
	p := types.PortfolioSnapshot{Cash: cash}
	if position != nil {
		p.Positions = []types.PositionSnapshot{{
			Symbol:       position.symbol,
			Side:         string(position.side),
			Quantity:     position.quantity,
			EntryPrice:   position.entryPrice,
			CurrentPrice: currentPrice,
		}}
	}
	p.Equity = equity(cash, position, currentPrice)
	return p
}

func equity(cash float64, position *openPosition, price float64) float64 {
	e := cash
	if position != nil {
		if position.side == types.PositionLong {
			e += position.quantity * price
		} else {
			e += position.quantity * (2*position.entryPrice - price)
		}
	}
	return e
}

func isDayBoundary(bars []types.Bar, i int) bool {
	if i+1 >= len(bars) {
		return false
	}
	const dayMs = 86_400_000
	return bars[i].TimestampMs/dayMs != bars[i+1].TimestampMs/dayMs
}
