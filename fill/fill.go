// Package fill simulates order execution mechanics shared by the
// backtest engine and the paper trading engine: slippage, per-market
// commission, lot-size and price-limit validation, and T+N settlement
// lot tracking.
package fill

import (
	"fmt"
	"strings"

	"quantcore/types"
)

// Side distinguishes a buy from a sell for slippage/commission purposes.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// FeeSchedule is one market's commission table.
type FeeSchedule struct {
	MakerBps   float64
	TakerBps   float64
	StampDutyBpsOnSell float64
}

var feeScheduleByMarket = map[types.Market]FeeSchedule{
	types.MarketCrypto:    {MakerBps: 8, TakerBps: 10},
	types.MarketUSEquity:  {MakerBps: 5, TakerBps: 5},
	types.MarketEquity:    {MakerBps: 5, TakerBps: 5},
	types.MarketCommodity: {MakerBps: 6, TakerBps: 6},
	types.MarketHKEquity:  {MakerBps: 5, TakerBps: 5, StampDutyBpsOnSell: 10},
	types.MarketCNAShare:  {MakerBps: 3, TakerBps: 3, StampDutyBpsOnSell: 10},
}

func scheduleFor(market types.Market) FeeSchedule {
	if sched, ok := feeScheduleByMarket[market]; ok {
		return sched
	}
	return feeScheduleByMarket[types.MarketEquity]
}

// Slippage returns the slipped fill price and the (always positive)
// slippage cost for a trade at price with the given side and bps.
func Slippage(price float64, side Side, bps float64) (fillPrice, slippageCost float64) {
	adj := price * bps / 10000
	if side == Buy {
		return price + adj, adj
	}
	return price - adj, adj
}

// Commission computes the commission for a fill. Maker is false by
// default (taker is the default side per spec); zero notional always
// yields zero commission.
func Commission(market types.Market, side Side, notional float64, maker bool) float64 {
	if notional == 0 {
		return 0
	}
	sched := scheduleFor(market)
	bps := sched.TakerBps
	if maker {
		bps = sched.MakerBps
	}
	commission := notional * bps / 10000
	if side == Sell {
		commission += notional * sched.StampDutyBpsOnSell / 10000
	}
	return commission
}

// LotRule is a market's lot-size constraint.
type LotRule struct {
	MinLot             float64
	BuyMustBeMultiple  bool
	SellMustBeMultiple bool
}

var lotRuleByMarket = map[types.Market]LotRule{
	types.MarketCrypto:    {MinLot: 0},
	types.MarketUSEquity:  {MinLot: 1},
	types.MarketEquity:    {MinLot: 1},
	types.MarketCommodity: {MinLot: 1},
	types.MarketHKEquity:  {MinLot: 100, BuyMustBeMultiple: true},
	types.MarketCNAShare:  {MinLot: 100, BuyMustBeMultiple: true},
}

// ValidateLot checks a proposed order quantity against its market's
// lot-size rule. minLot is declared for US equity but not enforced per
// spec; HK/CN enforce a 100-multiple on buys only.
func ValidateLot(market types.Market, side Side, quantity float64) error {
	rule, ok := lotRuleByMarket[market]
	if !ok {
		rule = lotRuleByMarket[types.MarketEquity]
	}
	if !rule.BuyMustBeMultiple || side != Buy {
		return nil
	}
	if rule.MinLot <= 0 {
		return nil
	}
	remainder := quantity - rule.MinLot*float64(int64(quantity/rule.MinLot))
	if remainder > 1e-9 {
		return fmt.Errorf("quantity %.4f is not a multiple of lot size %.0f for %s", quantity, rule.MinLot, market)
	}
	return nil
}

// ValidatePriceLimit enforces the CN A-share daily price-limit band. All
// other markets are unrestricted. prevClose of 0 means "unknown" and
// skips the check. isST takes priority over the ChiNext/STAR override.
func ValidatePriceLimit(market types.Market, symbol string, price, prevClose float64, isST bool) error {
	if market != types.MarketCNAShare {
		return nil
	}
	if prevClose == 0 {
		return nil
	}
	limitPct := 0.10
	if isST {
		limitPct = 0.05
	} else if isChiNextOrSTAR(symbol) {
		limitPct = 0.20
	}
	upper := prevClose * (1 + limitPct)
	lower := prevClose * (1 - limitPct)
	if price > upper+1e-9 || price < lower-1e-9 {
		return fmt.Errorf("price %.4f outside %.0f%% limit band [%.4f, %.4f] for %s", price, limitPct*100, lower, upper, symbol)
	}
	return nil
}

func isChiNextOrSTAR(symbol string) bool {
	code := symbol
	code = strings.TrimSuffix(code, ".SH")
	code = strings.TrimSuffix(code, ".SZ")
	for _, prefix := range []string{"300", "301", "688", "689"} {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// NewSettlementLot records a buy fill's settlement lot: settlable once
// tPlusDays*86_400_000ms have elapsed from fillTimeMs.
func NewSettlementLot(quantity, entryPrice float64, fillTimeMs int64, tPlusDays int) types.SettlementLot {
	return types.SettlementLot{
		Quantity:       quantity,
		EntryPrice:     entryPrice,
		SettlableAfter: fillTimeMs + int64(tPlusDays)*86_400_000,
	}
}

// ConsumeSettledFIFO consumes quantity from lots in FIFO order, only
// drawing from lots already settlable at nowMs. Returns the updated lot
// slice and an error if the settlable quantity is insufficient; on error
// the original lots are returned unchanged.
func ConsumeSettledFIFO(lots []types.SettlementLot, quantity float64, nowMs int64) ([]types.SettlementLot, error) {
	var settlable float64
	for _, lot := range lots {
		if lot.SettlableAfter <= nowMs {
			settlable += lot.Quantity
		}
	}
	if settlable+1e-9 < quantity {
		return lots, fmt.Errorf("insufficient settled quantity: need %.4f, settlable %.4f", quantity, settlable)
	}
	remaining := quantity
	out := make([]types.SettlementLot, 0, len(lots))
	for _, lot := range lots {
		if remaining <= 1e-9 || lot.SettlableAfter > nowMs {
			out = append(out, lot)
			continue
		}
		if lot.Quantity <= remaining+1e-9 {
			remaining -= lot.Quantity
			continue
		}
		lot.Quantity -= remaining
		remaining = 0
		out = append(out, lot)
	}
	return out, nil
}
