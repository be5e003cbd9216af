// Package paper implements the paper trading engine: order intake
// against an externally-supplied current price, settlement-aware
// position accounting, equity snapshots and decay-state classification.
// Every public operation on one account is atomic under that account's
// mutex and leaves equity == cash + sum(marketValue) true on exit
// (spec.md §5).
package paper

import (
	"fmt"
	"sort"
	"sync"

	"quantcore/fill"
	"quantcore/stats"
	"quantcore/types"
)

const snapshotRetention = 60

// OrderRequest is a caller's order intake payload.
type OrderRequest struct {
	Symbol     string
	Side       types.OrderSide
	Type       types.OrderType
	Quantity   float64
	LimitPrice float64
	StopLoss   float64
	TakeProfit float64
	Reason     string
	StrategyID string
	Market     types.Market
	PrevClose  float64
	IsST       bool
	TPlusDays  int
	SlippageBps float64
	CommissionMaker bool
}

type account struct {
	mu    sync.Mutex
	state types.PaperAccountState
	snaps []types.EquitySnapshot
	peak  float64
}

// Engine owns a set of paper accounts, each independently mutex-guarded.
type Engine struct {
	mu       sync.RWMutex
	accounts map[string]*account
	nextID   int
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{accounts: map[string]*account{}}
}

// Restore seeds the engine from persisted account states and their
// snapshot history, trimming each account's in-memory snapshot window to
// the retention cap and reconstructing peak equity from the restored
// history. Call this once at startup before serving any traffic.
func (e *Engine) Restore(states []types.PaperAccountState, snapshotsByAccount map[string][]types.EquitySnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, st := range states {
		snaps := snapshotsByAccount[st.ID]
		if len(snaps) > snapshotRetention {
			snaps = snaps[len(snaps)-snapshotRetention:]
		}
		peak := st.Equity
		for _, snap := range snaps {
			if snap.Equity > peak {
				peak = snap.Equity
			}
		}
		e.accounts[st.ID] = &account{state: st, snaps: append([]types.EquitySnapshot(nil), snaps...), peak: peak}
	}
}

// CreateAccount opens a new account with the given starting capital.
func CreateAccount(e *Engine, id, name string, capital float64, nowMs int64) (types.PaperAccountState, error) {
	if capital < 0 {
		return types.PaperAccountState{}, fmt.Errorf("paper: negative initial capital %.2f", capital)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.accounts[id]; exists {
		return types.PaperAccountState{}, fmt.Errorf("paper: account %q already exists", id)
	}
	st := types.PaperAccountState{
		ID:             id,
		Name:           name,
		InitialCapital: capital,
		Cash:           capital,
		Equity:         capital,
		CreatedAt:      nowMs,
		UpdatedAt:      nowMs,
	}
	e.accounts[id] = &account{state: st, peak: capital}
	return st, nil
}

func (e *Engine) get(id string) (*account, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a, ok := e.accounts[id]
	if !ok {
		return nil, fmt.Errorf("paper: unknown account %q", id)
	}
	return a, nil
}

// ListAccounts returns every account's current state.
func (e *Engine) ListAccounts() []types.PaperAccountState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]types.PaperAccountState, 0, len(e.accounts))
	for _, a := range e.accounts {
		a.mu.Lock()
		out = append(out, a.state)
		a.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetAccountState returns a copy of the account's current state.
func (e *Engine) GetAccountState(id string) (types.PaperAccountState, error) {
	a, err := e.get(id)
	if err != nil {
		return types.PaperAccountState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, nil
}

// GetOrders returns the account's most recent limit orders (0 means
// unlimited), most recent first.
func (e *Engine) GetOrders(id string, limit int) ([]types.PaperOrder, error) {
	a, err := e.get(id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	orders := a.state.Orders
	if limit > 0 && len(orders) > limit {
		orders = orders[len(orders)-limit:]
	}
	out := make([]types.PaperOrder, len(orders))
	for i, o := range orders {
		out[len(orders)-1-i] = o
	}
	return out, nil
}

// SubmitOrder validates and (if possible) fills req against
// currentPrice, atomically mutating account id's state. The order's
// final status (filled/pending/rejected) is always returned alongside
// the order itself; only a caller error (unknown account) is returned
// as err.
func (e *Engine) SubmitOrder(id string, req OrderRequest, currentPrice float64, nowMs int64) (types.PaperOrder, error) {
	a, err := e.get(id)
	if err != nil {
		return types.PaperOrder{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	order := types.PaperOrder{
		ID:              fmt.Sprintf("ord-%d-%d", len(a.state.Orders)+1, nowMs),
		AccountID:       id,
		Symbol:          req.Symbol,
		Side:            req.Side,
		Type:            req.Type,
		Quantity:        req.Quantity,
		LimitPrice:      req.LimitPrice,
		StopLoss:        req.StopLoss,
		TakeProfit:      req.TakeProfit,
		CreatedAt:       nowMs,
		Reason:          req.Reason,
		StrategyID:      req.StrategyID,
		Market:          req.Market,
		Status:          types.OrderPending,
		TPlusDays:       req.TPlusDays,
		SlippageBps:     req.SlippageBps,
		CommissionMaker: req.CommissionMaker,
	}

	side := fill.Buy
	if req.Side == types.SideSell {
		side = fill.Sell
	}

	if err := fill.ValidateLot(req.Market, side, req.Quantity); err != nil {
		order.Status = types.OrderRejected
		order.RejectMsg = err.Error()
		a.state.Orders = append(a.state.Orders, order)
		return order, nil
	}
	if err := fill.ValidatePriceLimit(req.Market, req.Symbol, currentPrice, req.PrevClose, req.IsST); err != nil {
		order.Status = types.OrderRejected
		order.RejectMsg = err.Error()
		a.state.Orders = append(a.state.Orders, order)
		return order, nil
	}

	shouldFillNow := req.Type == types.OrderTypeMarket
	if req.Type == types.OrderTypeLimit {
		if req.Side == types.SideBuy && currentPrice <= req.LimitPrice {
			shouldFillNow = true
		}
		if req.Side == types.SideSell && currentPrice >= req.LimitPrice {
			shouldFillNow = true
		}
	}

	if !shouldFillNow {
		a.state.Orders = append(a.state.Orders, order)
		return order, nil
	}

	fillResult, rejectReason := a.fill(order, req, currentPrice, nowMs)
	if rejectReason != "" {
		order.Status = types.OrderRejected
		order.RejectMsg = rejectReason
		a.state.Orders = append(a.state.Orders, order)
		return order, nil
	}
	order = fillResult
	a.state.Orders = append(a.state.Orders, order)
	a.state.UpdatedAt = nowMs
	return order, nil
}

func (a *account) findPosition(symbol string) int {
	for i, p := range a.state.Positions {
		if p.Symbol == symbol {
			return i
		}
	}
	return -1
}

// fill executes the accounting for an order that is ready to fill
// immediately. Returns the filled order, or a non-empty rejectReason on
// failure (e.g. insufficient cash, insufficient settled quantity).
func (a *account) fill(order types.PaperOrder, req OrderRequest, currentPrice float64, nowMs int64) (types.PaperOrder, string) {
	fillSide := fill.Buy
	if req.Side == types.SideSell {
		fillSide = fill.Sell
	}
	fillPrice, slippage := fill.Slippage(currentPrice, fillSide, req.SlippageBps)
	notional := req.Quantity * fillPrice
	commission := fill.Commission(req.Market, fillSide, notional, req.CommissionMaker)

	idx := a.findPosition(req.Symbol)

	if req.Side == types.SideBuy {
		if notional+commission > a.state.Cash+1e-6 {
			return order, fmt.Sprintf("insufficient cash: need %.2f, have %.2f", notional+commission, a.state.Cash)
		}
		a.state.Cash -= notional + commission
		lot := fill.NewSettlementLot(req.Quantity, fillPrice, nowMs, req.TPlusDays)
		if idx < 0 {
			pos := types.PaperPosition{
				Symbol:          req.Symbol,
				Side:            types.PositionLong,
				Quantity:        req.Quantity,
				EntryPrice:      fillPrice,
				CurrentPrice:    currentPrice,
				OpenedAt:        nowMs,
				EntryCommission: commission,
				Market:          req.Market,
				TPlusDays:       req.TPlusDays,
				StopLoss:        req.StopLoss,
				TakeProfit:      req.TakeProfit,
			}
			if req.TPlusDays > 0 {
				pos.Lots = []types.SettlementLot{lot}
			}
			a.state.Positions = append(a.state.Positions, pos)
		} else {
			pos := &a.state.Positions[idx]
			totalQty := pos.Quantity + req.Quantity
			pos.EntryPrice = (pos.EntryPrice*pos.Quantity + fillPrice*req.Quantity) / totalQty
			pos.Quantity = totalQty
			pos.EntryCommission += commission
			if req.StopLoss != 0 {
				pos.StopLoss = req.StopLoss
			}
			if req.TakeProfit != 0 {
				pos.TakeProfit = req.TakeProfit
			}
			if req.TPlusDays > 0 {
				pos.Lots = append(pos.Lots, lot)
			}
		}
	} else {
		if idx < 0 || a.state.Positions[idx].Quantity < req.Quantity-1e-9 {
			return order, fmt.Sprintf("insufficient position in %s to sell %.4f", req.Symbol, req.Quantity)
		}
		pos := &a.state.Positions[idx]
		if req.TPlusDays > 0 {
			newLots, err := fill.ConsumeSettledFIFO(pos.Lots, req.Quantity, nowMs)
			if err != nil {
				return order, err.Error()
			}
			pos.Lots = newLots
		}
		a.state.Cash += notional - commission
		pos.Quantity -= req.Quantity
		if pos.Quantity <= 1e-9 {
			a.state.Positions = append(a.state.Positions[:idx], a.state.Positions[idx+1:]...)
		}
	}

	order.Status = types.OrderFilled
	order.FillPrice = fillPrice
	order.Commission = commission
	order.Slippage = slippage
	order.FilledAt = nowMs
	a.recomputeEquity(currentPrice)
	return order, ""
}

func (a *account) recomputeEquity(latestPrice float64) {
	equity := a.state.Cash
	for i := range a.state.Positions {
		p := &a.state.Positions[i]
		if p.Side == types.PositionLong {
			equity += p.Quantity * p.CurrentPrice
		} else {
			equity += p.Quantity * (2*p.EntryPrice - p.CurrentPrice)
		}
	}
	a.state.Equity = equity
}

// UpdatePrices refreshes every held position's CurrentPrice/UnrealizedPnL
// from a price map and recomputes equity, atomically.
func (e *Engine) UpdatePrices(id string, prices map[string]float64) error {
	a, err := e.get(id)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.state.Positions {
		p := &a.state.Positions[i]
		if px, ok := prices[p.Symbol]; ok {
			p.CurrentPrice = px
			if p.Side == types.PositionLong {
				p.UnrealizedPnL = (px - p.EntryPrice) * p.Quantity
			} else {
				p.UnrealizedPnL = (p.EntryPrice - px) * p.Quantity
			}
		}
	}
	var equity float64
	if len(a.state.Positions) == 0 {
		equity = a.state.Cash
	} else {
		equity = a.state.Cash
		for _, p := range a.state.Positions {
			if p.Side == types.PositionLong {
				equity += p.Quantity * p.CurrentPrice
			} else {
				equity += p.Quantity * (2*p.EntryPrice - p.CurrentPrice)
			}
		}
	}
	a.state.Equity = equity
	return nil
}

// EvaluatePending re-evaluates every still-pending limit order and every
// open position's stop-loss/take-profit against prices, filling orders
// whose limit is now satisfied and closing positions whose stop-loss or
// take-profit the current price has crossed (spec.md §4.5). It should be
// called on every price tick, alongside UpdatePrices. Returns the orders
// (submitted limit fills and synthetic stop/take-profit closes) produced
// this call.
func (e *Engine) EvaluatePending(id string, prices map[string]float64, nowMs int64) ([]types.PaperOrder, error) {
	a, err := e.get(id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var acted []types.PaperOrder

	for i := range a.state.Orders {
		order := &a.state.Orders[i]
		if order.Status != types.OrderPending {
			continue
		}
		px, ok := prices[order.Symbol]
		if !ok {
			continue
		}
		satisfied := (order.Side == types.SideBuy && px <= order.LimitPrice) ||
			(order.Side == types.SideSell && px >= order.LimitPrice)
		if !satisfied {
			continue
		}
		req := OrderRequest{
			Symbol:          order.Symbol,
			Side:            order.Side,
			Type:            order.Type,
			Quantity:        order.Quantity,
			LimitPrice:      order.LimitPrice,
			StopLoss:        order.StopLoss,
			TakeProfit:      order.TakeProfit,
			Reason:          order.Reason,
			StrategyID:      order.StrategyID,
			Market:          order.Market,
			TPlusDays:       order.TPlusDays,
			SlippageBps:     order.SlippageBps,
			CommissionMaker: order.CommissionMaker,
		}
		result, rejectReason := a.fill(*order, req, px, nowMs)
		if rejectReason != "" {
			// stays pending; a later tick (more cash freed, lot settled)
			// may satisfy it
			continue
		}
		*order = result
		acted = append(acted, result)
	}

	acted = append(acted, a.evaluateStopsAndTakeProfits(prices, nowMs)...)
	if len(acted) > 0 {
		a.state.UpdatedAt = nowMs
	}
	return acted, nil
}

// evaluateStopsAndTakeProfits closes, at market, any open position whose
// stop-loss or take-profit the corresponding entry in prices has crossed.
// A zero StopLoss/TakeProfit on a position means that trigger is unset.
func (a *account) evaluateStopsAndTakeProfits(prices map[string]float64, nowMs int64) []types.PaperOrder {
	var closed []types.PaperOrder
	i := 0
	for i < len(a.state.Positions) {
		p := a.state.Positions[i]
		px, ok := prices[p.Symbol]
		if !ok {
			i++
			continue
		}

		reason := ""
		switch p.Side {
		case types.PositionLong:
			if p.StopLoss > 0 && px <= p.StopLoss {
				reason = "stop_loss"
			} else if p.TakeProfit > 0 && px >= p.TakeProfit {
				reason = "take_profit"
			}
		case types.PositionShort:
			if p.StopLoss > 0 && px >= p.StopLoss {
				reason = "stop_loss"
			} else if p.TakeProfit > 0 && px <= p.TakeProfit {
				reason = "take_profit"
			}
		}
		if reason == "" {
			i++
			continue
		}

		closingSide := types.SideSell
		if p.Side == types.PositionShort {
			closingSide = types.SideBuy
		}
		req := OrderRequest{
			Symbol:    p.Symbol,
			Side:      closingSide,
			Type:      types.OrderTypeMarket,
			Quantity:  p.Quantity,
			Market:    p.Market,
			TPlusDays: p.TPlusDays,
			Reason:    reason,
		}
		order := types.PaperOrder{
			ID:        fmt.Sprintf("ord-%d-%d", len(a.state.Orders)+1, nowMs),
			AccountID: a.state.ID,
			Symbol:    p.Symbol,
			Side:      closingSide,
			Type:      types.OrderTypeMarket,
			Quantity:  p.Quantity,
			CreatedAt: nowMs,
			Reason:    reason,
			Market:    p.Market,
			Status:    types.OrderPending,
		}
		result, rejectReason := a.fill(order, req, px, nowMs)
		if rejectReason != "" {
			// e.g. quantity not yet settled under T+N; try again next tick
			i++
			continue
		}
		a.state.Orders = append(a.state.Orders, result)
		closed = append(closed, result)
		// a.fill already removed/shrank the position at its own lookup
		// index; re-scan from the same i since the slice shifted.
	}
	return closed
}

// RecordSnapshot appends an equity snapshot on the engine's externally
// driven cadence, updating the running peak equity and retaining at most
// snapshotRetention entries.
func (e *Engine) RecordSnapshot(id string, nowMs int64) (types.EquitySnapshot, error) {
	a, err := e.get(id)
	if err != nil {
		return types.EquitySnapshot{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var positionsValue float64
	for _, p := range a.state.Positions {
		if p.Side == types.PositionLong {
			positionsValue += p.Quantity * p.CurrentPrice
		} else {
			positionsValue += p.Quantity * (2*p.EntryPrice - p.CurrentPrice)
		}
	}

	prevEquity := a.state.InitialCapital
	if len(a.snaps) > 0 {
		prevEquity = a.snaps[len(a.snaps)-1].Equity
	}
	dailyPnL := a.state.Equity - prevEquity
	dailyPnLPct := 0.0
	if prevEquity != 0 {
		dailyPnLPct = dailyPnL / prevEquity * 100
	}

	if a.state.Equity > a.peak {
		a.peak = a.state.Equity
	}

	snap := types.EquitySnapshot{
		AccountID:      id,
		TimestampMs:    nowMs,
		Equity:         a.state.Equity,
		Cash:           a.state.Cash,
		PositionsValue: positionsValue,
		DailyPnL:       dailyPnL,
		DailyPnLPct:    dailyPnLPct,
	}
	a.snaps = append(a.snaps, snap)
	if len(a.snaps) > snapshotRetention {
		a.snaps = a.snaps[len(a.snaps)-snapshotRetention:]
	}
	return snap, nil
}

// GetSnapshots returns the retained equity snapshots for an account.
func (e *Engine) GetSnapshots(id string) ([]types.EquitySnapshot, error) {
	a, err := e.get(id)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.EquitySnapshot, len(a.snaps))
	copy(out, a.snaps)
	return out, nil
}

// GetMetrics computes the account's decay state from up to the last 60
// retained snapshots.
func (e *Engine) GetMetrics(id string) (types.DecayState, error) {
	a, err := e.get(id)
	if err != nil {
		return types.DecayState{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return computeDecayState(a.snaps, a.peak), nil
}

func computeDecayState(snaps []types.EquitySnapshot, peak float64) types.DecayState {
	if len(snaps) < 7 {
		return types.DecayState{Level: types.DecayHealthy, PeakEquity: peak}
	}

	returns := make([]float64, 0, len(snaps))
	for i := 1; i < len(snaps); i++ {
		prev := snaps[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (snaps[i].Equity-prev)/prev)
	}

	last7 := tail(returns, 7)
	last30 := tail(returns, 30)
	sharpe7 := stats.Sharpe(last7)
	sharpe30 := stats.Sharpe(last30)

	var momentum float64
	if abs(sharpe30) < 1e-3 || isNonFinite(sharpe30) {
		momentum = sign(sharpe7)
	} else {
		momentum = sharpe7 / sharpe30
	}

	consecutiveLosses := 0
	for i := len(returns) - 1; i >= 0; i-- {
		if returns[i] < 0 {
			consecutiveLosses++
		} else {
			break
		}
	}

	current := snaps[len(snaps)-1].Equity
	ddPct := 0.0
	if peak > 0 {
		ddPct = (peak - current) / peak * 100
	}

	level := types.DecayHealthy
	switch {
	case momentum < -0.5 || consecutiveLosses >= 7 || ddPct > 25:
		level = types.DecayCritical
	case momentum < 0 || consecutiveLosses >= 5 || ddPct > 15:
		level = types.DecayDegrading
	case momentum < 0.5 || consecutiveLosses >= 3:
		level = types.DecayWarning
	}

	return types.DecayState{
		Sharpe7:            stats.Finite(sharpe7),
		Sharpe30:           stats.Finite(sharpe30),
		SharpeMomentum:     stats.Finite(momentum),
		ConsecutiveLosses:  consecutiveLosses,
		CurrentDrawdownPct: ddPct,
		PeakEquity:         peak,
		Level:              level,
	}
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func isNonFinite(v float64) bool {
	return v != v || v > 1e300 || v < -1e300
}
