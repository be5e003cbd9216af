package types

// OrderStatus is the lifecycle state of a paper order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFilled    OrderStatus = "filled"
	OrderCancelled OrderStatus = "cancelled"
	OrderRejected  OrderStatus = "rejected"
)

// OrderSide is buy or sell, independent of the resulting position side.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// PaperOrder is append-only once filled: no field on a filled order is
// ever mutated again.
type PaperOrder struct {
	ID         string
	AccountID  string
	Symbol     string
	Side       OrderSide
	Type       OrderType
	Quantity   float64
	LimitPrice float64
	StopLoss   float64
	TakeProfit float64
	Status     OrderStatus
	FillPrice  float64
	Commission float64
	Slippage   float64
	CreatedAt  int64
	FilledAt   int64
	Reason     string
	StrategyID string
	Market     Market
	RejectMsg  string

	// TPlusDays, SlippageBps and CommissionMaker are carried from the
	// submitting OrderRequest so a pending order retains enough context
	// to be filled correctly on a later tick (see paper.Engine.EvaluatePending).
	TPlusDays       int
	SlippageBps     float64
	CommissionMaker bool
}

// SettlementLot is one buy fill awaiting settlement on a T+N market.
type SettlementLot struct {
	Quantity       float64
	EntryPrice     float64
	SettlableAfter int64 // unix ms
}

// PositionSide distinguishes long and short paper positions.
type PositionSide string

const (
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// PaperPosition is one open position in a paper account.
type PaperPosition struct {
	Symbol        string
	Side          PositionSide
	Quantity      float64
	EntryPrice    float64
	CurrentPrice  float64
	UnrealizedPnL float64
	OpenedAt      int64
	EntryCommission float64
	Lots          []SettlementLot // only on T+N>0 markets
	Market        Market          // carried from the opening order, for closing fills
	TPlusDays     int
	StopLoss      float64
	TakeProfit    float64
}

// PaperAccountState is the full state of one paper trading account.
// Invariant: Equity == Cash + sum(marketValue(position, position.CurrentPrice)).
type PaperAccountState struct {
	ID             string
	Name           string
	InitialCapital float64
	Cash           float64
	Equity         float64
	Positions      []PaperPosition
	Orders         []PaperOrder
	CreatedAt      int64
	UpdatedAt      int64
}

// EquitySnapshot is appended by the paper engine on an externally-driven
// cadence; never deleted below the retention floor.
type EquitySnapshot struct {
	AccountID      string
	TimestampMs    int64
	Equity         float64
	Cash           float64
	PositionsValue float64
	DailyPnL       float64
	DailyPnLPct    float64
}

// DecayLevel classifies a strategy/account's health trend.
type DecayLevel string

const (
	DecayHealthy   DecayLevel = "healthy"
	DecayWarning   DecayLevel = "warning"
	DecayDegrading DecayLevel = "degrading"
	DecayCritical  DecayLevel = "critical"
)

// DecayState is the rolling-statistics health read computed from an
// account's recent equity snapshots.
type DecayState struct {
	Sharpe7           float64
	Sharpe30          float64
	SharpeMomentum    float64
	ConsecutiveLosses int
	CurrentDrawdownPct float64
	PeakEquity        float64
	Level             DecayLevel
}
