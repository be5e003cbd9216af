package types

// ConditionKind distinguishes the three alert condition shapes.
type ConditionKind string

const (
	ConditionPriceAbove  ConditionKind = "price_above"
	ConditionPriceBelow  ConditionKind = "price_below"
	ConditionPnLThreshold ConditionKind = "pnl_threshold"
)

// Condition is an alert's typed trigger payload.
type Condition struct {
	Kind      ConditionKind
	Symbol    string  // for price_above / price_below
	Price     float64 // for price_above / price_below
	AccountID string  // for pnl_threshold
	PnLPct    float64 // for pnl_threshold
}

// Alert is edge-triggered: it transitions to triggered at most once per
// rearm (Rearm resets TriggeredAt/Notified to allow it to fire again).
type Alert struct {
	ID          string
	Condition   Condition
	CreatedAt   int64
	TriggeredAt int64 // 0 if never triggered
	Notified    bool
	Message     string
}

// AgentEventStatus is the approval lifecycle of an agent event.
type AgentEventStatus string

const (
	EventPending   AgentEventStatus = "pending"
	EventApproved  AgentEventStatus = "approved"
	EventRejected  AgentEventStatus = "rejected"
	EventCompleted AgentEventStatus = "completed"
)

// AgentEvent is one entry in the approval-gated agent event log.
type AgentEvent struct {
	ID           string
	Type         string
	Title        string
	Detail       string
	TimestampMs  int64
	Status       AgentEventStatus
	ActionParams map[string]string
}
