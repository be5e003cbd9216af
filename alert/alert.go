// Package alert evaluates edge-triggered price/P&L alerts against
// externally-pushed ticks, emitting a completed agent event on first
// satisfaction.
package alert

import (
	"fmt"
	"sync"

	"quantcore/events"
	"quantcore/types"
)

// Store is a single-writer, multi-reader alert registry.
type Store struct {
	mu     sync.Mutex
	alerts map[string]*types.Alert
	events *events.Store
}

// New returns an empty alert store that emits completed agent events to
// the given event store on trigger.
func New(eventStore *events.Store) *Store {
	return &Store{alerts: map[string]*types.Alert{}, events: eventStore}
}

// Create registers a new, untriggered alert.
func (s *Store) Create(id string, cond types.Condition, message string, nowMs int64) types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := types.Alert{ID: id, Condition: cond, CreatedAt: nowMs, Message: message}
	s.alerts[id] = &a
	return a
}

// Rearm resets an alert to untriggered so it can fire again.
func (s *Store) Rearm(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return fmt.Errorf("alert: unknown alert %q", id)
	}
	a.TriggeredAt = 0
	a.Notified = false
	return nil
}

// Tick is one externally-pushed price/pnl observation, evaluated against
// every untriggered alert whose condition it can satisfy.
type Tick struct {
	Symbol    string
	Price     float64
	AccountID string
	PnLPct    float64
}

// Evaluate checks tick against every untriggered alert. On first
// satisfaction it sets TriggeredAt/Notified and emits a completed agent
// event; the alert never re-fires until Rearm is called.
func (s *Store) Evaluate(tick Tick, nowMs int64) []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var triggered []types.Alert
	for _, a := range s.alerts {
		if a.TriggeredAt != 0 {
			continue
		}
		if !satisfied(a.Condition, tick) {
			continue
		}
		a.TriggeredAt = nowMs
		a.Notified = true
		triggered = append(triggered, *a)
		if s.events != nil {
			s.events.Add(events.NewEvent{
				Type:   "alert_triggered",
				Title:  fmt.Sprintf("Alert %s triggered", a.ID),
				Detail: a.Message,
				Status: types.EventCompleted,
			}, nowMs)
		}
	}
	return triggered
}

func satisfied(cond types.Condition, tick Tick) bool {
	switch cond.Kind {
	case types.ConditionPriceAbove:
		return tick.Symbol == cond.Symbol && tick.Price > cond.Price
	case types.ConditionPriceBelow:
		return tick.Symbol == cond.Symbol && tick.Price < cond.Price
	case types.ConditionPnLThreshold:
		return tick.AccountID == cond.AccountID && tick.PnLPct >= cond.PnLPct
	default:
		return false
	}
}

// List returns every alert, triggered or not.
func (s *Store) List() []types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out
}
