// Package events implements the agent event store: an approval-gated
// log capped to the most recent 500 entries, with a process-lifetime
// monotone id counter restored from persisted ids at startup, and
// fault-isolated subscriber callbacks (Design Note: Event subscribers).
package events

import (
	"fmt"
	"strconv"
	"sync"

	"quantcore/logger"
	"quantcore/types"
)

const retentionCap = 500

// NewEvent is the caller-supplied payload for Add.
type NewEvent struct {
	Type         string
	Title        string
	Detail       string
	Status       types.AgentEventStatus
	ActionParams map[string]string
}

// Subscriber receives every event appended to the store, in the order
// they were added to the store. A panicking subscriber is caught and
// discarded so it cannot corrupt the store for other subscribers.
type Subscriber func(types.AgentEvent)

// Store is the single-writer, multi-reader agent event log.
type Store struct {
	mu          sync.Mutex
	events      []types.AgentEvent
	subscribers []Subscriber
	seq         int
}

// New returns an empty store. If resuming from persisted events, call
// Restore first to seed the sequence counter correctly.
func New() *Store {
	return &Store{}
}

// Restore seeds the store's in-memory trailing window and sequence
// counter from persisted events, per Design Note "Persistence coupling".
// A corrupted persisted set (loadErr != nil) resets to empty.
func (s *Store) Restore(persisted []types.AgentEvent, loadErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if loadErr != nil {
		s.events = nil
		s.seq = 0
		return
	}
	s.events = append([]types.AgentEvent(nil), persisted...)
	if len(s.events) > retentionCap {
		s.events = s.events[len(s.events)-retentionCap:]
	}
	s.seq = maxSeqFromIDs(persisted)
}

func maxSeqFromIDs(evs []types.AgentEvent) int {
	maxSeq := 0
	for _, e := range evs {
		var seq int
		if _, err := fmt.Sscanf(e.ID, "evt-%d-", &seq); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}

// Subscribe registers cb to receive every future appended event.
func (s *Store) Subscribe(cb Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, cb)
}

// Add appends a new event, assigning it id `evt-{seq}-{base36(now)}`,
// evicts the oldest event if the retention cap is exceeded, and notifies
// subscribers in registration order. An empty Status defaults to pending.
func (s *Store) Add(e NewEvent, nowMs int64) types.AgentEvent {
	s.mu.Lock()
	s.seq++
	status := e.Status
	if status == "" {
		status = types.EventPending
	}
	event := types.AgentEvent{
		ID:           fmt.Sprintf("evt-%d-%s", s.seq, strconv.FormatInt(nowMs, 36)),
		Type:         e.Type,
		Title:        e.Title,
		Detail:       e.Detail,
		TimestampMs:  nowMs,
		Status:       status,
		ActionParams: e.ActionParams,
	}
	s.events = append(s.events, event)
	if len(s.events) > retentionCap {
		s.events = s.events[len(s.events)-retentionCap:]
	}
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	for _, sub := range subs {
		notify(sub, event)
	}
	return event
}

func notify(sub Subscriber, event types.AgentEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("events: subscriber panicked: %v", r)
		}
	}()
	sub(event)
}

// ListEvents returns events optionally filtered by status (nil means
// no filter).
func (s *Store) ListEvents(status *types.AgentEventStatus) []types.AgentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.AgentEvent, 0, len(s.events))
	for _, e := range s.events {
		if status != nil && e.Status != *status {
			continue
		}
		out = append(out, e)
	}
	return out
}

// PendingCount returns the number of events still in pending status.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, e := range s.events {
		if e.Status == types.EventPending {
			count++
		}
	}
	return count
}

// Approve transitions a pending event to approved and appends a second,
// system-typed event recording the decision. Approving a non-pending
// event is a precondition failure.
func (s *Store) Approve(id string, nowMs int64) error {
	if err := s.transition(id, types.EventApproved); err != nil {
		return err
	}
	s.Add(NewEvent{
		Type:   "decision",
		Title:  "event approved",
		Detail: id,
		Status: types.EventCompleted,
	}, nowMs)
	return nil
}

// Reject transitions a pending event to rejected, recording reason in
// Detail, and appends a second, system-typed event recording the
// decision.
func (s *Store) Reject(id, reason string, nowMs int64) error {
	s.mu.Lock()
	found := false
	for i := range s.events {
		if s.events[i].ID == id {
			if s.events[i].Status != types.EventPending {
				s.mu.Unlock()
				return fmt.Errorf("events: %q is not pending", id)
			}
			s.events[i].Status = types.EventRejected
			if reason != "" {
				s.events[i].Detail = reason
			}
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return fmt.Errorf("events: unknown event %q", id)
	}
	s.Add(NewEvent{
		Type:   "decision",
		Title:  "event rejected",
		Detail: reason,
		Status: types.EventCompleted,
	}, nowMs)
	return nil
}

// transition flips event id's status from pending to to. The lock is
// released before returning on every path so callers (Approve) can
// safely call Add afterward without deadlocking.
func (s *Store) transition(id string, to types.AgentEventStatus) error {
	s.mu.Lock()
	for i := range s.events {
		if s.events[i].ID == id {
			if s.events[i].Status != types.EventPending {
				s.mu.Unlock()
				return fmt.Errorf("events: %q is not pending", id)
			}
			s.events[i].Status = to
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()
	return fmt.Errorf("events: unknown event %q", id)
}
