package store

import (
	"encoding/json"

	"quantcore/types"
)

func (s *Store) initEventTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS agent_events (
			id TEXT PRIMARY KEY,
			timestamp_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			data TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, _ = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_agent_events_status ON agent_events(status)`)
	return nil
}

// AppendEvent persists one agent event. Events are append-only from the
// store's point of view; status transitions (Approve/Reject) call
// SaveEvent to overwrite the row in place.
func (s *Store) AppendEvent(e types.AgentEvent) error {
	return s.SaveEvent(e)
}

// SaveEvent upserts one agent event, keyed by AgentEvent.ID.
func (s *Store) SaveEvent(e types.AgentEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO agent_events (id, timestamp_ms, status, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			timestamp_ms = excluded.timestamp_ms,
			status = excluded.status,
			data = excluded.data
	`, e.ID, e.TimestampMs, string(e.Status), string(data))
	return err
}

// LoadEvents returns every persisted agent event ordered oldest-first,
// skipping corrupted rows. Callers pass the result to events.Store.Restore,
// which itself trims to the retention window and seeds the sequence
// counter.
func (s *Store) LoadEvents() ([]types.AgentEvent, error) {
	rows, err := s.db.Query(`SELECT id, data FROM agent_events ORDER BY timestamp_ms ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.AgentEvent
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var e types.AgentEvent
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			logCorruptRow("agent_events", id, err)
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
