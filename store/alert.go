package store

import (
	"encoding/json"

	"quantcore/types"
)

func (s *Store) initAlertTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// SaveAlert upserts one alert's full state, keyed by Alert.ID.
func (s *Store) SaveAlert(a types.Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO alerts (id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, a.ID, string(data))
	return err
}

// LoadAlerts returns every persisted alert, skipping corrupted rows.
func (s *Store) LoadAlerts() ([]types.Alert, error) {
	rows, err := s.db.Query(`SELECT id, data FROM alerts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Alert
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var a types.Alert
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			logCorruptRow("alerts", id, err)
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
