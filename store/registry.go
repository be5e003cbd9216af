package store

import (
	"encoding/json"

	"quantcore/types"
)

func (s *Store) initRegistryTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS registry_records (
			id TEXT PRIMARY KEY,
			level TEXT NOT NULL,
			status TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}
	_, _ = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_registry_records_level ON registry_records(level)`)
	return nil
}

// SaveRecord upserts the full registry record, keyed by Record.ID.
func (s *Store) SaveRecord(rec types.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO registry_records (id, level, status, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			level = excluded.level,
			status = excluded.status,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, rec.ID, string(rec.Level), string(rec.Status), string(data))
	return err
}

// LoadRecords returns every registry record, skipping any row whose JSON
// blob fails to decode rather than failing the whole load.
func (s *Store) LoadRecords() ([]types.Record, error) {
	rows, err := s.db.Query(`SELECT id, data FROM registry_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			logCorruptRow("registry_records", id, err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
