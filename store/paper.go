package store

import (
	"encoding/json"

	"quantcore/types"
)

func (s *Store) initPaperTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS paper_accounts (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS paper_snapshots (
			account_id TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (account_id, timestamp_ms)
		)
	`)
	if err != nil {
		return err
	}
	_, _ = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_paper_snapshots_account ON paper_snapshots(account_id)`)
	return nil
}

// SavePaperAccount upserts one account's full state (positions, orders,
// cash, equity), keyed by account id.
func (s *Store) SavePaperAccount(state types.PaperAccountState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO paper_accounts (id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, state.ID, string(data))
	return err
}

// LoadPaperAccounts returns every persisted paper account, skipping
// corrupted rows.
func (s *Store) LoadPaperAccounts() ([]types.PaperAccountState, error) {
	rows, err := s.db.Query(`SELECT id, data FROM paper_accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.PaperAccountState
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var state types.PaperAccountState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			logCorruptRow("paper_accounts", id, err)
			continue
		}
		out = append(out, state)
	}
	return out, rows.Err()
}

// AppendSnapshot persists one equity snapshot. Retention trimming is the
// in-memory paper.Engine's responsibility; the store keeps the full history
// so a restart can reconstruct more than the engine's 60-snapshot window.
func (s *Store) AppendSnapshot(snap types.EquitySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO paper_snapshots (account_id, timestamp_ms, data)
		VALUES (?, ?, ?)
		ON CONFLICT(account_id, timestamp_ms) DO UPDATE SET data = excluded.data
	`, snap.AccountID, snap.TimestampMs, string(data))
	return err
}

// LoadSnapshots returns an account's snapshots ordered oldest-first,
// skipping corrupted rows.
func (s *Store) LoadSnapshots(accountID string) ([]types.EquitySnapshot, error) {
	rows, err := s.db.Query(`
		SELECT timestamp_ms, data FROM paper_snapshots
		WHERE account_id = ?
		ORDER BY timestamp_ms ASC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.EquitySnapshot
	for rows.Next() {
		var ts int64
		var data string
		if err := rows.Scan(&ts, &data); err != nil {
			return nil, err
		}
		var snap types.EquitySnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			logCorruptRow("paper_snapshots", accountID, err)
			continue
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
