// Package store persists registry records, paper-account state, alerts and
// agent events to sqlite, following the teacher's per-entity CRUD-store
// convention (store/tactics.go, SynapseStrike/store/strategy.go): each
// entity gets its own file, its own CREATE TABLE IF NOT EXISTS, and a thin
// set of methods scanning rows into the matching quantcore/types struct. A
// row whose JSON blob fails to unmarshal is logged and skipped rather than
// failing the whole load, so one corrupted record can never take down
// process startup (the registry/events packages reset to empty themselves
// on a hard loadErr; skipping row-by-row here keeps that contract intact
// for the common case of a single damaged row).
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"quantcore/logger"
)

// Store wraps a single sqlite connection shared by every entity store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at path and runs
// every entity's schema migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite: single writer, avoid SQLITE_BUSY

	s := &Store{db: db}
	for _, migrate := range []func() error{
		s.initRegistryTable,
		s.initPaperTables,
		s.initAlertTable,
		s.initEventTable,
	} {
		if err := migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: migrate: %w", err)
		}
	}
	return s, nil
}

// Close closes the underlying sqlite connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func logCorruptRow(table string, id string, err error) {
	logger.Warnf("store: skipping corrupted row in %s (id=%s): %v", table, id, err)
}
