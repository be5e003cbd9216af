package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRecordRoundTrips(t *testing.T) {
	s := openTestStore(t)
	rec := types.Record{
		ID:     "strat-1",
		Name:   "sma cross",
		Level:  types.LevelPaper,
		Status: types.StatusRunning,
		Definition: types.Definition{
			ID:  "strat-1",
			Tag: "sma_cross",
		},
	}
	require.NoError(t, s.SaveRecord(rec))

	loaded, err := s.LoadRecords()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, rec.ID, loaded[0].ID)
	assert.Equal(t, rec.Level, loaded[0].Level)
}

func TestSaveRecordUpsertsOnConflict(t *testing.T) {
	s := openTestStore(t)
	rec := types.Record{ID: "strat-1", Level: types.LevelIncubate, Status: types.StatusRunning}
	require.NoError(t, s.SaveRecord(rec))

	rec.Level = types.LevelPaper
	require.NoError(t, s.SaveRecord(rec))

	loaded, err := s.LoadRecords()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, types.LevelPaper, loaded[0].Level)
}

func TestLoadRecordsSkipsCorruptedRow(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveRecord(types.Record{ID: "good", Level: types.LevelIncubate}))
	_, err := s.db.Exec(`INSERT INTO registry_records (id, level, status, data) VALUES ('bad', 'x', 'y', '{not json')`)
	require.NoError(t, err)

	loaded, err := s.LoadRecords()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "good", loaded[0].ID)
}

func TestPaperAccountAndSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	state := types.PaperAccountState{ID: "acct-1", Name: "desk", InitialCapital: 1000, Cash: 1000, Equity: 1000}
	require.NoError(t, s.SavePaperAccount(state))

	loaded, err := s.LoadPaperAccounts()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, state.ID, loaded[0].ID)

	snap1 := types.EquitySnapshot{AccountID: "acct-1", TimestampMs: 1000, Equity: 1000}
	snap2 := types.EquitySnapshot{AccountID: "acct-1", TimestampMs: 2000, Equity: 1050}
	require.NoError(t, s.AppendSnapshot(snap2))
	require.NoError(t, s.AppendSnapshot(snap1))

	snaps, err := s.LoadSnapshots("acct-1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(1000), snaps[0].TimestampMs)
	assert.Equal(t, int64(2000), snaps[1].TimestampMs)
}

func TestAlertRoundTrip(t *testing.T) {
	s := openTestStore(t)
	a := types.Alert{ID: "alert-1", Condition: types.Condition{Kind: types.ConditionPriceAbove, Symbol: "BTC", Price: 50000}}
	require.NoError(t, s.SaveAlert(a))

	loaded, err := s.LoadAlerts()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, a.ID, loaded[0].ID)
}

func TestEventRoundTripOrderedByTimestamp(t *testing.T) {
	s := openTestStore(t)
	e1 := types.AgentEvent{ID: "evt-2-a", TimestampMs: 2000, Status: types.EventPending}
	e2 := types.AgentEvent{ID: "evt-1-a", TimestampMs: 1000, Status: types.EventPending}
	require.NoError(t, s.AppendEvent(e1))
	require.NoError(t, s.AppendEvent(e2))

	loaded, err := s.LoadEvents()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "evt-1-a", loaded[0].ID)
	assert.Equal(t, "evt-2-a", loaded[1].ID)
}
