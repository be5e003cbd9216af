package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/types"
)

func TestAddAssignsIncreasingSequenceIDs(t *testing.T) {
	s := New()
	e1 := s.Add(NewEvent{Type: "test", Title: "one"}, 1000)
	e2 := s.Add(NewEvent{Type: "test", Title: "two"}, 1001)
	assert.NotEqual(t, e1.ID, e2.ID)
	assert.Equal(t, types.EventPending, e1.Status)
}

func TestRetentionCapEvictsOldest(t *testing.T) {
	s := New()
	for i := 0; i < retentionCap+10; i++ {
		s.Add(NewEvent{Type: "test"}, int64(i))
	}
	all := s.ListEvents(nil)
	assert.Len(t, all, retentionCap)
	assert.Equal(t, int64(10), all[0].TimestampMs)
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	s := New()
	received := 0
	s.Subscribe(func(e types.AgentEvent) { panic("boom") })
	s.Subscribe(func(e types.AgentEvent) { received++ })
	s.Add(NewEvent{Type: "test"}, 1000)
	assert.Equal(t, 1, received)
}

func TestApproveRejectRequirePending(t *testing.T) {
	s := New()
	e := s.Add(NewEvent{Type: "test"}, 1000)
	require.NoError(t, s.Approve(e.ID, 1001))
	assert.Error(t, s.Approve(e.ID, 1002))

	e2 := s.Add(NewEvent{Type: "test"}, 1003)
	require.NoError(t, s.Reject(e2.ID, "no", 1004))
	assert.Error(t, s.Reject(e2.ID, "no", 1005))
}

func TestApproveAppendsDecisionEvent(t *testing.T) {
	s := New()
	e := s.Add(NewEvent{Type: "test"}, 1000)
	require.NoError(t, s.Approve(e.ID, 1001))

	all := s.ListEvents(nil)
	require.Len(t, all, 2)
	assert.Equal(t, types.EventApproved, all[0].Status)
	assert.Equal(t, "decision", all[1].Type)
	assert.Equal(t, types.EventCompleted, all[1].Status)
}

func TestRejectAppendsDecisionEvent(t *testing.T) {
	s := New()
	e := s.Add(NewEvent{Type: "test"}, 1000)
	require.NoError(t, s.Reject(e.ID, "bad idea", 1001))

	all := s.ListEvents(nil)
	require.Len(t, all, 2)
	assert.Equal(t, types.EventRejected, all[0].Status)
	assert.Equal(t, "decision", all[1].Type)
	assert.Equal(t, "bad idea", all[1].Detail)
}

func TestRestoreResetsToEmptyOnCorruption(t *testing.T) {
	s := New()
	s.Restore(nil, assert.AnError)
	assert.Empty(t, s.ListEvents(nil))
}

func TestRestoreSeedsSequenceCounter(t *testing.T) {
	s := New()
	s.Restore([]types.AgentEvent{{ID: "evt-7-abc", TimestampMs: 1}}, nil)
	e := s.Add(NewEvent{Type: "test"}, 2)
	assert.Contains(t, e.ID, "evt-8-")
}
