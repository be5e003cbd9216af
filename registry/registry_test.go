package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantcore/types"
)

func TestCreateAssignsIncubate(t *testing.T) {
	r := New()
	rec, err := r.Create(types.Definition{ID: "s1", Name: "Test"}, 1000)
	require.NoError(t, err)
	assert.Equal(t, types.LevelIncubate, rec.Level)
	assert.Equal(t, types.StatusRunning, rec.Status)
}

func TestUpdateLevelRejectsDemotion(t *testing.T) {
	r := New()
	_, err := r.Create(types.Definition{ID: "s1"}, 1000)
	require.NoError(t, err)
	_, err = r.UpdateLevel("s1", types.LevelPaper, 1001)
	require.NoError(t, err)
	_, err = r.UpdateLevel("s1", types.LevelBacktest, 1002)
	assert.Error(t, err)
}

func TestUpdateLevelAllowsKillFromAnyLevel(t *testing.T) {
	r := New()
	_, err := r.Create(types.Definition{ID: "s1"}, 1000)
	require.NoError(t, err)
	_, err = r.UpdateLevel("s1", types.LevelLive, 1001)
	require.NoError(t, err)
	rec, err := r.UpdateLevel("s1", types.LevelKilled, 1002)
	require.NoError(t, err)
	assert.Equal(t, types.LevelKilled, rec.Level)
}

func TestUpdateLevelKilledIsTerminal(t *testing.T) {
	r := New()
	_, err := r.Create(types.Definition{ID: "s1"}, 1000)
	require.NoError(t, err)
	_, err = r.UpdateLevel("s1", types.LevelKilled, 1001)
	require.NoError(t, err)
	_, err = r.UpdateLevel("s1", types.LevelPaper, 1002)
	assert.Error(t, err)
}

func TestListFiltersByLevel(t *testing.T) {
	r := New()
	_, _ = r.Create(types.Definition{ID: "s1"}, 1000)
	_, _ = r.Create(types.Definition{ID: "s2"}, 1000)
	_, _ = r.UpdateLevel("s2", types.LevelPaper, 1001)

	level := types.LevelPaper
	filtered := r.List(&level)
	require.Len(t, filtered, 1)
	assert.Equal(t, "s2", filtered[0].ID)
}

func TestLoadBestEffortResetsOnCorruption(t *testing.T) {
	r := New()
	_, _ = r.Create(types.Definition{ID: "s1"}, 1000)
	r.LoadBestEffort(nil, assert.AnError)
	assert.Empty(t, r.List(nil))
}
