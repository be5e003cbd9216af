// Package registry tracks each strategy's identity, promotion level and
// latest evaluation results. Create assigns L0_INCUBATE; level changes
// are monotonic except toward KILLED.
package registry

import (
	"fmt"
	"sync"

	"quantcore/types"
)

// Registry is a single-writer, multi-reader store of strategy records.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*types.Record
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{records: map[string]*types.Record{}}
}

// Create registers a new strategy definition at L0_INCUBATE.
func (r *Registry) Create(def types.Definition, nowMs int64) (types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[def.ID]; exists {
		return types.Record{}, fmt.Errorf("registry: strategy %q already exists", def.ID)
	}
	rec := types.Record{
		ID:         def.ID,
		Name:       def.Name,
		Version:    def.Version,
		Level:      types.LevelIncubate,
		Status:     types.StatusRunning,
		Definition: def,
		CreatedAt:  nowMs,
		UpdatedAt:  nowMs,
	}
	r.records[def.ID] = &rec
	return rec, nil
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id string) (types.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("registry: unknown strategy %q", id)
	}
	return *rec, nil
}

// List returns all records, optionally filtered to a single level.
func (r *Registry) List(level *types.Level) []types.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Record, 0, len(r.records))
	for _, rec := range r.records {
		if level != nil && rec.Level != *level {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// UpdateLevel moves a strategy's level. Any transition toward KILLED is
// always legal; otherwise the target level's ladder rank must be >= the
// current rank (demotions are rejected as a precondition failure).
func (r *Registry) UpdateLevel(id string, level types.Level, nowMs int64) (types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("registry: unknown strategy %q", id)
	}
	if level != types.LevelKilled && rec.Level == types.LevelKilled {
		return types.Record{}, fmt.Errorf("registry: strategy %q is killed, terminal", id)
	}
	if level != types.LevelKilled && types.LevelRank(level) < types.LevelRank(rec.Level) {
		return types.Record{}, fmt.Errorf("registry: illegal demotion %s -> %s for %q", rec.Level, level, id)
	}
	rec.Level = level
	rec.UpdatedAt = nowMs
	return *rec, nil
}

// UpdateStatus sets a strategy's run status without touching its level.
func (r *Registry) UpdateStatus(id string, status types.Status, nowMs int64) (types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("registry: unknown strategy %q", id)
	}
	rec.Status = status
	rec.UpdatedAt = nowMs
	return *rec, nil
}

// UpdateBacktest replaces the last backtest result.
func (r *Registry) UpdateBacktest(id string, result types.BacktestResult, nowMs int64) (types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("registry: unknown strategy %q", id)
	}
	rec.LastBacktest = &result
	rec.UpdatedAt = nowMs
	return *rec, nil
}

// UpdateWalkForward replaces the last walk-forward result.
func (r *Registry) UpdateWalkForward(id string, result types.WalkForwardResult, nowMs int64) (types.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return types.Record{}, fmt.Errorf("registry: unknown strategy %q", id)
	}
	rec.LastWalkForward = &result
	rec.UpdatedAt = nowMs
	return *rec, nil
}

// LoadBestEffort replaces the registry's contents with recs. A single
// corrupted record set (signaled by the caller passing a load error)
// resets the registry to empty rather than failing, per spec.md §4.6.
func (r *Registry) LoadBestEffort(recs []types.Record, loadErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loadErr != nil {
		r.records = map[string]*types.Record{}
		return
	}
	r.records = make(map[string]*types.Record, len(recs))
	for i := range recs {
		rec := recs[i]
		r.records[rec.ID] = &rec
	}
}
