package store

import (
	"context"
	"sort"
	"sync"

	"github.com/provenia-labs/proofrun/pkg/orchestrator"
)

// Memory is an in-memory AttemptStore for tests and single-process callers.
type Memory struct {
	mu      sync.RWMutex
	results map[string]*orchestrator.Result
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{results: make(map[string]*orchestrator.Result)}
}

func (m *Memory) Save(_ context.Context, res *orchestrator.Result) error {
	if err := validateForSave(res); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[res.AttemptID] = res
	return nil
}

func (m *Memory) Get(_ context.Context, attemptID string) (*orchestrator.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.results[attemptID]
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]*orchestrator.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*orchestrator.Result, 0, len(m.results))
	for _, res := range m.results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
