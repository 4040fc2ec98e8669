// Package repo provides job persistence: in-memory for CLIs and tests,
// postgres for the API server
package repo

import (
	"context"
	"sync"

	perr "llmo/internal/platform/errors"
	"llmo/internal/services/scan/domain"
)

// Memory is a map-backed JobRepo
type Memory struct {
	mu      sync.RWMutex
	jobs    map[string]domain.Job
	results map[string]domain.Result
}

// NewMemory constructs an empty Memory repo
func NewMemory() *Memory {
	return &Memory{
		jobs:    make(map[string]domain.Job),
		results: make(map[string]domain.Result),
	}
}

// Create implements JobRepo
func (m *Memory) Create(_ context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.jobs[j.ID]; dup {
		return perr.Conflictf("job %s already exists", j.ID)
	}
	m.jobs[j.ID] = *j
	return nil
}

// Update implements JobRepo
func (m *Memory) Update(_ context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; !ok {
		return perr.NotFoundf("job %s", j.ID)
	}
	m.jobs[j.ID] = *j
	return nil
}

// Get implements JobRepo
func (m *Memory) Get(_ context.Context, id string) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, perr.NotFoundf("job %s", id)
	}
	return &j, nil
}

// SaveResult implements JobRepo
func (m *Memory) SaveResult(_ context.Context, r *domain.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.JobID] = *r
	return nil
}

// GetResult implements JobRepo
func (m *Memory) GetResult(_ context.Context, jobID string) (*domain.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[jobID]
	if !ok {
		return nil, perr.NotFoundf("result for job %s", jobID)
	}
	return &r, nil
}
