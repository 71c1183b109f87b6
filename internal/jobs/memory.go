package jobs

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.RWMutex
	store map[string]Job
	now   func() time.Time
}

// NewMemoryStore keeps jobs in process memory. Jobs are lost on restart and
// not shared between processes.
func NewMemoryStore() Store {
	return &memoryStore{store: make(map[string]Job), now: time.Now}
}

func (r *memoryStore) Create(_ context.Context, job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := *job
	j.UpdatedAt = r.now().UTC()
	r.store[j.ID] = j
	job.UpdatedAt = j.UpdatedAt
	return nil
}

func (r *memoryStore) SetStatus(_ context.Context, id string, status Status, outputPath, errText string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.store[id]
	if !ok {
		return ErrNotFound
	}
	j.Status = status
	j.OutputPath = outputPath
	j.Error = errText
	j.UpdatedAt = r.now().UTC()
	r.store[id] = j
	return nil
}

func (r *memoryStore) Get(_ context.Context, id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}
