// Package instance persists checklist instances and their append-only notes.
package instance

import (
	"context"
	"sync"

	"duediligence/internal/checklist/models"
	id "duediligence/pkg/domain"
	"duediligence/pkg/platform/sentinel"
)

// PlanFunc validates a batch against the locked instance and returns the
// changes to write.
type PlanFunc func(inst *models.Instance) (*models.ChangeSet, error)

// InMemory serialises updates per store with a mutex; stored instances are
// never handed out, only clones.
type InMemory struct {
	mu        sync.RWMutex
	instances map[id.ChecklistID]*models.Instance
}

func NewInMemory() *InMemory {
	return &InMemory{instances: make(map[id.ChecklistID]*models.Instance)}
}

func (s *InMemory) Create(_ context.Context, inst *models.Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.instances[inst.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.instances[inst.ID] = inst.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, instanceID id.ChecklistID) (*models.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[instanceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return inst.Clone(), nil
}

// Lock is FindByID; the in-memory transaction runner already serialises
// every transaction.
func (s *InMemory) Lock(ctx context.Context, instanceID id.ChecklistID) (*models.Instance, error) {
	return s.FindByID(ctx, instanceID)
}

// Update runs plan against the current instance and applies the resulting
// changes while holding the write lock.
func (s *InMemory) Update(_ context.Context, instanceID id.ChecklistID, plan PlanFunc) (*models.ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.instances[instanceID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := stored.Clone()
	cs, err := plan(working)
	if err != nil {
		return nil, err
	}
	working.Apply(cs)
	s.instances[instanceID] = working
	return cs, nil
}
