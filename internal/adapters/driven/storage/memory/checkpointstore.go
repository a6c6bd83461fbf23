package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is an in-memory implementation of driven.CheckpointStore.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[domain.EntityType]domain.SyncCheckpoint
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		checkpoints: make(map[domain.EntityType]domain.SyncCheckpoint),
	}
}

// Seed copies checkpoints into the store, replacing existing ones.
// Used to run a dry run from real checkpoint state.
func (s *CheckpointStore) Seed(checkpoints []domain.SyncCheckpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cp := range checkpoints {
		s.checkpoints[cp.EntityType] = cp
	}
}

// Get returns the checkpoint for an entity type.
func (s *CheckpointStore) Get(_ context.Context, entity domain.EntityType) (*domain.SyncCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[entity]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cp, nil
}

// Upsert applies a partial update, creating the checkpoint if missing.
func (s *CheckpointStore) Upsert(_ context.Context, entity domain.EntityType, update domain.CheckpointUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.checkpoints[entity]
	if !ok {
		cp = domain.NewCheckpoint(entity)
	}
	cp.Apply(update)
	s.checkpoints[entity] = cp
	return nil
}

// List returns all checkpoints ordered by entity type.
func (s *CheckpointStore) List(_ context.Context) ([]domain.SyncCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncCheckpoint, 0, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b domain.SyncCheckpoint) int {
		switch {
		case a.EntityType < b.EntityType:
			return -1
		case a.EntityType > b.EntityType:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// EnsureCheckpoints creates idle checkpoints for missing entity types.
func (s *CheckpointStore) EnsureCheckpoints(_ context.Context, entities []domain.EntityType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entities {
		if _, ok := s.checkpoints[e]; !ok {
			s.checkpoints[e] = domain.NewCheckpoint(e)
		}
	}
	return nil
}
