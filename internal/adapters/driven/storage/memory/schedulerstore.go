package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
type SchedulerStore struct {
	mu      sync.RWMutex
	tasks   map[string]domain.ScheduledTask
	results []domain.TaskResult
}

// NewSchedulerStore creates a new in-memory scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{
		tasks: make(map[string]domain.ScheduledTask),
	}
}

// GetTask retrieves a task, or nil if it does not exist.
func (s *SchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// ListTasks returns all tasks ordered by ID.
func (s *SchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScheduledTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.ScheduledTask) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// SaveTask creates or updates a task.
func (s *SchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

// RecordResult logs a task execution result.
func (s *SchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, *result)
	return nil
}

// GetTaskHistory returns recent results for a task, most recent first.
func (s *SchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TaskResult
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].TaskID != taskID {
			continue
		}
		out = append(out, s.results[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// PruneHistory keeps the most recent 'keep' results per task.
func (s *SchedulerStore) PruneHistory(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	var kept []domain.TaskResult
	for i := len(s.results) - 1; i >= 0; i-- {
		r := s.results[i]
		if counts[r.TaskID] < keep {
			kept = append(kept, r)
			counts[r.TaskID]++
		}
	}
	slices.Reverse(kept)
	s.results = kept
	return nil
}
