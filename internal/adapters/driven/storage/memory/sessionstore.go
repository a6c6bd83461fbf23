package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// Ensure SessionStore implements the interfaces.
var (
	_ driven.SessionStore = (*SessionStore)(nil)
	_ driven.SyncLogStore = (*SessionStore)(nil)
)

// SessionStore is an in-memory implementation of driven.SessionStore and
// driven.SyncLogStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SyncSession
	logs     map[string]domain.SyncLog
	logOrder []string
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.SyncSession),
		logs:     make(map[string]domain.SyncLog),
	}
}

// CreateSession stores a new running session.
func (s *SessionStore) CreateSession(_ context.Context, session *domain.SyncSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("%w: session %s already exists", domain.ErrInvalidInput, session.ID)
	}
	cp := *session
	cp.TargetEntities = slices.Clone(session.TargetEntities)
	s.sessions[session.ID] = cp
	return nil
}

// SealSession moves a running session to its final status.
func (s *SessionStore) SealSession(_ context.Context, id string, seal domain.SessionSeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	if session.IsSealed() {
		return fmt.Errorf("%w: %s is %s", domain.ErrSessionSealed, id, session.Status)
	}
	session.Apply(seal)
	s.sessions[id] = session
	return nil
}

// UpdateTotals overwrites the run counters of a session.
func (s *SessionStore) UpdateTotals(_ context.Context, id string, totals domain.SessionTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.ApplyTotals(totals)
	s.sessions[id] = session
	return nil
}

// GetSession retrieves a session by ID.
func (s *SessionStore) GetSession(_ context.Context, id string) (*domain.SyncSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// ListSessions returns sessions ordered by start time descending.
func (s *SessionStore) ListSessions(_ context.Context, limit int) ([]domain.SyncSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SyncSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	slices.SortFunc(out, func(a, b domain.SyncSession) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateLog stores a new running log entry.
func (s *SessionStore) CreateLog(_ context.Context, log *domain.SyncLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[log.SyncSessionID]; !ok {
		return fmt.Errorf("session %s: %w", log.SyncSessionID, domain.ErrNotFound)
	}
	s.logs[log.ID] = *log
	s.logOrder = append(s.logOrder, log.ID)
	return nil
}

// CompleteLog records the outcome of a log entry.
func (s *SessionStore) CompleteLog(_ context.Context, id string, completion domain.SyncLogCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.logs[id]
	if !ok {
		return domain.ErrNotFound
	}
	log.Apply(completion)
	s.logs[id] = log
	return nil
}

// ListLogs returns the log entries of a session in creation order.
func (s *SessionStore) ListLogs(_ context.Context, sessionID string) ([]domain.SyncLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.SyncLog
	for _, id := range s.logOrder {
		if log := s.logs[id]; log.SyncSessionID == sessionID {
			out = append(out, log)
		}
	}
	return out, nil
}
