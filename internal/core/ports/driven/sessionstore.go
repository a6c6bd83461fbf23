package driven

import (
	"context"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// SessionStore persists sync sessions.
type SessionStore interface {
	// CreateSession stores a new running session.
	CreateSession(ctx context.Context, session *domain.SyncSession) error

	// SealSession moves a running session to its final status.
	// Returns domain.ErrSessionSealed if the session is not running and
	// domain.ErrNotFound if it does not exist.
	SealSession(ctx context.Context, id string, seal domain.SessionSeal) error

	// UpdateTotals overwrites the run counters of a session whatever its
	// status. Returns domain.ErrNotFound if it does not exist.
	UpdateTotals(ctx context.Context, id string, totals domain.SessionTotals) error

	// GetSession retrieves a session by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetSession(ctx context.Context, id string) (*domain.SyncSession, error)

	// ListSessions returns sessions ordered by start time descending.
	// A limit of zero or less returns all sessions.
	ListSessions(ctx context.Context, limit int) ([]domain.SyncSession, error)
}

// SyncLogStore persists per-entity audit entries.
type SyncLogStore interface {
	// CreateLog stores a new running log entry.
	CreateLog(ctx context.Context, log *domain.SyncLog) error

	// CompleteLog records the outcome of a log entry.
	// Returns domain.ErrNotFound if it does not exist.
	CompleteLog(ctx context.Context, id string, completion domain.SyncLogCompletion) error

	// ListLogs returns the log entries of a session ordered by start time.
	ListLogs(ctx context.Context, sessionID string) ([]domain.SyncLog, error)
}
