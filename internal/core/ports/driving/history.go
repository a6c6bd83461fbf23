package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// SyncHistory exposes checkpoints and past sessions.
type SyncHistory interface {
	// Checkpoints returns the state of every registered entity type.
	Checkpoints(ctx context.Context) ([]CheckpointStatus, error)

	// Sessions returns recent sessions, most recent first.
	Sessions(ctx context.Context, limit int) ([]domain.SyncSession, error)

	// Session returns a session and its per-entity logs.
	Session(ctx context.Context, id string) (*SessionDetail, error)

	// CancelSession marks a running session cancelled.
	// Returns domain.ErrSessionSealed if it has already finished.
	CancelSession(ctx context.Context, id string) error
}

// CheckpointStatus is a checkpoint annotated for display.
type CheckpointStatus struct {
	domain.SyncCheckpoint

	// Overdue is true if the entity has not succeeded within its interval.
	Overdue bool

	// NextDueAt is when the entity becomes overdue. Zero if never synced.
	NextDueAt time.Time
}

// SessionDetail is a session plus its log entries.
type SessionDetail struct {
	Session domain.SyncSession
	Logs    []domain.SyncLog
}
