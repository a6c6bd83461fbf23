package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// SyncOrchestrator runs sync sessions against the accounting source.
type SyncOrchestrator interface {
	// PerformFullSync syncs every registered entity type.
	// An empty tenantID uses the configured default tenant.
	//
	// The returned result is never nil when the session was opened. If the
	// source connection fails the session is sealed as error and the result
	// is returned together with an error wrapping domain.ErrSourceConnection.
	PerformFullSync(
		ctx context.Context, initiatedBy, tenantID string, sessionType domain.SessionType,
	) (*domain.SyncResult, error)

	// SyncSpecificEntities syncs the given entity types in dependency order.
	// forceFullSync ignores stored watermarks.
	// Returns domain.ErrUnknownEntityType before opening a session if any
	// entity type is not registered.
	SyncSpecificEntities(
		ctx context.Context, entities []domain.EntityType, initiatedBy, tenantID string, forceFullSync bool,
	) (*domain.SyncResult, error)

	// Status returns the state of the run in progress, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync run in this process.
type SyncStatus struct {
	// Running indicates if a session is in progress.
	Running bool

	// SessionID identifies the running session.
	SessionID string

	// CurrentEntity is the entity type being synced.
	CurrentEntity domain.EntityType

	// StartedAt is when the running session started.
	StartedAt time.Time

	// EntitiesCompleted and EntitiesTotal track progress through the order.
	EntitiesCompleted int
	EntitiesTotal     int

	// RecordsProcessed is the count of records processed so far.
	RecordsProcessed int

	// ErrorCount is the number of entities that have failed so far.
	ErrorCount int
}
