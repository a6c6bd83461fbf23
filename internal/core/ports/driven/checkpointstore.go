package driven

import (
	"context"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// CheckpointStore persists one SyncCheckpoint per entity type.
type CheckpointStore interface {
	// Get returns the checkpoint for an entity type.
	// Returns domain.ErrNotFound if none exists.
	Get(ctx context.Context, entity domain.EntityType) (*domain.SyncCheckpoint, error)

	// Upsert applies a partial update, creating the checkpoint if missing.
	// Nil fields are left untouched. Delta fields are added atomically.
	// LastSuccessfulSyncAt never moves backward.
	Upsert(ctx context.Context, entity domain.EntityType, update domain.CheckpointUpdate) error

	// List returns all checkpoints ordered by entity type.
	List(ctx context.Context) ([]domain.SyncCheckpoint, error)

	// EnsureCheckpoints creates idle checkpoints for any entity type that
	// has none. Existing checkpoints are not modified.
	EnsureCheckpoints(ctx context.Context, entities []domain.EntityType) error
}
