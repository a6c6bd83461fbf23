package driven

import (
	"context"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// AccountingSource fetches records from the accounting system.
// Implementations own authentication, throttling and retries.
type AccountingSource interface {
	// Name identifies the source in logs.
	Name() string

	// Connect authenticates and resolves the tenant to sync.
	// An empty tenantID selects the default tenant.
	// Returns an error wrapping domain.ErrSourceConnection on failure.
	Connect(ctx context.Context, tenantID string) error

	// Fetch returns one page of records for an entity type, ordered by
	// modification time ascending.
	// Returns domain.ErrUnsupportedEntity for entity types it cannot fetch.
	// On error the result may still be non-nil to report APICalls and
	// RateLimitHits spent on the failed attempt.
	Fetch(ctx context.Context, entity domain.EntityType, opts domain.FetchOptions) (*domain.FetchResult, error)
}
