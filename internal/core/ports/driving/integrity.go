package driving

import (
	"context"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// IntegrityChecker verifies staged data. It never modifies sync state.
type IntegrityChecker interface {
	// Run executes every check and returns the scored report.
	Run(ctx context.Context) (*domain.IntegrityReport, error)
}
