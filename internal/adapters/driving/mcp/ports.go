package mcp

import (
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync runs sync sessions.
	Sync driving.SyncOrchestrator

	// History exposes checkpoints and sessions.
	History driving.SyncHistory

	// Integrity verifies staged data.
	Integrity driving.IntegrityChecker

	// InitiatedBy labels sessions started over MCP.
	InitiatedBy string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	// History and Integrity are optional; their tools report unavailability.
	return nil
}

func (p *Ports) initiatedBy() string {
	if p.InitiatedBy == "" {
		return "mcp"
	}
	return p.InitiatedBy
}
