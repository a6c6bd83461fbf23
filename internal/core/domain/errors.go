package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownEntityType indicates an entity type missing from the registry.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrSyncInProgress indicates a sync is already running in this process.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSessionSealed indicates a session has already been sealed.
	ErrSessionSealed = errors.New("session already sealed")

	// Source Errors.

	// ErrSourceConnection indicates the accounting source could not be reached
	// or authenticated. It aborts the whole run.
	ErrSourceConnection = errors.New("source connection failed")

	// ErrSourceNotConfigured indicates no credentials are configured.
	ErrSourceNotConfigured = errors.New("source not configured")

	// ErrUnsupportedEntity indicates the source cannot fetch an entity type.
	ErrUnsupportedEntity = errors.New("entity not supported by source")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Staging Errors.

	// ErrStagingWrite indicates a staging batch could not be written.
	ErrStagingWrite = errors.New("staging write failed")
)
