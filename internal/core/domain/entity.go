package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// EntityType identifies one kind of record mirrored from the accounting system.
type EntityType string

// Entity types mirrored from Xero.
const (
	EntityAccounts           EntityType = "accounts"
	EntityContacts           EntityType = "contacts"
	EntityInvoices           EntityType = "invoices"
	EntityPayments           EntityType = "payments"
	EntityCreditNotes        EntityType = "credit_notes"
	EntityItems              EntityType = "items"
	EntityBankAccounts       EntityType = "bank_accounts"
	EntityBankTransactions   EntityType = "bank_transactions"
	EntityManualJournals     EntityType = "manual_journals"
	EntityTrackingCategories EntityType = "tracking_categories"
)

// Batch size bounds for an EntityConfig.
const (
	MinBatchSize = 10
	MaxBatchSize = 1000
)

// String returns the string representation.
func (e EntityType) String() string {
	return string(e)
}

// ParseEntityType normalises user input ("Credit-Notes", " invoices ") to an EntityType.
// It does not check the value against a registry.
func ParseEntityType(s string) EntityType {
	s = strings.ToLower(strings.TrimSpace(s))
	return EntityType(strings.ReplaceAll(s, "-", "_"))
}

// EntityConfig is the static sync configuration for one entity type.
type EntityConfig struct {
	// EntityType is the unique key.
	EntityType EntityType

	// TableName is the staging table records are written to.
	TableName string

	// BatchSize is the page size requested from the source and the
	// number of records handed to the staging writer per call.
	BatchSize int

	// Priority orders independent entities. Lower runs earlier.
	Priority int

	// Dependencies lists entity types that must be synced first.
	Dependencies []EntityType

	// SupportsIncrementalSync allows "modified since" requests.
	SupportsIncrementalSync bool

	// DefaultSyncIntervalHours is the target gap between successful syncs.
	DefaultSyncIntervalHours int
}

// Validate checks the configuration is usable.
func (c EntityConfig) Validate() error {
	if c.EntityType == "" {
		return fmt.Errorf("%w: entity type is required", ErrInvalidInput)
	}
	if c.TableName == "" {
		return fmt.Errorf("%w: %s: table name is required", ErrInvalidInput, c.EntityType)
	}
	if c.BatchSize < MinBatchSize || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: %s: batch size %d outside [%d, %d]",
			ErrInvalidInput, c.EntityType, c.BatchSize, MinBatchSize, MaxBatchSize)
	}
	if slices.Contains(c.Dependencies, c.EntityType) {
		return fmt.Errorf("%w: %s depends on itself", ErrInvalidInput, c.EntityType)
	}
	return nil
}

// SyncInterval returns DefaultSyncIntervalHours as a duration.
func (c EntityConfig) SyncInterval() time.Duration {
	return time.Duration(c.DefaultSyncIntervalHours) * time.Hour
}
