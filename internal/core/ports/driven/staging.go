package driven

import (
	"context"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// StagingWriter upserts fetched records into staging storage.
type StagingWriter interface {
	// Upsert writes records to the entity's staging table, keyed by
	// Record.Key. Unchanged records are counted as skipped.
	// Per-record failures are reported in WriteResult.Failed; a returned
	// error means the batch as a whole could not be written.
	Upsert(ctx context.Context, cfg domain.EntityConfig, records []domain.Record) (*domain.WriteResult, error)
}

// StagingReader reads staged records back for verification.
type StagingReader interface {
	// Count returns the number of staged records for an entity type.
	Count(ctx context.Context, cfg domain.EntityConfig) (int, error)

	Accounts(ctx context.Context) ([]domain.Account, error)
	Contacts(ctx context.Context) ([]domain.Contact, error)
	Invoices(ctx context.Context) ([]domain.Invoice, error)
	Payments(ctx context.Context) ([]domain.Payment, error)
	CreditNotes(ctx context.Context) ([]domain.CreditNote, error)
	BankAccounts(ctx context.Context) ([]domain.BankAccount, error)
	BankTransactions(ctx context.Context) ([]domain.BankTransaction, error)
}
