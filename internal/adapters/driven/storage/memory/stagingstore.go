package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// Ensure StagingStore implements the interfaces.
var (
	_ driven.StagingWriter = (*StagingStore)(nil)
	_ driven.StagingReader = (*StagingStore)(nil)
)

type stagedRow struct {
	hash    string
	payload []byte
}

// StagingStore is an in-memory implementation of driven.StagingWriter and
// driven.StagingReader. Rows are keyed by entity type and external ID.
type StagingStore struct {
	mu     sync.RWMutex
	tables map[domain.EntityType]map[string]stagedRow
	order  map[domain.EntityType][]string
}

// NewStagingStore creates a new in-memory staging store.
func NewStagingStore() *StagingStore {
	return &StagingStore{
		tables: make(map[domain.EntityType]map[string]stagedRow),
		order:  make(map[domain.EntityType][]string),
	}
}

// Upsert writes records keyed by Record.Key. Records whose content hash
// is unchanged are skipped.
func (s *StagingStore) Upsert(
	_ context.Context, cfg domain.EntityConfig, records []domain.Record,
) (*domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[cfg.EntityType]
	if !ok {
		table = make(map[string]stagedRow)
		s.tables[cfg.EntityType] = table
	}

	result := &domain.WriteResult{}
	for _, r := range records {
		if r.Key() == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: record without external id", cfg.EntityType))
			continue
		}
		payload, hash, err := domain.EncodeRecord(r)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		existing, found := table[r.Key()]
		switch {
		case !found:
			result.Inserted++
			s.order[cfg.EntityType] = append(s.order[cfg.EntityType], r.Key())
		case existing.hash == hash:
			result.Skipped++
			continue
		default:
			result.Updated++
		}
		table[r.Key()] = stagedRow{hash: hash, payload: payload}
	}
	return result, nil
}

// Count returns the number of staged records for an entity type.
func (s *StagingStore) Count(_ context.Context, cfg domain.EntityConfig) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[cfg.EntityType]), nil
}

// Accounts returns staged accounts.
func (s *StagingStore) Accounts(_ context.Context) ([]domain.Account, error) {
	return decodeAll[domain.Account](s, domain.EntityAccounts)
}

// Contacts returns staged contacts.
func (s *StagingStore) Contacts(_ context.Context) ([]domain.Contact, error) {
	return decodeAll[domain.Contact](s, domain.EntityContacts)
}

// Invoices returns staged invoices.
func (s *StagingStore) Invoices(_ context.Context) ([]domain.Invoice, error) {
	return decodeAll[domain.Invoice](s, domain.EntityInvoices)
}

// Payments returns staged payments.
func (s *StagingStore) Payments(_ context.Context) ([]domain.Payment, error) {
	return decodeAll[domain.Payment](s, domain.EntityPayments)
}

// CreditNotes returns staged credit notes.
func (s *StagingStore) CreditNotes(_ context.Context) ([]domain.CreditNote, error) {
	return decodeAll[domain.CreditNote](s, domain.EntityCreditNotes)
}

// BankAccounts returns staged bank accounts.
func (s *StagingStore) BankAccounts(_ context.Context) ([]domain.BankAccount, error) {
	return decodeAll[domain.BankAccount](s, domain.EntityBankAccounts)
}

// BankTransactions returns staged bank transactions.
func (s *StagingStore) BankTransactions(_ context.Context) ([]domain.BankTransaction, error) {
	return decodeAll[domain.BankTransaction](s, domain.EntityBankTransactions)
}

// decodeAll reads an entity's records in insertion order.
func decodeAll[T any](s *StagingStore, entity domain.EntityType) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := slices.Clone(s.order[entity])
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		var v T
		if err := json.Unmarshal(s.tables[entity][k].payload, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", entity, k, err)
		}
		out = append(out, v)
	}
	return out, nil
}
