package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
)

// stagingStore implements driven.StagingWriter and driven.StagingReader.
type stagingStore struct {
	store *Store
}

var (
	_ driven.StagingWriter = (*stagingStore)(nil)
	_ driven.StagingReader = (*stagingStore)(nil)
)

// validTable guards table names interpolated into SQL.
var validTable = regexp.MustCompile(`^xero_[a-z_]+$`)

func tableFor(entity domain.EntityType) string {
	return "xero_" + string(entity)
}

func checkTable(name string) error {
	if !validTable.MatchString(name) {
		return fmt.Errorf("%w: staging table %q", domain.ErrInvalidInput, name)
	}
	return nil
}

// Upsert writes one batch in a transaction, keyed by Record.Key. Records
// whose content hash is unchanged are skipped without a write.
func (s *stagingStore) Upsert(
	ctx context.Context, cfg domain.EntityConfig, records []domain.Record,
) (*domain.WriteResult, error) {
	if err := checkTable(cfg.TableName); err != nil {
		return nil, err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	selectHash := "SELECT content_hash FROM " + cfg.TableName + " WHERE external_id = ?"
	insert := "INSERT INTO " + cfg.TableName +
		" (external_id, content_hash, payload, updated_date_utc, synced_at) VALUES (?, ?, ?, ?, ?)"
	update := "UPDATE " + cfg.TableName +
		" SET content_hash = ?, payload = ?, updated_date_utc = ?, synced_at = ? WHERE external_id = ?"

	syncedAt := formatTime(time.Now())
	result := &domain.WriteResult{}
	for _, r := range records {
		key := r.Key()
		if key == "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: record without external id", cfg.EntityType))
			continue
		}
		payload, hash, err := domain.EncodeRecord(r)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", cfg.EntityType, key, err))
			continue
		}

		var existing string
		err = tx.QueryRowContext(ctx, selectHash, key).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, insert, key, hash, string(payload),
				formatNullableTime(r.ModifiedAt()), syncedAt)
			if err == nil {
				result.Inserted++
			}
		case err != nil:
		case existing == hash:
			result.Skipped++
			continue
		default:
			_, err = tx.ExecContext(ctx, update, hash, string(payload),
				formatNullableTime(r.ModifiedAt()), syncedAt, key)
			if err == nil {
				result.Updated++
			}
		}
		if err != nil {
			// A statement error aborts the batch: the transaction may be unusable.
			return nil, fmt.Errorf("staging %s %s: %w", cfg.EntityType, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing %s batch: %w", cfg.EntityType, err)
	}
	return result, nil
}

// Count returns the number of staged records for an entity type.
func (s *stagingStore) Count(ctx context.Context, cfg domain.EntityConfig) (int, error) {
	if err := checkTable(cfg.TableName); err != nil {
		return 0, err
	}
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+cfg.TableName).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", cfg.TableName, err)
	}
	return n, nil
}

// Accounts returns staged accounts.
func (s *stagingStore) Accounts(ctx context.Context) ([]domain.Account, error) {
	return readAll[domain.Account](ctx, s.store.db, domain.EntityAccounts)
}

// Contacts returns staged contacts.
func (s *stagingStore) Contacts(ctx context.Context) ([]domain.Contact, error) {
	return readAll[domain.Contact](ctx, s.store.db, domain.EntityContacts)
}

// Invoices returns staged invoices.
func (s *stagingStore) Invoices(ctx context.Context) ([]domain.Invoice, error) {
	return readAll[domain.Invoice](ctx, s.store.db, domain.EntityInvoices)
}

// Payments returns staged payments.
func (s *stagingStore) Payments(ctx context.Context) ([]domain.Payment, error) {
	return readAll[domain.Payment](ctx, s.store.db, domain.EntityPayments)
}

// CreditNotes returns staged credit notes.
func (s *stagingStore) CreditNotes(ctx context.Context) ([]domain.CreditNote, error) {
	return readAll[domain.CreditNote](ctx, s.store.db, domain.EntityCreditNotes)
}

// BankAccounts returns staged bank accounts.
func (s *stagingStore) BankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	return readAll[domain.BankAccount](ctx, s.store.db, domain.EntityBankAccounts)
}

// BankTransactions returns staged bank transactions.
func (s *stagingStore) BankTransactions(ctx context.Context) ([]domain.BankTransaction, error) {
	return readAll[domain.BankTransaction](ctx, s.store.db, domain.EntityBankTransactions)
}

// readAll decodes every payload of an entity's table in insertion order.
func readAll[T any](ctx context.Context, db *sql.DB, entity domain.EntityType) ([]T, error) {
	table := tableFor(entity)
	rows, err := db.QueryContext(ctx, "SELECT external_id, payload FROM "+table+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", table, err)
	}
	defer rows.Close()

	var out []T //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, fmt.Errorf("decoding %s %s: %w", table, id, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", table, err)
	}
	return out, nil
}
