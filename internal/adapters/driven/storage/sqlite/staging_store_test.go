package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

var invoicesCfg = domain.EntityConfig{
	EntityType: domain.EntityInvoices,
	TableName:  "xero_invoices",
	BatchSize:  100,
}

func testInvoice(id, total string) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:      id,
		InvoiceNumber:  "INV-" + id,
		Type:           "ACCREC",
		Status:         "AUTHORISED",
		ContactID:      "c1",
		CurrencyCode:   "GBP",
		Date:           baseTime,
		Total:          decimal.RequireFromString(total),
		UpdatedDateUTC: baseTime,
	}
}

func TestStagingStore_InsertUpdateSkip(t *testing.T) {
	store := setupTestStore(t)
	writer := store.StagingWriter()
	ctx := context.Background()

	res, err := writer.Upsert(ctx, invoicesCfg, []domain.Record{
		testInvoice("1", "10.00"), testInvoice("2", "20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	changed := testInvoice("2", "25.00")
	changed.UpdatedDateUTC = baseTime.Add(time.Hour)
	res, err = writer.Upsert(ctx, invoicesCfg, []domain.Record{
		testInvoice("1", "10.00"), changed, testInvoice("3", "30.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 3, res.Processed())

	n, err := store.StagingReader().Count(ctx, invoicesCfg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	invoices, err := store.StagingReader().Invoices(ctx)
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "1", invoices[0].InvoiceID)
	assert.True(t, invoices[1].Total.Equal(decimal.RequireFromString("25")))
	assert.True(t, invoices[1].UpdatedDateUTC.Equal(baseTime.Add(time.Hour)))
}

func TestStagingStore_RecordWithoutKey(t *testing.T) {
	store := setupTestStore(t)

	res, err := store.StagingWriter().Upsert(context.Background(), invoicesCfg, []domain.Record{
		testInvoice("", "1.00"), testInvoice("ok", "1.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Inserted)
	require.Len(t, res.Errors, 1)
}

func TestStagingStore_RejectsUnknownTable(t *testing.T) {
	store := setupTestStore(t)
	cfg := invoicesCfg
	cfg.TableName = "invoices; DROP TABLE sync_sessions"

	_, err := store.StagingWriter().Upsert(context.Background(), cfg, []domain.Record{testInvoice("1", "1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = store.StagingReader().Count(context.Background(), cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStagingStore_EveryEntityHasATable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, e := range []domain.EntityType{
		domain.EntityAccounts, domain.EntityContacts, domain.EntityInvoices, domain.EntityPayments,
		domain.EntityCreditNotes, domain.EntityItems, domain.EntityBankAccounts,
		domain.EntityBankTransactions, domain.EntityManualJournals, domain.EntityTrackingCategories,
	} {
		n, err := store.StagingReader().Count(ctx, domain.EntityConfig{EntityType: e, TableName: tableFor(e)})
		require.NoError(t, err, e)
		assert.Zero(t, n)
	}
}

func TestStagingStore_TypedReaders(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	w := store.StagingWriter()

	_, err := w.Upsert(ctx, domain.EntityConfig{EntityType: domain.EntityContacts, TableName: "xero_contacts"},
		[]domain.Record{&domain.Contact{ContactID: "c1", Name: "Acme"}})
	require.NoError(t, err)
	_, err = w.Upsert(ctx, domain.EntityConfig{EntityType: domain.EntityPayments, TableName: "xero_payments"},
		[]domain.Record{&domain.Payment{PaymentID: "p1", InvoiceID: "1", Amount: decimal.NewFromInt(5)}})
	require.NoError(t, err)
	_, err = w.Upsert(ctx, domain.EntityConfig{EntityType: domain.EntityBankAccounts, TableName: "xero_bank_accounts"},
		[]domain.Record{&domain.BankAccount{AccountID: "b1", Name: "Current"}})
	require.NoError(t, err)

	r := store.StagingReader()
	contacts, err := r.Contacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", contacts[0].Name)

	payments, err := r.Payments(ctx)
	require.NoError(t, err)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(5)))

	banks, err := r.BankAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 1)

	for _, read := range []func(context.Context) (int, error){
		func(ctx context.Context) (int, error) { v, err := r.Accounts(ctx); return len(v), err },
		func(ctx context.Context) (int, error) { v, err := r.CreditNotes(ctx); return len(v), err },
		func(ctx context.Context) (int, error) { v, err := r.BankTransactions(ctx); return len(v), err },
	} {
		n, err := read(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}
