package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecords_ImplementRecord(t *testing.T) {
	records := []Record{
		&Account{AccountID: "a"},
		&Contact{ContactID: "c"},
		&Invoice{InvoiceID: "i"},
		&Payment{PaymentID: "p"},
		&CreditNote{CreditNoteID: "cn"},
		&Item{ItemID: "it"},
		&BankAccount{AccountID: "ba"},
		&BankTransaction{BankTransactionID: "bt"},
		&ManualJournal{ManualJournalID: "mj"},
		&TrackingCategory{TrackingCategoryID: "tc"},
	}
	expected := []EntityType{
		EntityAccounts, EntityContacts, EntityInvoices, EntityPayments, EntityCreditNotes,
		EntityItems, EntityBankAccounts, EntityBankTransactions, EntityManualJournals,
		EntityTrackingCategories,
	}

	for i, r := range records {
		assert.Equal(t, expected[i], r.Entity())
		assert.NotEmpty(t, r.Key())
	}
}

func TestLatestModification(t *testing.T) {
	assert.Nil(t, LatestModification(nil))
	assert.Nil(t, LatestModification([]Record{&TrackingCategory{TrackingCategoryID: "tc"}}))

	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	latest := LatestModification([]Record{
		&Contact{ContactID: "a", UpdatedDateUTC: t1},
		&Contact{ContactID: "b", UpdatedDateUTC: t2},
		&Contact{ContactID: "c"},
	})

	if assert.NotNil(t, latest) {
		assert.Equal(t, t2, *latest)
	}
}
