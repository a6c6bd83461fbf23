package xero

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
)

// endpoint describes how one entity type is fetched and mapped.
type endpoint struct {
	// resource is the Accounting API collection path.
	resource string

	// collection is the JSON key holding the records.
	collection string

	// paged endpoints accept page/pageSize and are ordered by UpdatedDateUTC.
	paged bool

	// where is an optional server-side filter.
	where string

	// archived is the query parameter that includes archived records, if any.
	archived string

	decode func(raw json.RawMessage) ([]domain.Record, error)
}

var endpoints = map[domain.EntityType]endpoint{
	domain.EntityAccounts: {
		resource: "Accounts", collection: "Accounts",
		decode: decodeAs(mapAccount),
	},
	domain.EntityBankAccounts: {
		resource: "Accounts", collection: "Accounts", where: `Type=="BANK"`,
		decode: decodeAs(mapBankAccount),
	},
	domain.EntityContacts: {
		resource: "Contacts", collection: "Contacts", paged: true, archived: "includeArchived",
		decode: decodeAs(mapContact),
	},
	domain.EntityInvoices: {
		resource: "Invoices", collection: "Invoices", paged: true,
		decode: decodeAs(mapInvoice),
	},
	domain.EntityPayments: {
		resource: "Payments", collection: "Payments", paged: true,
		decode: decodeAs(mapPayment),
	},
	domain.EntityCreditNotes: {
		resource: "CreditNotes", collection: "CreditNotes", paged: true,
		decode: decodeAs(mapCreditNote),
	},
	domain.EntityItems: {
		resource: "Items", collection: "Items",
		decode: decodeAs(mapItem),
	},
	domain.EntityBankTransactions: {
		resource: "BankTransactions", collection: "BankTransactions", paged: true,
		decode: decodeAs(mapBankTransaction),
	},
	domain.EntityManualJournals: {
		resource: "ManualJournals", collection: "ManualJournals", paged: true,
		decode: decodeAs(mapManualJournal),
	},
	domain.EntityTrackingCategories: {
		resource: "TrackingCategories", collection: "TrackingCategories", archived: "includeArchived",
		decode: decodeAs(mapTrackingCategory),
	},
}

// SupportedEntities returns the entity types this connector can fetch.
func SupportedEntities() []domain.EntityType {
	out := make([]domain.EntityType, 0, len(endpoints))
	for e := range endpoints {
		out = append(out, e)
	}
	return out
}

// decodeAs unmarshals a JSON array of W and maps each element.
func decodeAs[W any](mapFn func(*W) domain.Record) func(json.RawMessage) ([]domain.Record, error) {
	return func(raw json.RawMessage) ([]domain.Record, error) {
		if len(raw) == 0 || string(raw) == "null" {
			return nil, nil
		}
		var items []W
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		out := make([]domain.Record, 0, len(items))
		for i := range items {
			out = append(out, mapFn(&items[i]))
		}
		return out, nil
	}
}

func mapLineItems(in []wireLineItem) []domain.LineItem {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.LineItem, len(in))
	for i, l := range in {
		out[i] = domain.LineItem{
			LineItemID:  l.LineItemID,
			Description: l.Description,
			ItemCode:    l.ItemCode,
			AccountCode: l.AccountCode,
			TaxType:     l.TaxType,
			Quantity:    l.Quantity,
			UnitAmount:  l.UnitAmount,
			TaxAmount:   l.TaxAmount,
			LineAmount:  l.LineAmount,
			Tracking:    mapTracking(l.Tracking),
		}
	}
	return out
}

func mapTracking(in []wireTracking) []domain.TrackingRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.TrackingRef, len(in))
	for i, t := range in {
		out[i] = domain.TrackingRef{TrackingCategoryID: t.TrackingCategoryID, Name: t.Name, Option: t.Option}
	}
	return out
}

func mapAccount(a *wireAccount) domain.Record {
	return &domain.Account{
		AccountID:               a.AccountID,
		Code:                    a.Code,
		Name:                    a.Name,
		Type:                    a.Type,
		Class:                   a.Class,
		Status:                  a.Status,
		TaxType:                 a.TaxType,
		CurrencyCode:            a.CurrencyCode,
		EnablePaymentsToAccount: a.EnablePaymentsToAccount,
		UpdatedDateUTC:          a.UpdatedDateUTC.Time,
	}
}

func mapBankAccount(a *wireAccount) domain.Record {
	return &domain.BankAccount{
		AccountID:         a.AccountID,
		Code:              a.Code,
		Name:              a.Name,
		BankAccountNumber: a.BankAccountNumber,
		BankAccountType:   a.BankAccountType,
		CurrencyCode:      a.CurrencyCode,
		Status:            a.Status,
		UpdatedDateUTC:    a.UpdatedDateUTC.Time,
	}
}

func mapContact(c *wireContact) domain.Record {
	return &domain.Contact{
		ContactID:       c.ContactID,
		Name:            c.Name,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		EmailAddress:    c.EmailAddress,
		AccountNumber:   c.AccountNumber,
		TaxNumber:       c.TaxNumber,
		ContactStatus:   c.ContactStatus,
		DefaultCurrency: c.DefaultCurrency,
		IsSupplier:      c.IsSupplier,
		IsCustomer:      c.IsCustomer,
		UpdatedDateUTC:  c.UpdatedDateUTC.Time,
	}
}

func mapInvoice(i *wireInvoice) domain.Record {
	return &domain.Invoice{
		InvoiceID:      i.InvoiceID,
		InvoiceNumber:  i.InvoiceNumber,
		Type:           i.Type,
		Status:         i.Status,
		ContactID:      i.Contact.ContactID,
		Reference:      i.Reference,
		CurrencyCode:   i.CurrencyCode,
		CurrencyRate:   i.CurrencyRate,
		Date:           i.Date.Time,
		DueDate:        i.DueDate.Time,
		SubTotal:       i.SubTotal,
		TotalTax:       i.TotalTax,
		Total:          i.Total,
		AmountDue:      i.AmountDue,
		AmountPaid:     i.AmountPaid,
		AmountCredited: i.AmountCredited,
		LineItems:      mapLineItems(i.LineItems),
		UpdatedDateUTC: i.UpdatedDateUTC.Time,
	}
}

func mapPayment(p *wirePayment) domain.Record {
	out := &domain.Payment{
		PaymentID:      p.PaymentID,
		AccountID:      p.Account.AccountID,
		PaymentType:    p.PaymentType,
		Status:         p.Status,
		Reference:      p.Reference,
		CurrencyRate:   p.CurrencyRate,
		Date:           p.Date.Time,
		Amount:         p.Amount,
		UpdatedDateUTC: p.UpdatedDateUTC.Time,
	}
	// A payment settles either an invoice or a credit note and carries its currency.
	if p.Invoice != nil {
		out.InvoiceID = p.Invoice.InvoiceID
		out.CurrencyCode = p.Invoice.CurrencyCode
	}
	if p.CreditNote != nil {
		out.CreditNoteID = p.CreditNote.CreditNoteID
		if out.CurrencyCode == "" {
			out.CurrencyCode = p.CreditNote.CurrencyCode
		}
	}
	return out
}

func mapCreditNote(c *wireCreditNote) domain.Record {
	return &domain.CreditNote{
		CreditNoteID:     c.CreditNoteID,
		CreditNoteNumber: c.CreditNoteNumber,
		Type:             c.Type,
		Status:           c.Status,
		ContactID:        c.Contact.ContactID,
		Reference:        c.Reference,
		CurrencyCode:     c.CurrencyCode,
		Date:             c.Date.Time,
		SubTotal:         c.SubTotal,
		TotalTax:         c.TotalTax,
		Total:            c.Total,
		RemainingCredit:  c.RemainingCredit,
		LineItems:        mapLineItems(c.LineItems),
		UpdatedDateUTC:   c.UpdatedDateUTC.Time,
	}
}

func mapItem(i *wireItem) domain.Record {
	return &domain.Item{
		ItemID:               i.ItemID,
		Code:                 i.Code,
		Name:                 i.Name,
		Description:          i.Description,
		IsSold:               i.IsSold,
		IsPurchased:          i.IsPurchased,
		IsTrackedAsInventory: i.IsTrackedAsInventory,
		SalesUnitPrice:       i.SalesDetails.UnitPrice,
		SalesAccountCode:     i.SalesDetails.AccountCode,
		PurchaseUnitPrice:    i.PurchaseDetails.UnitPrice,
		PurchaseAccountCode:  i.PurchaseDetails.AccountCode,
		QuantityOnHand:       i.QuantityOnHand,
		UpdatedDateUTC:       i.UpdatedDateUTC.Time,
	}
}

func mapBankTransaction(b *wireBankTransaction) domain.Record {
	return &domain.BankTransaction{
		BankTransactionID: b.BankTransactionID,
		Type:              b.Type,
		Status:            b.Status,
		ContactID:         b.Contact.ContactID,
		BankAccountID:     b.BankAccount.AccountID,
		Reference:         b.Reference,
		CurrencyCode:      b.CurrencyCode,
		Date:              b.Date.Time,
		IsReconciled:      b.IsReconciled,
		SubTotal:          b.SubTotal,
		TotalTax:          b.TotalTax,
		Total:             b.Total,
		LineItems:         mapLineItems(b.LineItems),
		UpdatedDateUTC:    b.UpdatedDateUTC.Time,
	}
}

func mapManualJournal(m *wireManualJournal) domain.Record {
	var lines []domain.JournalLine
	for _, l := range m.JournalLines {
		lines = append(lines, domain.JournalLine{
			AccountCode: l.AccountCode,
			Description: l.Description,
			TaxType:     l.TaxType,
			LineAmount:  l.LineAmount,
			TaxAmount:   l.TaxAmount,
			Tracking:    mapTracking(l.Tracking),
		})
	}
	return &domain.ManualJournal{
		ManualJournalID: m.ManualJournalID,
		Narration:       m.Narration,
		Status:          m.Status,
		Date:            m.Date.Time,
		Lines:           lines,
		UpdatedDateUTC:  m.UpdatedDateUTC.Time,
	}
}

func mapTrackingCategory(t *wireTrackingCategory) domain.Record {
	var options []domain.TrackingOption
	for _, o := range t.Options {
		options = append(options, domain.TrackingOption{
			TrackingOptionID: o.TrackingOptionID,
			Name:             o.Name,
			Status:           o.Status,
		})
	}
	return &domain.TrackingCategory{
		TrackingCategoryID: t.TrackingCategoryID,
		Name:               t.Name,
		Status:             t.Status,
		Options:            options,
	}
}
