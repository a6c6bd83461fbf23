package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a normalised accounting record ready for staging.
// Each entity type has exactly one concrete Record type.
type Record interface {
	// Key is the external (Xero) identifier, the natural upsert key.
	Key() string

	// Entity returns the entity type this record belongs to.
	Entity() EntityType

	// ModifiedAt is the source's last-modified time. Zero if unknown.
	ModifiedAt() time.Time
}

// TrackingRef links a line to a tracking category option.
type TrackingRef struct {
	TrackingCategoryID string `json:"tracking_category_id"`
	Name               string `json:"name"`
	Option             string `json:"option"`
}

// LineItem is one line on an invoice, credit note or bank transaction.
type LineItem struct {
	LineItemID  string          `json:"line_item_id"`
	Description string          `json:"description,omitempty"`
	ItemCode    string          `json:"item_code,omitempty"`
	AccountCode string          `json:"account_code,omitempty"`
	TaxType     string          `json:"tax_type,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitAmount  decimal.Decimal `json:"unit_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineAmount  decimal.Decimal `json:"line_amount"`
	Tracking    []TrackingRef   `json:"tracking,omitempty"`
}

// Account is a chart-of-accounts entry.
type Account struct {
	AccountID               string    `json:"account_id"`
	Code                    string    `json:"code"`
	Name                    string    `json:"name"`
	Type                    string    `json:"type"`
	Class                   string    `json:"class"`
	Status                  string    `json:"status"`
	TaxType                 string    `json:"tax_type,omitempty"`
	CurrencyCode            string    `json:"currency_code,omitempty"`
	EnablePaymentsToAccount bool      `json:"enable_payments_to_account"`
	UpdatedDateUTC          time.Time `json:"updated_date_utc"`
}

func (a *Account) Key() string           { return a.AccountID }
func (a *Account) Entity() EntityType    { return EntityAccounts }
func (a *Account) ModifiedAt() time.Time { return a.UpdatedDateUTC }

// Contact is a customer or supplier.
type Contact struct {
	ContactID       string    `json:"contact_id"`
	Name            string    `json:"name"`
	FirstName       string    `json:"first_name,omitempty"`
	LastName        string    `json:"last_name,omitempty"`
	EmailAddress    string    `json:"email_address,omitempty"`
	AccountNumber   string    `json:"account_number,omitempty"`
	TaxNumber       string    `json:"tax_number,omitempty"`
	ContactStatus   string    `json:"contact_status"`
	DefaultCurrency string    `json:"default_currency,omitempty"`
	IsSupplier      bool      `json:"is_supplier"`
	IsCustomer      bool      `json:"is_customer"`
	UpdatedDateUTC  time.Time `json:"updated_date_utc"`
}

func (c *Contact) Key() string           { return c.ContactID }
func (c *Contact) Entity() EntityType    { return EntityContacts }
func (c *Contact) ModifiedAt() time.Time { return c.UpdatedDateUTC }

// Invoice is a sales (ACCREC) or purchase (ACCPAY) invoice.
type Invoice struct {
	InvoiceID      string          `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	ContactID      string          `json:"contact_id"`
	Reference      string          `json:"reference,omitempty"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencyRate   decimal.Decimal `json:"currency_rate"`
	Date           time.Time       `json:"date"`
	DueDate        time.Time       `json:"due_date"`
	SubTotal       decimal.Decimal `json:"sub_total"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	Total          decimal.Decimal `json:"total"`
	AmountDue      decimal.Decimal `json:"amount_due"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountCredited decimal.Decimal `json:"amount_credited"`
	LineItems      []LineItem      `json:"line_items,omitempty"`
	UpdatedDateUTC time.Time       `json:"updated_date_utc"`
}

func (i *Invoice) Key() string           { return i.InvoiceID }
func (i *Invoice) Entity() EntityType    { return EntityInvoices }
func (i *Invoice) ModifiedAt() time.Time { return i.UpdatedDateUTC }

// Payment applies money against an invoice or credit note.
type Payment struct {
	PaymentID      string          `json:"payment_id"`
	InvoiceID      string          `json:"invoice_id,omitempty"`
	CreditNoteID   string          `json:"credit_note_id,omitempty"`
	AccountID      string          `json:"account_id"`
	PaymentType    string          `json:"payment_type"`
	Status         string          `json:"status"`
	Reference      string          `json:"reference,omitempty"`
	CurrencyCode   string          `json:"currency_code"`
	CurrencyRate   decimal.Decimal `json:"currency_rate"`
	Date           time.Time       `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	UpdatedDateUTC time.Time       `json:"updated_date_utc"`
}

func (p *Payment) Key() string           { return p.PaymentID }
func (p *Payment) Entity() EntityType    { return EntityPayments }
func (p *Payment) ModifiedAt() time.Time { return p.UpdatedDateUTC }

// CreditNote reduces what a contact owes or is owed.
type CreditNote struct {
	CreditNoteID     string          `json:"credit_note_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	Type             string          `json:"type"`
	Status           string          `json:"status"`
	ContactID        string          `json:"contact_id"`
	Reference        string          `json:"reference,omitempty"`
	CurrencyCode     string          `json:"currency_code"`
	Date             time.Time       `json:"date"`
	SubTotal         decimal.Decimal `json:"sub_total"`
	TotalTax         decimal.Decimal `json:"total_tax"`
	Total            decimal.Decimal `json:"total"`
	RemainingCredit  decimal.Decimal `json:"remaining_credit"`
	LineItems        []LineItem      `json:"line_items,omitempty"`
	UpdatedDateUTC   time.Time       `json:"updated_date_utc"`
}

func (c *CreditNote) Key() string           { return c.CreditNoteID }
func (c *CreditNote) Entity() EntityType    { return EntityCreditNotes }
func (c *CreditNote) ModifiedAt() time.Time { return c.UpdatedDateUTC }

// Item is a product or service.
type Item struct {
	ItemID               string          `json:"item_id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	IsSold               bool            `json:"is_sold"`
	IsPurchased          bool            `json:"is_purchased"`
	IsTrackedAsInventory bool            `json:"is_tracked_as_inventory"`
	SalesUnitPrice       decimal.Decimal `json:"sales_unit_price"`
	SalesAccountCode     string          `json:"sales_account_code,omitempty"`
	PurchaseUnitPrice    decimal.Decimal `json:"purchase_unit_price"`
	PurchaseAccountCode  string          `json:"purchase_account_code,omitempty"`
	QuantityOnHand       decimal.Decimal `json:"quantity_on_hand"`
	UpdatedDateUTC       time.Time       `json:"updated_date_utc"`
}

func (i *Item) Key() string           { return i.ItemID }
func (i *Item) Entity() EntityType    { return EntityItems }
func (i *Item) ModifiedAt() time.Time { return i.UpdatedDateUTC }

// BankAccount is an account of type BANK.
type BankAccount struct {
	AccountID         string    `json:"account_id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	BankAccountNumber string    `json:"bank_account_number,omitempty"`
	BankAccountType   string    `json:"bank_account_type,omitempty"`
	CurrencyCode      string    `json:"currency_code"`
	Status            string    `json:"status"`
	UpdatedDateUTC    time.Time `json:"updated_date_utc"`
}

func (b *BankAccount) Key() string           { return b.AccountID }
func (b *BankAccount) Entity() EntityType    { return EntityBankAccounts }
func (b *BankAccount) ModifiedAt() time.Time { return b.UpdatedDateUTC }

// BankTransaction is a spend or receive money transaction.
type BankTransaction struct {
	BankTransactionID string          `json:"bank_transaction_id"`
	Type              string          `json:"type"`
	Status            string          `json:"status"`
	ContactID         string          `json:"contact_id,omitempty"`
	BankAccountID     string          `json:"bank_account_id"`
	Reference         string          `json:"reference,omitempty"`
	CurrencyCode      string          `json:"currency_code"`
	Date              time.Time       `json:"date"`
	IsReconciled      bool            `json:"is_reconciled"`
	SubTotal          decimal.Decimal `json:"sub_total"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	Total             decimal.Decimal `json:"total"`
	LineItems         []LineItem      `json:"line_items,omitempty"`
	UpdatedDateUTC    time.Time       `json:"updated_date_utc"`
}

func (b *BankTransaction) Key() string           { return b.BankTransactionID }
func (b *BankTransaction) Entity() EntityType    { return EntityBankTransactions }
func (b *BankTransaction) ModifiedAt() time.Time { return b.UpdatedDateUTC }

// JournalLine is one debit or credit on a manual journal.
type JournalLine struct {
	AccountCode string          `json:"account_code"`
	Description string          `json:"description,omitempty"`
	TaxType     string          `json:"tax_type,omitempty"`
	LineAmount  decimal.Decimal `json:"line_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Tracking    []TrackingRef   `json:"tracking,omitempty"`
}

// ManualJournal is a user-entered journal.
type ManualJournal struct {
	ManualJournalID string        `json:"manual_journal_id"`
	Narration       string        `json:"narration"`
	Status          string        `json:"status"`
	Date            time.Time     `json:"date"`
	Lines           []JournalLine `json:"lines,omitempty"`
	UpdatedDateUTC  time.Time     `json:"updated_date_utc"`
}

func (m *ManualJournal) Key() string           { return m.ManualJournalID }
func (m *ManualJournal) Entity() EntityType    { return EntityManualJournals }
func (m *ManualJournal) ModifiedAt() time.Time { return m.UpdatedDateUTC }

// TrackingOption is one value of a tracking category.
type TrackingOption struct {
	TrackingOptionID string `json:"tracking_option_id"`
	Name             string `json:"name"`
	Status           string `json:"status"`
}

// TrackingCategory groups tracking options (e.g. "Region").
// Xero does not report a modification time for these.
type TrackingCategory struct {
	TrackingCategoryID string           `json:"tracking_category_id"`
	Name               string           `json:"name"`
	Status             string           `json:"status"`
	Options            []TrackingOption `json:"options,omitempty"`
}

func (t *TrackingCategory) Key() string           { return t.TrackingCategoryID }
func (t *TrackingCategory) Entity() EntityType    { return EntityTrackingCategories }
func (t *TrackingCategory) ModifiedAt() time.Time { return time.Time{} }

// LatestModification returns the greatest ModifiedAt among records,
// or nil if none report one.
func LatestModification(records []Record) *time.Time {
	var latest time.Time
	for _, r := range records {
		if m := r.ModifiedAt(); m.After(latest) {
			latest = m
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}
