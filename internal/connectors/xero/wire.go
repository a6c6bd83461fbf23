package xero

import (
	"github.com/shopspring/decimal"
)

// Wire types mirror the Accounting API JSON. Only fields that are staged
// are declared.

type wireTracking struct {
	TrackingCategoryID string `json:"TrackingCategoryID"`
	Name               string `json:"Name"`
	Option             string `json:"Option"`
}

type wireLineItem struct {
	LineItemID  string          `json:"LineItemID"`
	Description string          `json:"Description"`
	ItemCode    string          `json:"ItemCode"`
	AccountCode string          `json:"AccountCode"`
	TaxType     string          `json:"TaxType"`
	Quantity    decimal.Decimal `json:"Quantity"`
	UnitAmount  decimal.Decimal `json:"UnitAmount"`
	TaxAmount   decimal.Decimal `json:"TaxAmount"`
	LineAmount  decimal.Decimal `json:"LineAmount"`
	Tracking    []wireTracking  `json:"Tracking"`
}

type wireContactRef struct {
	ContactID string `json:"ContactID"`
	Name      string `json:"Name"`
}

type wireAccount struct {
	AccountID               string   `json:"AccountID"`
	Code                    string   `json:"Code"`
	Name                    string   `json:"Name"`
	Type                    string   `json:"Type"`
	Class                   string   `json:"Class"`
	Status                  string   `json:"Status"`
	TaxType                 string   `json:"TaxType"`
	CurrencyCode            string   `json:"CurrencyCode"`
	EnablePaymentsToAccount bool     `json:"EnablePaymentsToAccount"`
	BankAccountNumber       string   `json:"BankAccountNumber"`
	BankAccountType         string   `json:"BankAccountType"`
	UpdatedDateUTC          xeroTime `json:"UpdatedDateUTC"`
}

type wireContact struct {
	ContactID       string   `json:"ContactID"`
	Name            string   `json:"Name"`
	FirstName       string   `json:"FirstName"`
	LastName        string   `json:"LastName"`
	EmailAddress    string   `json:"EmailAddress"`
	AccountNumber   string   `json:"AccountNumber"`
	TaxNumber       string   `json:"TaxNumber"`
	ContactStatus   string   `json:"ContactStatus"`
	DefaultCurrency string   `json:"DefaultCurrency"`
	IsSupplier      bool     `json:"IsSupplier"`
	IsCustomer      bool     `json:"IsCustomer"`
	UpdatedDateUTC  xeroTime `json:"UpdatedDateUTC"`
}

type wireInvoice struct {
	InvoiceID      string          `json:"InvoiceID"`
	InvoiceNumber  string          `json:"InvoiceNumber"`
	Type           string          `json:"Type"`
	Status         string          `json:"Status"`
	Contact        wireContactRef  `json:"Contact"`
	Reference      string          `json:"Reference"`
	CurrencyCode   string          `json:"CurrencyCode"`
	CurrencyRate   decimal.Decimal `json:"CurrencyRate"`
	Date           xeroTime        `json:"Date"`
	DueDate        xeroTime        `json:"DueDate"`
	SubTotal       decimal.Decimal `json:"SubTotal"`
	TotalTax       decimal.Decimal `json:"TotalTax"`
	Total          decimal.Decimal `json:"Total"`
	AmountDue      decimal.Decimal `json:"AmountDue"`
	AmountPaid     decimal.Decimal `json:"AmountPaid"`
	AmountCredited decimal.Decimal `json:"AmountCredited"`
	LineItems      []wireLineItem  `json:"LineItems"`
	UpdatedDateUTC xeroTime        `json:"UpdatedDateUTC"`
}

type wirePayment struct {
	PaymentID    string          `json:"PaymentID"`
	PaymentType  string          `json:"PaymentType"`
	Status       string          `json:"Status"`
	Reference    string          `json:"Reference"`
	CurrencyRate decimal.Decimal `json:"CurrencyRate"`
	Date         xeroTime        `json:"Date"`
	Amount       decimal.Decimal `json:"Amount"`
	Account      struct {
		AccountID string `json:"AccountID"`
	} `json:"Account"`
	Invoice *struct {
		InvoiceID    string `json:"InvoiceID"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"Invoice"`
	CreditNote *struct {
		CreditNoteID string `json:"CreditNoteID"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"CreditNote"`
	UpdatedDateUTC xeroTime `json:"UpdatedDateUTC"`
}

type wireCreditNote struct {
	CreditNoteID     string          `json:"CreditNoteID"`
	CreditNoteNumber string          `json:"CreditNoteNumber"`
	Type             string          `json:"Type"`
	Status           string          `json:"Status"`
	Contact          wireContactRef  `json:"Contact"`
	Reference        string          `json:"Reference"`
	CurrencyCode     string          `json:"CurrencyCode"`
	Date             xeroTime        `json:"Date"`
	SubTotal         decimal.Decimal `json:"SubTotal"`
	TotalTax         decimal.Decimal `json:"TotalTax"`
	Total            decimal.Decimal `json:"Total"`
	RemainingCredit  decimal.Decimal `json:"RemainingCredit"`
	LineItems        []wireLineItem  `json:"LineItems"`
	UpdatedDateUTC   xeroTime        `json:"UpdatedDateUTC"`
}

type wireItemDetails struct {
	UnitPrice   decimal.Decimal `json:"UnitPrice"`
	AccountCode string          `json:"AccountCode"`
}

type wireItem struct {
	ItemID               string          `json:"ItemID"`
	Code                 string          `json:"Code"`
	Name                 string          `json:"Name"`
	Description          string          `json:"Description"`
	IsSold               bool            `json:"IsSold"`
	IsPurchased          bool            `json:"IsPurchased"`
	IsTrackedAsInventory bool            `json:"IsTrackedAsInventory"`
	SalesDetails         wireItemDetails `json:"SalesDetails"`
	PurchaseDetails      wireItemDetails `json:"PurchaseDetails"`
	QuantityOnHand       decimal.Decimal `json:"QuantityOnHand"`
	UpdatedDateUTC       xeroTime        `json:"UpdatedDateUTC"`
}

type wireBankTransaction struct {
	BankTransactionID string         `json:"BankTransactionID"`
	Type              string         `json:"Type"`
	Status            string         `json:"Status"`
	Contact           wireContactRef `json:"Contact"`
	BankAccount       struct {
		AccountID string `json:"AccountID"`
	} `json:"BankAccount"`
	Reference      string          `json:"Reference"`
	CurrencyCode   string          `json:"CurrencyCode"`
	Date           xeroTime        `json:"Date"`
	IsReconciled   bool            `json:"IsReconciled"`
	SubTotal       decimal.Decimal `json:"SubTotal"`
	TotalTax       decimal.Decimal `json:"TotalTax"`
	Total          decimal.Decimal `json:"Total"`
	LineItems      []wireLineItem  `json:"LineItems"`
	UpdatedDateUTC xeroTime        `json:"UpdatedDateUTC"`
}

type wireJournalLine struct {
	AccountCode string          `json:"AccountCode"`
	Description string          `json:"Description"`
	TaxType     string          `json:"TaxType"`
	LineAmount  decimal.Decimal `json:"LineAmount"`
	TaxAmount   decimal.Decimal `json:"TaxAmount"`
	Tracking    []wireTracking  `json:"Tracking"`
}

type wireManualJournal struct {
	ManualJournalID string            `json:"ManualJournalID"`
	Narration       string            `json:"Narration"`
	Status          string            `json:"Status"`
	Date            xeroTime          `json:"Date"`
	JournalLines    []wireJournalLine `json:"JournalLines"`
	UpdatedDateUTC  xeroTime          `json:"UpdatedDateUTC"`
}

type wireTrackingOption struct {
	TrackingOptionID string `json:"TrackingOptionID"`
	Name             string `json:"Name"`
	Status           string `json:"Status"`
}

type wireTrackingCategory struct {
	TrackingCategoryID string               `json:"TrackingCategoryID"`
	Name               string               `json:"Name"`
	Status             string               `json:"Status"`
	Options            []wireTrackingOption `json:"Options"`
}

// wireConnection is one entry of GET /connections.
type wireConnection struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	TenantType string `json:"tenantType"`
	TenantName string `json:"tenantName"`
}
