package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/ledgersync/internal/core/domain"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driven"
	"github.com/custodia-labs/ledgersync/internal/core/ports/driving"
	"github.com/custodia-labs/ledgersync/internal/logger"
)

// Ensure IntegrityService implements the interface.
var _ driving.IntegrityChecker = (*IntegrityService)(nil)

// Tolerances used when comparing money and dates.
var (
	amountTolerance = decimal.NewFromFloat(0.01)
	futureTolerance = 24 * time.Hour
)

// IntegrityService runs diagnostic checks over staged data.
// It only reads: checkpoints and staging are never modified.
type IntegrityService struct {
	registry    *EntityRegistry
	reader      driven.StagingReader
	checkpoints driven.CheckpointStore
	now         func() time.Time
}

// NewIntegrityService creates a new integrity checker.
func NewIntegrityService(
	registry *EntityRegistry,
	reader driven.StagingReader,
	checkpoints driven.CheckpointStore,
) *IntegrityService {
	return &IntegrityService{
		registry:    registry,
		reader:      reader,
		checkpoints: checkpoints,
		now:         time.Now,
	}
}

// snapshot is the staged data the checks run over.
type snapshot struct {
	contacts         []domain.Contact
	invoices         []domain.Invoice
	payments         []domain.Payment
	creditNotes      []domain.CreditNote
	bankAccounts     []domain.BankAccount
	bankTransactions []domain.BankTransaction
	checkpoints      []domain.SyncCheckpoint

	// loadErrs maps a data set name to the error reading it.
	loadErrs map[string]error
}

// integrityCheck is one named check.
type integrityCheck struct {
	name     string
	category domain.CheckCategory
	needs    []string
	run      func(s *snapshot, now time.Time) (status domain.CheckStatus, affected int, msg string)
}

// Run executes every check and returns the scored report. A check whose
// data cannot be read is reported as failed; Run itself does not fail.
func (i *IntegrityService) Run(ctx context.Context) (*domain.IntegrityReport, error) {
	logger.Section("Integrity")
	snap := i.load(ctx)
	now := i.now()

	report := &domain.IntegrityReport{GeneratedAt: now}
	for _, check := range i.checks() {
		res := domain.IntegrityCheckResult{
			CheckType: check.name,
			Category:  check.category,
			Timestamp: now,
		}
		if err := snap.missing(check.needs); err != nil {
			res.Status = domain.CheckFailed
			res.Message = err.Error()
		} else {
			res.Status, res.RecordsAffected, res.Message = check.run(snap, now)
		}
		logger.Debug("%s: %s (%d affected)", check.name, res.Status, res.RecordsAffected)
		report.Checks = append(report.Checks, res)
	}
	report.Score = domain.ScoreChecks(report.Checks)

	logger.Info("Integrity score %.1f: %d passed, %d warnings, %d failed", report.Score,
		report.CountByStatus(domain.CheckPassed), report.CountByStatus(domain.CheckWarning),
		report.CountByStatus(domain.CheckFailed))
	return report, nil
}

func (i *IntegrityService) load(ctx context.Context) *snapshot {
	s := &snapshot{loadErrs: make(map[string]error)}
	record := func(name string, err error) {
		if err != nil {
			logger.Warn("Integrity: failed to read %s: %v", name, err)
			s.loadErrs[name] = err
		}
	}

	var err error
	s.contacts, err = i.reader.Contacts(ctx)
	record("contacts", err)
	s.invoices, err = i.reader.Invoices(ctx)
	record("invoices", err)
	s.payments, err = i.reader.Payments(ctx)
	record("payments", err)
	s.creditNotes, err = i.reader.CreditNotes(ctx)
	record("credit_notes", err)
	s.bankAccounts, err = i.reader.BankAccounts(ctx)
	record("bank_accounts", err)
	s.bankTransactions, err = i.reader.BankTransactions(ctx)
	record("bank_transactions", err)
	s.checkpoints, err = i.checkpoints.List(ctx)
	record("checkpoints", err)
	return s
}

func (s *snapshot) missing(needs []string) error {
	for _, n := range needs {
		if err := s.loadErrs[n]; err != nil {
			return fmt.Errorf("could not read %s: %w", n, err)
		}
	}
	return nil
}

// outcome maps an affected count to a status: zero passes, otherwise severity.
func outcome(affected int, severity domain.CheckStatus, what string) (domain.CheckStatus, int, string) {
	if affected == 0 {
		return domain.CheckPassed, 0, "no " + what
	}
	return severity, affected, fmt.Sprintf("%d %s", affected, what)
}

func (i *IntegrityService) checks() []integrityCheck {
	return []integrityCheck{
		// Cross-reference
		{"invoice_contact_references", domain.CheckCategoryCrossReference,
			[]string{"invoices", "contacts"}, checkInvoiceContacts},
		{"credit_note_contact_references", domain.CheckCategoryCrossReference,
			[]string{"credit_notes", "contacts"}, checkCreditNoteContacts},
		{"payment_document_references", domain.CheckCategoryCrossReference,
			[]string{"payments", "invoices", "credit_notes"}, checkPaymentDocuments},
		{"bank_transaction_account_references", domain.CheckCategoryCrossReference,
			[]string{"bank_transactions", "bank_accounts"}, checkBankTransactionAccounts},

		// Completeness
		{"checkpoint_coverage", domain.CheckCategoryCompleteness,
			[]string{"checkpoints"}, i.checkCheckpointCoverage},
		{"invoice_required_fields", domain.CheckCategoryCompleteness,
			[]string{"invoices"}, checkInvoiceRequiredFields},
		{"contact_required_fields", domain.CheckCategoryCompleteness,
			[]string{"contacts"}, checkContactRequiredFields},

		// Business rules
		{"negative_totals", domain.CheckCategoryBusinessRules,
			[]string{"invoices", "credit_notes"}, checkNegativeTotals},
		{"payments_exceed_invoice_total", domain.CheckCategoryBusinessRules,
			[]string{"payments", "invoices"}, checkOverpayments},
		{"future_dated_transactions", domain.CheckCategoryBusinessRules,
			[]string{"invoices", "payments", "bank_transactions"}, checkFutureDated},

		// Consistency
		{"invoice_totals", domain.CheckCategoryConsistency,
			[]string{"invoices"}, checkInvoiceTotals},
		{"invoice_amount_due", domain.CheckCategoryConsistency,
			[]string{"invoices"}, checkAmountDue},
		{"payment_currency", domain.CheckCategoryConsistency,
			[]string{"payments", "invoices"}, checkPaymentCurrency},

		// Duplicates
		{"duplicate_invoice_numbers", domain.CheckCategoryDuplicates,
			[]string{"invoices"}, checkDuplicateInvoiceNumbers},
		{"near_duplicate_contacts", domain.CheckCategoryDuplicates,
			[]string{"contacts"}, checkNearDuplicateContacts},
	}
}

// isVoid reports whether a document status excludes it from money checks.
func isVoid(status string) bool {
	return status == "VOIDED" || status == "DELETED"
}

func contactIDs(contacts []domain.Contact) map[string]bool {
	ids := make(map[string]bool, len(contacts))
	for i := range contacts {
		ids[contacts[i].ContactID] = true
	}
	return ids
}

func checkInvoiceContacts(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	ids := contactIDs(s.contacts)
	n := 0
	for i := range s.invoices {
		if c := s.invoices[i].ContactID; c != "" && !ids[c] {
			n++
		}
	}
	return outcome(n, domain.CheckFailed, "invoices reference missing contacts")
}

func checkCreditNoteContacts(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	ids := contactIDs(s.contacts)
	n := 0
	for i := range s.creditNotes {
		if c := s.creditNotes[i].ContactID; c != "" && !ids[c] {
			n++
		}
	}
	return outcome(n, domain.CheckWarning, "credit notes reference missing contacts")
}

func checkPaymentDocuments(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	invoices := make(map[string]bool, len(s.invoices))
	for i := range s.invoices {
		invoices[s.invoices[i].InvoiceID] = true
	}
	credits := make(map[string]bool, len(s.creditNotes))
	for i := range s.creditNotes {
		credits[s.creditNotes[i].CreditNoteID] = true
	}

	n := 0
	for i := range s.payments {
		p := &s.payments[i]
		switch {
		case p.InvoiceID != "" && !invoices[p.InvoiceID]:
			n++
		case p.CreditNoteID != "" && !credits[p.CreditNoteID]:
			n++
		}
	}
	return outcome(n, domain.CheckFailed, "payments reference missing invoices or credit notes")
}

func checkBankTransactionAccounts(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	accounts := make(map[string]bool, len(s.bankAccounts))
	for i := range s.bankAccounts {
		accounts[s.bankAccounts[i].AccountID] = true
	}
	n := 0
	for i := range s.bankTransactions {
		if !accounts[s.bankTransactions[i].BankAccountID] {
			n++
		}
	}
	return outcome(n, domain.CheckFailed, "bank transactions reference missing bank accounts")
}

func (i *IntegrityService) checkCheckpointCoverage(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	have := make(map[domain.EntityType]bool, len(s.checkpoints))
	for _, cp := range s.checkpoints {
		have[cp.EntityType] = true
	}
	var missing []string
	for _, t := range i.registry.Types() {
		if !have[t] {
			missing = append(missing, t.String())
		}
	}
	if len(missing) == 0 {
		return domain.CheckPassed, 0, "all entity types have checkpoints"
	}
	return domain.CheckFailed, len(missing), "missing checkpoints: " + strings.Join(missing, ", ")
}

func checkInvoiceRequiredFields(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	n := 0
	for i := range s.invoices {
		inv := &s.invoices[i]
		if inv.ContactID == "" || inv.CurrencyCode == "" || inv.Date.IsZero() ||
			(inv.Type == "ACCREC" && inv.InvoiceNumber == "" && inv.Status != "DRAFT") {
			n++
		}
	}
	return outcome(n, domain.CheckWarning, "invoices missing required fields")
}

func checkContactRequiredFields(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	n := 0
	for i := range s.contacts {
		if strings.TrimSpace(s.contacts[i].Name) == "" {
			n++
		}
	}
	return outcome(n, domain.CheckWarning, "contacts without a name")
}

func checkNegativeTotals(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	n := 0
	for i := range s.invoices {
		if s.invoices[i].Total.IsNegative() {
			n++
		}
	}
	for i := range s.creditNotes {
		if s.creditNotes[i].Total.IsNegative() {
			n++
		}
	}
	return outcome(n, domain.CheckFailed, "documents with negative totals")
}

func checkOverpayments(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	paid := make(map[string]decimal.Decimal)
	for i := range s.payments {
		p := &s.payments[i]
		if p.InvoiceID == "" || isVoid(p.Status) {
			continue
		}
		paid[p.InvoiceID] = paid[p.InvoiceID].Add(p.Amount)
	}

	n := 0
	for i := range s.invoices {
		inv := &s.invoices[i]
		total, ok := paid[inv.InvoiceID]
		if !ok || isVoid(inv.Status) {
			continue
		}
		if total.Sub(inv.Total).GreaterThan(amountTolerance) {
			n++
		}
	}
	return outcome(n, domain.CheckFailed, "invoices with payments exceeding the total")
}

func checkFutureDated(s *snapshot, now time.Time) (domain.CheckStatus, int, string) {
	limit := now.Add(futureTolerance)
	n := 0
	for i := range s.invoices {
		if s.invoices[i].Date.After(limit) {
			n++
		}
	}
	for i := range s.payments {
		if s.payments[i].Date.After(limit) {
			n++
		}
	}
	for i := range s.bankTransactions {
		if s.bankTransactions[i].Date.After(limit) {
			n++
		}
	}
	return outcome(n, domain.CheckWarning, "future-dated transactions")
}

func checkInvoiceTotals(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	n := 0
	for i := range s.invoices {
		inv := &s.invoices[i]
		if isVoid(inv.Status) {
			continue
		}
		if inv.SubTotal.Add(inv.TotalTax).Sub(inv.Total).Abs().GreaterThan(amountTolerance) {
			n++
		}
	}
	return outcome(n, domain.CheckFailed, "invoices where subtotal plus tax differs from total")
}

func checkAmountDue(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	n := 0
	for i := range s.invoices {
		inv := &s.invoices[i]
		if isVoid(inv.Status) || inv.Status == "DRAFT" {
			continue
		}
		expected := inv.Total.Sub(inv.AmountPaid).Sub(inv.AmountCredited)
		if expected.Sub(inv.AmountDue).Abs().GreaterThan(amountTolerance) {
			n++
		}
	}
	return outcome(n, domain.CheckWarning, "invoices where amount due disagrees with payments")
}

func checkPaymentCurrency(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	currency := make(map[string]string, len(s.invoices))
	for i := range s.invoices {
		currency[s.invoices[i].InvoiceID] = s.invoices[i].CurrencyCode
	}
	n := 0
	for i := range s.payments {
		p := &s.payments[i]
		want, ok := currency[p.InvoiceID]
		if !ok || want == "" || p.CurrencyCode == "" {
			continue
		}
		if want != p.CurrencyCode {
			n++
		}
	}
	return outcome(n, domain.CheckWarning, "payments in a different currency from their invoice")
}

func checkDuplicateInvoiceNumbers(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	seen := make(map[string]int)
	for i := range s.invoices {
		inv := &s.invoices[i]
		if inv.Type != "ACCREC" || inv.InvoiceNumber == "" || isVoid(inv.Status) {
			continue
		}
		seen[inv.InvoiceNumber]++
	}
	n := 0
	for _, count := range seen {
		if count > 1 {
			n += count
		}
	}
	return outcome(n, domain.CheckFailed, "sales invoices share an invoice number")
}

func checkNearDuplicateContacts(s *snapshot, _ time.Time) (domain.CheckStatus, int, string) {
	groups := make(map[string]int)
	for i := range s.contacts {
		c := &s.contacts[i]
		if c.ContactStatus == "ARCHIVED" {
			continue
		}
		if key := normaliseContactName(c.Name); key != "" {
			groups[key]++
		}
	}
	n := 0
	for _, count := range groups {
		if count > 1 {
			n += count
		}
	}
	return outcome(n, domain.CheckWarning, "contacts with near-duplicate names")
}

// companySuffixes are dropped when comparing contact names.
var companySuffixes = []string{"limited", "ltd", "llc", "inc", "pty", "plc", "co", "corp", "gmbh"}

// normaliseContactName lowercases, keeps letters and digits, and drops
// common company suffixes, so "Acme Ltd." and "ACME limited" collide.
func normaliseContactName(name string) string {
	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for len(words) > 1 && slices.Contains(companySuffixes, words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, "")
}
