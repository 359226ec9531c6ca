package invoice

import (
	"fmt"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the payment state of a vendor invoice. It is strictly
// derived from (AmountPayable, PaidAmount, void flag), never set directly.
type Status string

const (
	StatusPending Status = "PENDING" // No payments registered
	StatusPartial Status = "PARTIAL" // Paid in part
	StatusPaid    Status = "PAID"    // Balance due is zero
	StatusVoid    Status = "VOID"    // Annulled before any payment
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusVoid:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// DocumentType represents the fiscal document class
type DocumentType string

const (
	DocumentInvoiceA   DocumentType = "INVOICE_A"
	DocumentInvoiceB   DocumentType = "INVOICE_B"
	DocumentInvoiceC   DocumentType = "INVOICE_C"
	DocumentCreditNote DocumentType = "CREDIT_NOTE"
	DocumentDebitNote  DocumentType = "DEBIT_NOTE"
	DocumentReceipt    DocumentType = "RECEIPT"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentInvoiceA, DocumentInvoiceB, DocumentInvoiceC,
		DocumentCreditNote, DocumentDebitNote, DocumentReceipt:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// Amounts is the itemized monetary breakdown of an invoice. Every component
// is non-negative; withholdings reduce what is actually disbursed without
// reducing the invoice total.
type Amounts struct {
	NetAmount                decimal.Decimal `json:"net_amount"`
	VAT21                    decimal.Decimal `json:"vat_21"`
	VAT105                   decimal.Decimal `json:"vat_10_5"`
	VAT27                    decimal.Decimal `json:"vat_27"`
	ExemptAmount             decimal.Decimal `json:"exempt_amount"`
	PerceptionsVAT           decimal.Decimal `json:"perceptions_vat"`
	PerceptionsGrossReceipts decimal.Decimal `json:"perceptions_gross_receipts"`
	OtherTaxes               decimal.Decimal `json:"other_taxes"`

	WithholdingIncomeTax      decimal.Decimal `json:"withholding_income_tax"`
	WithholdingVAT            decimal.Decimal `json:"withholding_vat"`
	WithholdingGrossReceipts  decimal.Decimal `json:"withholding_gross_receipts"`
	WithholdingSocialSecurity decimal.Decimal `json:"withholding_social_security"`
}

// Total sums the non-withholding components
func (a Amounts) Total() decimal.Decimal {
	return a.NetAmount.
		Add(a.VAT21).
		Add(a.VAT105).
		Add(a.VAT27).
		Add(a.ExemptAmount).
		Add(a.PerceptionsVAT).
		Add(a.PerceptionsGrossReceipts).
		Add(a.OtherTaxes)
}

// Withholdings sums the withholding components
func (a Amounts) Withholdings() decimal.Decimal {
	return a.WithholdingIncomeTax.
		Add(a.WithholdingVAT).
		Add(a.WithholdingGrossReceipts).
		Add(a.WithholdingSocialSecurity)
}

func (a Amounts) validate() error {
	components := map[string]decimal.Decimal{
		"net amount":                 a.NetAmount,
		"VAT 21%":                    a.VAT21,
		"VAT 10.5%":                  a.VAT105,
		"VAT 27%":                    a.VAT27,
		"exempt amount":              a.ExemptAmount,
		"VAT perceptions":            a.PerceptionsVAT,
		"gross receipts perceptions": a.PerceptionsGrossReceipts,
		"other taxes":                a.OtherTaxes,
		"income tax withholding":     a.WithholdingIncomeTax,
		"VAT withholding":            a.WithholdingVAT,
		"gross receipts withholding": a.WithholdingGrossReceipts,
		"social security withholding": a.WithholdingSocialSecurity,
	}
	for name, v := range components {
		if v.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Invoice %s cannot be negative", name))
		}
	}
	total := a.Total()
	if total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}
	if a.Withholdings().GreaterThan(total) {
		return shared.NewDomainError("INVALID_AMOUNT", "Withholdings cannot exceed the invoice total")
	}
	return nil
}

// Classification holds optional read-only accounting references. They are
// carried and reported, never interpreted.
type Classification struct {
	LedgerAccountCode string `json:"ledger_account_code,omitempty"`
	CostCenterCode    string `json:"cost_center_code,omitempty"`
	ProjectCode       string `json:"project_code,omitempty"`
}

// VendorInvoice represents a supplier document in the payment ledger. The
// document triple (supplier, point of sale, document number) is unique per
// document type. Payments are immutable children; every registration
// re-derives PaidAmount, BalanceDue and Status.
type VendorInvoice struct {
	shared.AuditedAggregateRoot
	DocumentType   DocumentType   `json:"document_type"`
	PointOfSale    string         `json:"point_of_sale"`
	DocumentNumber string         `json:"document_number"`
	SupplierName   string         `json:"supplier_name"`
	SupplierTaxID  string         `json:"supplier_tax_id,omitempty"`
	IssueDate      time.Time      `json:"issue_date"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	Amounts        Amounts        `json:"amounts"`
	Classification Classification `json:"classification"`

	Total         decimal.Decimal `json:"total"`
	AmountPayable decimal.Decimal `json:"amount_payable"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Status        Status          `json:"status"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`

	Payments []Payment `json:"payments"`
}

// NewVendorInvoice creates a new pending invoice
func NewVendorInvoice(
	actorID uuid.UUID,
	docType DocumentType,
	pointOfSale string,
	documentNumber string,
	supplierName string,
	supplierTaxID string,
	issueDate time.Time,
	dueDate *time.Time,
	amounts Amounts,
	classification Classification,
) (*VendorInvoice, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document type is not valid")
	}
	if pointOfSale == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Point of sale cannot be empty")
	}
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document number cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name cannot be empty")
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Issue date is required")
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Due date cannot be before issue date")
	}
	if err := amounts.validate(); err != nil {
		return nil, err
	}

	inv := &VendorInvoice{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		DocumentType:         docType,
		PointOfSale:          pointOfSale,
		DocumentNumber:       documentNumber,
		SupplierName:         supplierName,
		SupplierTaxID:        supplierTaxID,
		IssueDate:            issueDate,
		DueDate:              dueDate,
		Amounts:              amounts,
		Classification:       classification,
		PaidAmount:           decimal.Zero,
		Payments:             make([]Payment, 0),
	}
	inv.recalc()

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// recalc re-derives the stored totals and the status. It is the single
// place where Status is assigned.
func (v *VendorInvoice) recalc() {
	v.Total = v.Amounts.Total()
	v.AmountPayable = v.Total.Sub(v.Amounts.Withholdings())
	v.BalanceDue = v.AmountPayable.Sub(v.PaidAmount)

	switch {
	case v.VoidedAt != nil:
		v.Status = StatusVoid
	case v.PaidAmount.IsZero() && v.BalanceDue.IsPositive():
		v.Status = StatusPending
	case v.BalanceDue.IsPositive():
		v.Status = StatusPartial
	default:
		v.Status = StatusPaid
	}
}

// UpdateAmounts replaces the itemized breakdown. Permitted only while
// pending: once a payment exists the registered figures are frozen.
func (v *VendorInvoice) UpdateAmounts(amounts Amounts) error {
	if v.Status != StatusPending {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot update amounts of invoice in %s status", v.Status))
	}
	if err := amounts.validate(); err != nil {
		return err
	}

	v.Amounts = amounts
	v.recalc()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	v.AddDomainEvent(NewInvoiceUpdatedEvent(v))

	return nil
}

// UpdateClassification replaces the accounting references while pending
func (v *VendorInvoice) UpdateClassification(c Classification) error {
	if v.Status != StatusPending {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot update classification of invoice in %s status", v.Status))
	}

	v.Classification = c
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	return nil
}

// RegisterPayment appends an immutable payment and re-derives the paid
// figures and status. Check-based methods must reference the instrument
// being handed over.
func (v *VendorInvoice) RegisterPayment(
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	accountID uuid.UUID,
	instrumentID *uuid.UUID,
	receiptRef string,
) (*Payment, error) {
	if v.Status == StatusVoid {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot register a payment on a void invoice")
	}
	if v.Status == StatusPaid {
		return nil, shared.NewDomainError("OVERPAYMENT_REJECTED", "Invoice is already fully paid")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment method is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(v.BalanceDue) {
		return nil, shared.NewDomainError("OVERPAYMENT_REJECTED",
			fmt.Sprintf("Payment of %s exceeds the balance due of %s", amount.StringFixed(2), v.BalanceDue.StringFixed(2)))
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment account ID cannot be empty")
	}
	if method.RequiresInstrument() && instrumentID == nil {
		return nil, shared.NewDomainError("MISSING_INSTRUMENT_REFERENCE",
			fmt.Sprintf("Payment method %s requires an instrument reference", method))
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	payment := NewPayment(v.ID, amount, paymentDate, method, accountID, instrumentID, receiptRef)
	v.Payments = append(v.Payments, payment)
	v.PaidAmount = v.PaidAmount.Add(amount)
	v.recalc()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()

	v.AddDomainEvent(NewInvoicePaymentRegisteredEvent(v, &payment))

	return &payment, nil
}

// Void annuls an invoice that has no payments
func (v *VendorInvoice) Void() error {
	if v.Status == StatusVoid {
		return shared.NewDomainError("INVALID_TRANSITION", "Invoice is already void")
	}
	if len(v.Payments) > 0 || v.PaidAmount.IsPositive() {
		return shared.NewDomainError("INVOICE_HAS_PAYMENTS", "Cannot void an invoice with registered payments")
	}

	now := time.Now()
	v.VoidedAt = &now
	v.recalc()
	v.UpdatedAt = now
	v.IncrementVersion()

	v.AddDomainEvent(NewInvoiceVoidedEvent(v))

	return nil
}

// DocumentRef renders the fiscal document reference for display and logs
func (v *VendorInvoice) DocumentRef() string {
	return fmt.Sprintf("%s %s-%s", v.DocumentType, v.PointOfSale, v.DocumentNumber)
}

// IsOpen returns true if the invoice still carries a balance due
func (v *VendorInvoice) IsOpen() bool {
	return v.Status == StatusPending || v.Status == StatusPartial
}
