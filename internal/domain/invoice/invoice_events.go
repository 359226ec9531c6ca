package invoice

import (
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the vendor invoice aggregate
const (
	EventTypeInvoiceCreated           = "invoice.created"
	EventTypeInvoiceUpdated           = "invoice.updated"
	EventTypeInvoiceVoided            = "invoice.voided"
	EventTypeInvoicePaymentRegistered = "invoice.payment_registered"
)

const aggregateTypeInvoice = "VendorInvoice"

// InvoiceCreatedEvent is raised when a vendor invoice enters the ledger
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentRef   string          `json:"document_ref"`
	SupplierName  string          `json:"supplier_name"`
	Total         decimal.Decimal `json:"total"`
	AmountPayable decimal.Decimal `json:"amount_payable"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *VendorInvoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, aggregateTypeInvoice, inv.ID),
		DocumentRef:     inv.DocumentRef(),
		SupplierName:    inv.SupplierName,
		Total:           inv.Total,
		AmountPayable:   inv.AmountPayable,
	}
}

// InvoiceUpdatedEvent is raised when a pending invoice's amounts change
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	DocumentRef   string          `json:"document_ref"`
	Total         decimal.Decimal `json:"total"`
	AmountPayable decimal.Decimal `json:"amount_payable"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *VendorInvoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, aggregateTypeInvoice, inv.ID),
		DocumentRef:     inv.DocumentRef(),
		Total:           inv.Total,
		AmountPayable:   inv.AmountPayable,
	}
}

// InvoiceVoidedEvent is raised when an unpaid invoice is annulled
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	DocumentRef string `json:"document_ref"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *VendorInvoice) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, aggregateTypeInvoice, inv.ID),
		DocumentRef:     inv.DocumentRef(),
	}
}

// InvoicePaymentRegisteredEvent is raised when a payment is appended
type InvoicePaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	DocumentRef string          `json:"document_ref"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	AccountID   uuid.UUID       `json:"account_id"`
	BalanceDue  decimal.Decimal `json:"balance_due"`
	Status      Status          `json:"status"`
}

// NewInvoicePaymentRegisteredEvent creates a new InvoicePaymentRegisteredEvent
func NewInvoicePaymentRegisteredEvent(inv *VendorInvoice, p *Payment) *InvoicePaymentRegisteredEvent {
	return &InvoicePaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRegistered, aggregateTypeInvoice, inv.ID),
		DocumentRef:     inv.DocumentRef(),
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Method:          p.Method,
		AccountID:       p.AccountID,
		BalanceDue:      inv.BalanceDue,
		Status:          inv.Status,
	}
}
