package invoice

import (
	"time"

	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest carries the details of a new vendor invoice
type CreateInvoiceRequest struct {
	ActorID        uuid.UUID
	DocumentType   invoice.DocumentType
	PointOfSale    string
	DocumentNumber string
	SupplierName   string
	SupplierTaxID  string
	IssueDate      time.Time
	DueDate        *time.Time
	Amounts        invoice.Amounts
	Classification invoice.Classification
}

// UpdateInvoiceRequest carries replacement figures for a pending invoice
type UpdateInvoiceRequest struct {
	ActorID        uuid.UUID
	Amounts        invoice.Amounts
	Classification invoice.Classification
}

// RegisterPaymentRequest appends a payment against an invoice's balance due
type RegisterPaymentRequest struct {
	ActorID      uuid.UUID
	Amount       decimal.Decimal
	PaymentDate  time.Time
	Method       invoice.PaymentMethod
	AccountID    uuid.UUID
	InstrumentID *uuid.UUID
	ReceiptRef   string
}

// RegisterPaymentResult reports the appended payment and the re-derived invoice state
type RegisterPaymentResult struct {
	Payment    invoice.Payment `json:"payment"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	BalanceDue decimal.Decimal `json:"balance_due"`
	Status     invoice.Status  `json:"status"`
	MovementID uuid.UUID       `json:"movement_id"`
}
