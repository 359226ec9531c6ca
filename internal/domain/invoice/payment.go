package invoice

import (
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how an invoice payment was made
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCheck        PaymentMethod = "CHECK"
	MethodECheck       PaymentMethod = "E_CHECK"
	MethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheck, MethodECheck, MethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// RequiresInstrument returns true for methods settled by handing over a
// negotiable instrument, which must therefore be referenced.
func (m PaymentMethod) RequiresInstrument() bool {
	return m == MethodCheck || m == MethodECheck
}

// Payment is an immutable child record of a vendor invoice. Payments are
// only appended, never amended or removed.
type Payment struct {
	shared.BaseEntity
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaymentDate  time.Time       `json:"payment_date"`
	Method       PaymentMethod   `json:"method"`
	AccountID    uuid.UUID       `json:"account_id"`
	InstrumentID *uuid.UUID      `json:"instrument_id,omitempty"`
	ReceiptRef   string          `json:"receipt_ref,omitempty"`
}

// NewPayment creates a new payment record
func NewPayment(
	invoiceID uuid.UUID,
	amount decimal.Decimal,
	paymentDate time.Time,
	method PaymentMethod,
	accountID uuid.UUID,
	instrumentID *uuid.UUID,
	receiptRef string,
) Payment {
	return Payment{
		BaseEntity:   shared.NewBaseEntity(),
		InvoiceID:    invoiceID,
		Amount:       amount,
		PaymentDate:  paymentDate,
		Method:       method,
		AccountID:    accountID,
		InstrumentID: instrumentID,
		ReceiptRef:   receiptRef,
	}
}
