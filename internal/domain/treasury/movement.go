package treasury

import (
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction represents whether a movement credits or debits the account
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// Source type constants identify what business operation posted a movement
const (
	SourceInstrumentCollection = "INSTRUMENT_COLLECTION"
	SourceLotCredit            = "LOT_CREDIT"
	SourceInvoicePayment       = "INVOICE_PAYMENT"
	SourceManual               = "MANUAL"
)

// Movement is one append-only line of an account's trail. Movements are
// never amended or deleted; corrections are posted as new movements.
type Movement struct {
	shared.BaseEntity
	AccountID   uuid.UUID       `json:"account_id"`
	Direction   Direction       `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
	SourceType  string          `json:"source_type"`
	SourceID    *uuid.UUID      `json:"source_id,omitempty"`
	PostingDate time.Time       `json:"posting_date"`
}

// NewMovement creates a new movement record
func NewMovement(
	accountID uuid.UUID,
	direction Direction,
	amount decimal.Decimal,
	memo string,
	sourceType string,
	sourceID *uuid.UUID,
	postingDate time.Time,
) (*Movement, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement account ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Movement direction is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}
	if postingDate.IsZero() {
		postingDate = time.Now()
	}

	return &Movement{
		BaseEntity:  shared.NewBaseEntity(),
		AccountID:   accountID,
		Direction:   direction,
		Amount:      amount,
		Memo:        memo,
		SourceType:  sourceType,
		SourceID:    sourceID,
		PostingDate: postingDate,
	}, nil
}
