package instrument

import (
	"time"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInstrumentRequest carries the details of a new instrument
type CreateInstrumentRequest struct {
	ActorID     uuid.UUID
	Number      string
	BankName    string
	Kind        instrument.Kind
	IssueDate   time.Time
	DueDate     time.Time
	Amount      decimal.Decimal
	Beneficiary string
	DrawerName  string
}

// AmendInstrumentRequest carries replacement details for an in-portfolio instrument
type AmendInstrumentRequest struct {
	ActorID     uuid.UUID
	Number      string
	BankName    string
	Kind        instrument.Kind
	IssueDate   time.Time
	DueDate     time.Time
	Amount      decimal.Decimal
	Beneficiary string
	DrawerName  string
}

// DepositRequest places an instrument in clearing at a bank account
type DepositRequest struct {
	ActorID     uuid.UUID
	AccountID   uuid.UUID
	DepositDate time.Time
}

// EndorseRequest passes control of the paper to a third party
type EndorseRequest struct {
	ActorID         uuid.UUID
	Endorsee        string
	EndorsementDate time.Time
}

// RejectRequest records the bank's permanent return of a deposited instrument
type RejectRequest struct {
	ActorID uuid.UUID
	Reason  string
}

// SellBatchRequest sells a set of in-portfolio instruments as one lot
type SellBatchRequest struct {
	ActorID       uuid.UUID
	InstrumentIDs []uuid.UUID
	Buyer         string
	DiscountRate  decimal.Decimal
	TaxRate       decimal.Decimal
}

// SellBatchResult reports the generated lot and its settlement figures
type SellBatchResult struct {
	LotID           uuid.UUID                     `json:"lot_id"`
	InstrumentCount int                           `json:"instrument_count"`
	Settlement      instrument.Settlement         `json:"settlement"`
	MemberNetShares map[uuid.UUID]decimal.Decimal `json:"member_net_shares"`
}

// CreditLotRequest posts a lot's summed net proceeds to an account
type CreditLotRequest struct {
	ActorID   uuid.UUID
	LotID     uuid.UUID
	AccountID uuid.UUID
}

// CreditLotResult reports how many members were stamped. Affected is zero
// when the lot was already fully credited, which is not an error.
type CreditLotResult struct {
	LotID      uuid.UUID       `json:"lot_id"`
	Affected   int             `json:"affected"`
	MovementID *uuid.UUID      `json:"movement_id,omitempty"`
	NetAmount  decimal.Decimal `json:"net_amount"`
}

// PreviewSettlementRequest asks for the settlement figures without selling
type PreviewSettlementRequest struct {
	GrossAmount  decimal.Decimal
	DiscountRate decimal.Decimal
	TaxRate      decimal.Decimal
}
