package instrument

import (
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the instrument aggregate
const (
	EventTypeInstrumentCreated   = "instrument.created"
	EventTypeInstrumentAmended   = "instrument.amended"
	EventTypeInstrumentDeposited = "instrument.deposited"
	EventTypeInstrumentCollected = "instrument.collected"
	EventTypeInstrumentEndorsed  = "instrument.endorsed"
	EventTypeInstrumentRejected  = "instrument.rejected"
	EventTypeInstrumentVoided    = "instrument.voided"
	EventTypeInstrumentSold      = "instrument.sold"
	EventTypeInstrumentCredited  = "instrument.credited"
)

const aggregateTypeInstrument = "Instrument"

// InstrumentCreatedEvent is raised when an instrument enters the portfolio
type InstrumentCreatedEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	BankName string          `json:"bank_name"`
	Kind     Kind            `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewInstrumentCreatedEvent creates a new InstrumentCreatedEvent
func NewInstrumentCreatedEvent(inst *Instrument) *InstrumentCreatedEvent {
	return &InstrumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentCreated, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		BankName:        inst.BankName,
		Kind:            inst.Kind,
		Amount:          inst.Amount,
	}
}

// InstrumentAmendedEvent is raised when an in-portfolio instrument's details change
type InstrumentAmendedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Amount decimal.Decimal `json:"amount"`
}

// NewInstrumentAmendedEvent creates a new InstrumentAmendedEvent
func NewInstrumentAmendedEvent(inst *Instrument) *InstrumentAmendedEvent {
	return &InstrumentAmendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentAmended, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		Amount:          inst.Amount,
	}
}

// InstrumentDepositedEvent is raised when an instrument is placed in clearing
type InstrumentDepositedEvent struct {
	shared.BaseDomainEvent
	Number    string          `json:"number"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewInstrumentDepositedEvent creates a new InstrumentDepositedEvent
func NewInstrumentDepositedEvent(inst *Instrument) *InstrumentDepositedEvent {
	return &InstrumentDepositedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentDeposited, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		AccountID:       inst.Deposit.AccountID,
		Amount:          inst.Amount,
	}
}

// InstrumentCollectedEvent is raised when deposited funds are confirmed realized
type InstrumentCollectedEvent struct {
	shared.BaseDomainEvent
	Number    string          `json:"number"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewInstrumentCollectedEvent creates a new InstrumentCollectedEvent
func NewInstrumentCollectedEvent(inst *Instrument) *InstrumentCollectedEvent {
	e := &InstrumentCollectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentCollected, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		Amount:          inst.Amount,
	}
	if inst.Deposit != nil {
		e.AccountID = inst.Deposit.AccountID
	}
	return e
}

// InstrumentEndorsedEvent is raised when control of the paper passes to a third party
type InstrumentEndorsedEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	Endorsee string          `json:"endorsee"`
	Amount   decimal.Decimal `json:"amount"`
}

// NewInstrumentEndorsedEvent creates a new InstrumentEndorsedEvent
func NewInstrumentEndorsedEvent(inst *Instrument) *InstrumentEndorsedEvent {
	return &InstrumentEndorsedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentEndorsed, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		Endorsee:        inst.Endorsement.Endorsee,
		Amount:          inst.Amount,
	}
}

// InstrumentRejectedEvent is raised when the bank permanently returns a deposited instrument
type InstrumentRejectedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"number"`
	Reason string          `json:"reason"`
	Amount decimal.Decimal `json:"amount"`
}

// NewInstrumentRejectedEvent creates a new InstrumentRejectedEvent
func NewInstrumentRejectedEvent(inst *Instrument) *InstrumentRejectedEvent {
	return &InstrumentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentRejected, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		Reason:          inst.Rejection.Reason,
		Amount:          inst.Amount,
	}
}

// InstrumentVoidedEvent is raised when an in-portfolio instrument is tombstoned
type InstrumentVoidedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewInstrumentVoidedEvent creates a new InstrumentVoidedEvent
func NewInstrumentVoidedEvent(inst *Instrument) *InstrumentVoidedEvent {
	return &InstrumentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentVoided, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
	}
}

// InstrumentSoldEvent is raised when an instrument is sold at a discount
type InstrumentSoldEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	LotID       uuid.UUID       `json:"lot_id"`
	Buyer       string          `json:"buyer"`
	NetProceeds decimal.Decimal `json:"net_proceeds"`
}

// NewInstrumentSoldEvent creates a new InstrumentSoldEvent
func NewInstrumentSoldEvent(inst *Instrument) *InstrumentSoldEvent {
	return &InstrumentSoldEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentSold, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		LotID:           inst.Sale.LotID,
		Buyer:           inst.Sale.Buyer,
		NetProceeds:     inst.Sale.NetProceeds,
	}
}

// InstrumentCreditedEvent is raised when sale proceeds are credited to an account
type InstrumentCreditedEvent struct {
	shared.BaseDomainEvent
	Number      string          `json:"number"`
	LotID       uuid.UUID       `json:"lot_id"`
	MovementID  uuid.UUID       `json:"movement_id"`
	NetProceeds decimal.Decimal `json:"net_proceeds"`
}

// NewInstrumentCreditedEvent creates a new InstrumentCreditedEvent
func NewInstrumentCreditedEvent(inst *Instrument) *InstrumentCreditedEvent {
	return &InstrumentCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstrumentCredited, aggregateTypeInstrument, inst.ID),
		Number:          inst.Number,
		LotID:           inst.Sale.LotID,
		MovementID:      *inst.Sale.CreditMovementID,
		NetProceeds:     inst.Sale.NetProceeds,
	}
}
