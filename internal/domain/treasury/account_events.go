package treasury

import (
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for the treasury aggregate
const (
	EventTypeAccountCreated  = "treasury.account_created"
	EventTypeMovementPosted  = "treasury.movement_posted"
)

const aggregateTypeAccount = "Account"

// AccountCreatedEvent is raised when a treasury account is opened
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Code string      `json:"code"`
	Name string      `json:"name"`
	Kind AccountType `json:"kind"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(acc *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, aggregateTypeAccount, acc.ID),
		Code:            acc.Code,
		Name:            acc.Name,
		Kind:            acc.Type,
	}
}

// MovementPostedEvent is raised when a movement is posted to an account
type MovementPostedEvent struct {
	shared.BaseDomainEvent
	MovementID uuid.UUID       `json:"movement_id"`
	Direction  Direction       `json:"direction"`
	Amount     decimal.Decimal `json:"amount"`
	SourceType string          `json:"source_type"`
	Balance    decimal.Decimal `json:"balance"`
}

// NewMovementPostedEvent creates a new MovementPostedEvent
func NewMovementPostedEvent(acc *Account, m *Movement) *MovementPostedEvent {
	return &MovementPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMovementPosted, aggregateTypeAccount, acc.ID),
		MovementID:      m.ID,
		Direction:       m.Direction,
		Amount:          m.Amount,
		SourceType:      m.SourceType,
		Balance:         acc.Balance,
	}
}
