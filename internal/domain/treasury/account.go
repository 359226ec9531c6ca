package treasury

import (
	"fmt"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType represents the kind of treasury account
type AccountType string

const (
	AccountCash AccountType = "CASH"
	AccountBank AccountType = "BANK"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	return t == AccountCash || t == AccountBank
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// Account is a balance sink for collection, credit and payment postings.
// The balance only moves through Post; movements are recorded alongside as
// the append-only trail.
type Account struct {
	shared.AuditedAggregateRoot
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Type    AccountType     `json:"type"`
	Active  bool            `json:"active"`
	Balance decimal.Decimal `json:"balance"`
}

// NewAccount creates a new active treasury account with zero balance
func NewAccount(actorID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account type is not valid")
	}

	acc := &Account{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		Code:                 code,
		Name:                 name,
		Type:                 accountType,
		Active:               true,
		Balance:              decimal.Zero,
	}

	acc.AddDomainEvent(NewAccountCreatedEvent(acc))

	return acc, nil
}

// Post applies a movement to the balance. An inactive account accepts no
// postings; balances may go negative (overdraft is a business reality, not
// an invariant violation).
func (a *Account) Post(direction Direction, amount decimal.Decimal) error {
	if !a.Active {
		return shared.NewDomainError("ACCOUNT_INACTIVE", fmt.Sprintf("Account %s is inactive", a.Code))
	}
	if !direction.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Movement direction is not valid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Movement amount must be positive")
	}

	if direction == DirectionIn {
		a.Balance = a.Balance.Add(amount)
	} else {
		a.Balance = a.Balance.Sub(amount)
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Activate re-enables postings on the account
func (a *Account) Activate() {
	if a.Active {
		return
	}
	a.Active = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Deactivate disables postings on the account
func (a *Account) Deactivate() {
	if !a.Active {
		return
	}
	a.Active = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}
