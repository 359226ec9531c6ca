package models

import (
	"time"

	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the treasury Account aggregate root.
type AccountModel struct {
	AuditedAggregateModel
	Code    string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string               `gorm:"type:varchar(200);not null"`
	Type    treasury.AccountType `gorm:"type:varchar(20);not null"`
	Active  bool                 `gorm:"not null;default:true;index"`
	Balance decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "treasury_accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *treasury.Account {
	acc := &treasury.Account{
		Code:    m.Code,
		Name:    m.Name,
		Type:    m.Type,
		Active:  m.Active,
		Balance: m.Balance,
	}
	m.PopulateAuditedAggregateRoot(&acc.AuditedAggregateRoot)
	return acc
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(acc *treasury.Account) {
	m.FromDomainAuditedAggregateRoot(acc.AuditedAggregateRoot)
	m.Code = acc.Code
	m.Name = acc.Name
	m.Type = acc.Type
	m.Active = acc.Active
	m.Balance = acc.Balance
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(acc *treasury.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(acc)
	return m
}

// MovementModel is the persistence model for account movements. Rows are
// append-only.
type MovementModel struct {
	BaseModel
	AccountID   uuid.UUID          `gorm:"type:uuid;not null;index"`
	Direction   treasury.Direction `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Memo        string             `gorm:"type:varchar(500)"`
	SourceType  string             `gorm:"type:varchar(30);not null;index"`
	SourceID    *uuid.UUID         `gorm:"type:uuid;index"`
	PostingDate time.Time          `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "account_movements"
}

// ToDomain converts the persistence model to a domain Movement entity.
func (m *MovementModel) ToDomain() *treasury.Movement {
	return &treasury.Movement{
		BaseEntity:  m.BaseModel.ToDomain(),
		AccountID:   m.AccountID,
		Direction:   m.Direction,
		Amount:      m.Amount,
		Memo:        m.Memo,
		SourceType:  m.SourceType,
		SourceID:    m.SourceID,
		PostingDate: m.PostingDate,
	}
}

// FromDomain populates the persistence model from a domain Movement entity.
func (m *MovementModel) FromDomain(mv *treasury.Movement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.AccountID = mv.AccountID
	m.Direction = mv.Direction
	m.Amount = mv.Amount
	m.Memo = mv.Memo
	m.SourceType = mv.SourceType
	m.SourceID = mv.SourceID
	m.PostingDate = mv.PostingDate
}

// MovementModelFromDomain creates a new persistence model from a domain Movement.
func MovementModelFromDomain(mv *treasury.Movement) *MovementModel {
	m := &MovementModel{}
	m.FromDomain(mv)
	return m
}
