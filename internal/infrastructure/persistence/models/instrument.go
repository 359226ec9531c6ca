package models

import (
	"time"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstrumentModel is the persistence model for the Instrument aggregate root.
// The status-dependent side data is flattened into nullable column groups so
// lot summaries can be derived with plain SQL over the sale columns.
type InstrumentModel struct {
	AuditedAggregateModel
	Number      string            `gorm:"type:varchar(50);not null;index"`
	BankName    string            `gorm:"type:varchar(200);not null"`
	Kind        instrument.Kind   `gorm:"type:varchar(20);not null"`
	IssueDate   time.Time         `gorm:"not null"`
	DueDate     time.Time         `gorm:"not null;index"`
	Amount      decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Beneficiary string            `gorm:"type:varchar(200)"`
	DrawerName  string            `gorm:"type:varchar(200)"`
	Status      instrument.Status `gorm:"type:varchar(20);not null;default:'IN_PORTFOLIO';index"`

	DepositAccountID *uuid.UUID `gorm:"type:uuid;index"`
	DepositedAt      *time.Time

	Endorsee   string `gorm:"type:varchar(200)"`
	EndorsedAt *time.Time

	RejectionReason string `gorm:"type:varchar(500)"`
	RejectedAt      *time.Time

	LotID            *uuid.UUID       `gorm:"type:uuid;index"`
	Buyer            string           `gorm:"type:varchar(200)"`
	DiscountRate     *decimal.Decimal `gorm:"type:decimal(7,4)"`
	TaxRate          *decimal.Decimal `gorm:"type:decimal(7,4)"`
	GrossCommission  *decimal.Decimal `gorm:"type:decimal(18,2)"`
	TaxOnCommission  *decimal.Decimal `gorm:"type:decimal(18,2)"`
	TotalDeduction   *decimal.Decimal `gorm:"type:decimal(18,2)"`
	NetProceeds      *decimal.Decimal `gorm:"type:decimal(18,2)"`
	SoldAt           *time.Time
	CreditMovementID *uuid.UUID `gorm:"type:uuid"`
	CreditedAt       *time.Time
}

// TableName returns the table name for GORM
func (InstrumentModel) TableName() string {
	return "instruments"
}

// ToDomain converts the persistence model to a domain Instrument entity.
func (m *InstrumentModel) ToDomain() *instrument.Instrument {
	inst := &instrument.Instrument{
		Number:      m.Number,
		BankName:    m.BankName,
		Kind:        m.Kind,
		IssueDate:   m.IssueDate,
		DueDate:     m.DueDate,
		Amount:      m.Amount,
		Beneficiary: m.Beneficiary,
		DrawerName:  m.DrawerName,
		Status:      m.Status,
	}
	m.PopulateAuditedAggregateRoot(&inst.AuditedAggregateRoot)

	if m.DepositAccountID != nil && m.DepositedAt != nil {
		inst.Deposit = &instrument.DepositData{
			AccountID:   *m.DepositAccountID,
			DepositedAt: *m.DepositedAt,
		}
	}
	if m.EndorsedAt != nil {
		inst.Endorsement = &instrument.EndorsementData{
			Endorsee:   m.Endorsee,
			EndorsedAt: *m.EndorsedAt,
		}
	}
	if m.RejectedAt != nil {
		inst.Rejection = &instrument.RejectionData{
			Reason:     m.RejectionReason,
			RejectedAt: *m.RejectedAt,
		}
	}
	if m.LotID != nil && m.SoldAt != nil {
		inst.Sale = &instrument.SaleData{
			LotID:            *m.LotID,
			Buyer:            m.Buyer,
			DiscountRate:     deref(m.DiscountRate),
			TaxRate:          deref(m.TaxRate),
			GrossCommission:  deref(m.GrossCommission),
			TaxOnCommission:  deref(m.TaxOnCommission),
			TotalDeduction:   deref(m.TotalDeduction),
			NetProceeds:      deref(m.NetProceeds),
			SoldAt:           *m.SoldAt,
			CreditMovementID: m.CreditMovementID,
			CreditedAt:       m.CreditedAt,
		}
	}
	return inst
}

// FromDomain populates the persistence model from a domain Instrument entity.
func (m *InstrumentModel) FromDomain(inst *instrument.Instrument) {
	m.FromDomainAuditedAggregateRoot(inst.AuditedAggregateRoot)
	m.Number = inst.Number
	m.BankName = inst.BankName
	m.Kind = inst.Kind
	m.IssueDate = inst.IssueDate
	m.DueDate = inst.DueDate
	m.Amount = inst.Amount
	m.Beneficiary = inst.Beneficiary
	m.DrawerName = inst.DrawerName
	m.Status = inst.Status

	m.DepositAccountID = nil
	m.DepositedAt = nil
	if inst.Deposit != nil {
		accountID := inst.Deposit.AccountID
		depositedAt := inst.Deposit.DepositedAt
		m.DepositAccountID = &accountID
		m.DepositedAt = &depositedAt
	}

	m.Endorsee = ""
	m.EndorsedAt = nil
	if inst.Endorsement != nil {
		endorsedAt := inst.Endorsement.EndorsedAt
		m.Endorsee = inst.Endorsement.Endorsee
		m.EndorsedAt = &endorsedAt
	}

	m.RejectionReason = ""
	m.RejectedAt = nil
	if inst.Rejection != nil {
		rejectedAt := inst.Rejection.RejectedAt
		m.RejectionReason = inst.Rejection.Reason
		m.RejectedAt = &rejectedAt
	}

	m.LotID = nil
	m.Buyer = ""
	m.DiscountRate = nil
	m.TaxRate = nil
	m.GrossCommission = nil
	m.TaxOnCommission = nil
	m.TotalDeduction = nil
	m.NetProceeds = nil
	m.SoldAt = nil
	m.CreditMovementID = nil
	m.CreditedAt = nil
	if inst.Sale != nil {
		lotID := inst.Sale.LotID
		soldAt := inst.Sale.SoldAt
		m.LotID = &lotID
		m.Buyer = inst.Sale.Buyer
		m.DiscountRate = ref(inst.Sale.DiscountRate)
		m.TaxRate = ref(inst.Sale.TaxRate)
		m.GrossCommission = ref(inst.Sale.GrossCommission)
		m.TaxOnCommission = ref(inst.Sale.TaxOnCommission)
		m.TotalDeduction = ref(inst.Sale.TotalDeduction)
		m.NetProceeds = ref(inst.Sale.NetProceeds)
		m.SoldAt = &soldAt
		m.CreditMovementID = inst.Sale.CreditMovementID
		m.CreditedAt = inst.Sale.CreditedAt
	}
}

// InstrumentModelFromDomain creates a new persistence model from a domain Instrument.
func InstrumentModelFromDomain(inst *instrument.Instrument) *InstrumentModel {
	m := &InstrumentModel{}
	m.FromDomain(inst)
	return m
}

func ref(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
