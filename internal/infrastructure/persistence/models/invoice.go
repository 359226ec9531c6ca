package models

import (
	"time"

	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorInvoiceModel is the persistence model for the VendorInvoice
// aggregate root. Payments live in their own table and are loaded with the
// aggregate; the fiscal document triple is unique per document type and
// supplier.
type VendorInvoiceModel struct {
	AuditedAggregateModel
	DocumentType   invoice.DocumentType `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoice_document,priority:1"`
	PointOfSale    string               `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoice_document,priority:2"`
	DocumentNumber string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_document,priority:3"`
	SupplierName   string               `gorm:"type:varchar(200);not null;uniqueIndex:idx_invoice_document,priority:4;index"`
	SupplierTaxID  string               `gorm:"type:varchar(20)"`
	IssueDate      time.Time            `gorm:"not null;index"`
	DueDate        *time.Time           `gorm:"index"`

	NetAmount                decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VAT21                    decimal.Decimal `gorm:"type:decimal(18,2);not null;column:vat_21"`
	VAT105                   decimal.Decimal `gorm:"type:decimal(18,2);not null;column:vat_10_5"`
	VAT27                    decimal.Decimal `gorm:"type:decimal(18,2);not null;column:vat_27"`
	ExemptAmount             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PerceptionsVAT           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PerceptionsGrossReceipts decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OtherTaxes               decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	WithholdingIncomeTax      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	WithholdingVAT            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	WithholdingGrossReceipts  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	WithholdingSocialSecurity decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	LedgerAccountCode string `gorm:"type:varchar(50)"`
	CostCenterCode    string `gorm:"type:varchar(50)"`
	ProjectCode       string `gorm:"type:varchar(50)"`

	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPayable decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceDue    decimal.Decimal `gorm:"type:decimal(18,2);not null;index"`
	Status        invoice.Status  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	VoidedAt      *time.Time

	Payments []PaymentModel `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (VendorInvoiceModel) TableName() string {
	return "vendor_invoices"
}

// ToDomain converts the persistence model to a domain VendorInvoice entity.
func (m *VendorInvoiceModel) ToDomain() *invoice.VendorInvoice {
	inv := &invoice.VendorInvoice{
		DocumentType:   m.DocumentType,
		PointOfSale:    m.PointOfSale,
		DocumentNumber: m.DocumentNumber,
		SupplierName:   m.SupplierName,
		SupplierTaxID:  m.SupplierTaxID,
		IssueDate:      m.IssueDate,
		DueDate:        m.DueDate,
		Amounts: invoice.Amounts{
			NetAmount:                 m.NetAmount,
			VAT21:                     m.VAT21,
			VAT105:                    m.VAT105,
			VAT27:                     m.VAT27,
			ExemptAmount:              m.ExemptAmount,
			PerceptionsVAT:            m.PerceptionsVAT,
			PerceptionsGrossReceipts:  m.PerceptionsGrossReceipts,
			OtherTaxes:                m.OtherTaxes,
			WithholdingIncomeTax:      m.WithholdingIncomeTax,
			WithholdingVAT:            m.WithholdingVAT,
			WithholdingGrossReceipts:  m.WithholdingGrossReceipts,
			WithholdingSocialSecurity: m.WithholdingSocialSecurity,
		},
		Classification: invoice.Classification{
			LedgerAccountCode: m.LedgerAccountCode,
			CostCenterCode:    m.CostCenterCode,
			ProjectCode:       m.ProjectCode,
		},
		Total:         m.Total,
		AmountPayable: m.AmountPayable,
		PaidAmount:    m.PaidAmount,
		BalanceDue:    m.BalanceDue,
		Status:        m.Status,
		VoidedAt:      m.VoidedAt,
		Payments:      make([]invoice.Payment, 0, len(m.Payments)),
	}
	m.PopulateAuditedAggregateRoot(&inv.AuditedAggregateRoot)

	for idx := range m.Payments {
		inv.Payments = append(inv.Payments, *m.Payments[idx].ToDomain())
	}
	return inv
}

// FromDomain populates the persistence model from a domain VendorInvoice entity.
func (m *VendorInvoiceModel) FromDomain(inv *invoice.VendorInvoice) {
	m.FromDomainAuditedAggregateRoot(inv.AuditedAggregateRoot)
	m.DocumentType = inv.DocumentType
	m.PointOfSale = inv.PointOfSale
	m.DocumentNumber = inv.DocumentNumber
	m.SupplierName = inv.SupplierName
	m.SupplierTaxID = inv.SupplierTaxID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate

	m.NetAmount = inv.Amounts.NetAmount
	m.VAT21 = inv.Amounts.VAT21
	m.VAT105 = inv.Amounts.VAT105
	m.VAT27 = inv.Amounts.VAT27
	m.ExemptAmount = inv.Amounts.ExemptAmount
	m.PerceptionsVAT = inv.Amounts.PerceptionsVAT
	m.PerceptionsGrossReceipts = inv.Amounts.PerceptionsGrossReceipts
	m.OtherTaxes = inv.Amounts.OtherTaxes
	m.WithholdingIncomeTax = inv.Amounts.WithholdingIncomeTax
	m.WithholdingVAT = inv.Amounts.WithholdingVAT
	m.WithholdingGrossReceipts = inv.Amounts.WithholdingGrossReceipts
	m.WithholdingSocialSecurity = inv.Amounts.WithholdingSocialSecurity

	m.LedgerAccountCode = inv.Classification.LedgerAccountCode
	m.CostCenterCode = inv.Classification.CostCenterCode
	m.ProjectCode = inv.Classification.ProjectCode

	m.Total = inv.Total
	m.AmountPayable = inv.AmountPayable
	m.PaidAmount = inv.PaidAmount
	m.BalanceDue = inv.BalanceDue
	m.Status = inv.Status
	m.VoidedAt = inv.VoidedAt

	m.Payments = make([]PaymentModel, 0, len(inv.Payments))
	for idx := range inv.Payments {
		pm := PaymentModel{}
		pm.FromDomain(&inv.Payments[idx])
		m.Payments = append(m.Payments, pm)
	}
}

// VendorInvoiceModelFromDomain creates a new persistence model from a domain VendorInvoice.
func VendorInvoiceModelFromDomain(inv *invoice.VendorInvoice) *VendorInvoiceModel {
	m := &VendorInvoiceModel{}
	m.FromDomain(inv)
	return m
}

// PaymentModel is the persistence model for invoice payments. Rows are
// append-only.
type PaymentModel struct {
	BaseModel
	InvoiceID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentDate  time.Time             `gorm:"not null;index"`
	Method       invoice.PaymentMethod `gorm:"type:varchar(20);not null"`
	AccountID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	InstrumentID *uuid.UUID            `gorm:"type:uuid;index"`
	ReceiptRef   string                `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *invoice.Payment {
	return &invoice.Payment{
		BaseEntity:   m.BaseModel.ToDomain(),
		InvoiceID:    m.InvoiceID,
		Amount:       m.Amount,
		PaymentDate:  m.PaymentDate,
		Method:       m.Method,
		AccountID:    m.AccountID,
		InstrumentID: m.InstrumentID,
		ReceiptRef:   m.ReceiptRef,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *invoice.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.AccountID = p.AccountID
	m.InstrumentID = p.InstrumentID
	m.ReceiptRef = p.ReceiptRef
}
