package instrument

import (
	"fmt"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a negotiable instrument
type Status string

const (
	StatusInPortfolio Status = "IN_PORTFOLIO" // Received, held, fully operable
	StatusDeposited   Status = "DEPOSITED"    // Placed in clearing at a bank, funds not yet realized
	StatusCollected   Status = "COLLECTED"    // Funds confirmed realized, balance posted
	StatusEndorsed    Status = "ENDORSED"     // Control of the paper passed to a third party
	StatusSold        Status = "SOLD"         // Sold at a discount, alone or as part of a lot
	StatusRejected    Status = "REJECTED"     // Permanently returned by the bank
	StatusVoid        Status = "VOID"         // Tombstone, never left the portfolio
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusInPortfolio, StatusDeposited, StatusCollected,
		StatusEndorsed, StatusSold, StatusRejected, StatusVoid:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsFinal returns true when no further transition is possible from this
// status. ENDORSED and REJECTED are soft-terminal: the instrument simply
// falls out of active tracking.
func (s Status) IsFinal() bool {
	return s == StatusCollected || s == StatusEndorsed || s == StatusRejected || s == StatusVoid
}

// Kind represents the physical form of the instrument
type Kind string

const (
	KindPhysical   Kind = "PHYSICAL"
	KindElectronic Kind = "ELECTRONIC"
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	return k == KindPhysical || k == KindElectronic
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// DepositData records the deposit of an instrument into a clearing account
type DepositData struct {
	AccountID   uuid.UUID `json:"account_id"`
	DepositedAt time.Time `json:"deposited_at"`
}

// EndorsementData records the endorsement of an instrument to a third party
type EndorsementData struct {
	Endorsee   string    `json:"endorsee"`
	EndorsedAt time.Time `json:"endorsed_at"`
}

// RejectionData records the bank rejection of a deposited instrument
type RejectionData struct {
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejected_at"`
}

// SaleData records the sale of an instrument to a buyer at a discount.
// For batch sales every member of the lot shares the lot id, rates and
// buyer; the monetary figures are this instrument's allocated share of the
// batch settlement.
type SaleData struct {
	LotID            uuid.UUID       `json:"lot_id"`
	Buyer            string          `json:"buyer"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	GrossCommission  decimal.Decimal `json:"gross_commission"`
	TaxOnCommission  decimal.Decimal `json:"tax_on_commission"`
	TotalDeduction   decimal.Decimal `json:"total_deduction"`
	NetProceeds      decimal.Decimal `json:"net_proceeds"`
	SoldAt           time.Time       `json:"sold_at"`
	CreditMovementID *uuid.UUID      `json:"credit_movement_id,omitempty"`
	CreditedAt       *time.Time      `json:"credited_at,omitempty"`
}

// Instrument represents a check (physical or electronic) tracked through its
// handling lifecycle. It is the aggregate root of the instrument registry:
// created in portfolio, mutated only through the state machine transitions,
// never physically deleted. Exactly one of the side-data structs is set, and
// only the one matching the current status (COLLECTED keeps its DepositData;
// a credited SOLD instrument keeps its SaleData).
type Instrument struct {
	shared.AuditedAggregateRoot
	Number      string          `json:"number"`
	BankName    string          `json:"bank_name"`
	Kind        Kind            `json:"kind"`
	IssueDate   time.Time       `json:"issue_date"`
	DueDate     time.Time       `json:"due_date"` // Collectibility date ("fecha de cobro")
	Amount      decimal.Decimal `json:"amount"`
	Beneficiary string          `json:"beneficiary"`
	DrawerName  string          `json:"drawer_name"`
	Status      Status          `json:"status"`

	Deposit     *DepositData     `json:"deposit,omitempty"`
	Endorsement *EndorsementData `json:"endorsement,omitempty"`
	Rejection   *RejectionData   `json:"rejection,omitempty"`
	Sale        *SaleData        `json:"sale,omitempty"`
}

// NewInstrument creates a new instrument in portfolio
func NewInstrument(
	actorID uuid.UUID,
	number string,
	bankName string,
	kind Kind,
	issueDate time.Time,
	dueDate time.Time,
	amount valueobject.Money,
	beneficiary string,
	drawerName string,
) (*Instrument, error) {
	if err := validateDetails(number, bankName, kind, issueDate, dueDate, amount); err != nil {
		return nil, err
	}

	inst := &Instrument{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(actorID),
		Number:               number,
		BankName:             bankName,
		Kind:                 kind,
		IssueDate:            issueDate,
		DueDate:              dueDate,
		Amount:               amount.Amount(),
		Beneficiary:          beneficiary,
		DrawerName:           drawerName,
		Status:               StatusInPortfolio,
	}

	inst.AddDomainEvent(NewInstrumentCreatedEvent(inst))

	return inst, nil
}

func validateDetails(number, bankName string, kind Kind, issueDate, dueDate time.Time, amount valueobject.Money) error {
	if number == "" {
		return shared.NewDomainError("INVALID_INPUT", "Instrument number cannot be empty")
	}
	if len(number) > 50 {
		return shared.NewDomainError("INVALID_INPUT", "Instrument number cannot exceed 50 characters")
	}
	if bankName == "" {
		return shared.NewDomainError("INVALID_INPUT", "Issuing bank name cannot be empty")
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Instrument kind is not valid")
	}
	if issueDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Issue date is required")
	}
	if dueDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "Due date is required")
	}
	if issueDate.After(dueDate) {
		return shared.NewDomainError("INVALID_INPUT", "Issue date cannot be after due date")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Instrument amount must be positive")
	}
	return nil
}

// Amend mutates the instrument's identifying and monetary details.
// Permitted only in portfolio: every other state has already derived and
// stored computed figures from the pre-amendment amount.
func (i *Instrument) Amend(
	number string,
	bankName string,
	kind Kind,
	issueDate time.Time,
	dueDate time.Time,
	amount valueobject.Money,
	beneficiary string,
	drawerName string,
) error {
	if i.Status != StatusInPortfolio {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot amend instrument in %s status", i.Status))
	}
	if err := validateDetails(number, bankName, kind, issueDate, dueDate, amount); err != nil {
		return err
	}

	i.Number = number
	i.BankName = bankName
	i.Kind = kind
	i.IssueDate = issueDate
	i.DueDate = dueDate
	i.Amount = amount.Amount()
	i.Beneficiary = beneficiary
	i.DrawerName = drawerName
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentAmendedEvent(i))

	return nil
}

// MarkDeposited transitions the instrument into clearing at the destination
// account. Deposit alone never credits the balance; only Collect does.
func (i *Instrument) MarkDeposited(accountID uuid.UUID, depositDate time.Time) error {
	if i.Status != StatusInPortfolio {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot deposit instrument in %s status", i.Status))
	}
	if accountID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Destination account ID cannot be empty")
	}
	if depositDate.IsZero() {
		depositDate = time.Now()
	}

	i.Status = StatusDeposited
	i.Deposit = &DepositData{
		AccountID:   accountID,
		DepositedAt: depositDate,
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentDepositedEvent(i))

	return nil
}

// MarkCollected confirms the deposited funds as realized. The caller posts
// the balance increase; the state machine is the single source of truth for
// whether that posting has already happened, so a second call fails instead
// of double-posting.
func (i *Instrument) MarkCollected() error {
	if i.Status != StatusDeposited {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot collect instrument in %s status", i.Status))
	}

	i.Status = StatusCollected
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentCollectedEvent(i))

	return nil
}

// MarkEndorsed passes control of the paper to a third party
func (i *Instrument) MarkEndorsed(endorsee string, endorsementDate time.Time) error {
	if i.Status != StatusInPortfolio {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot endorse instrument in %s status", i.Status))
	}
	if endorsee == "" {
		return shared.NewDomainError("INVALID_INPUT", "Endorsee name cannot be empty")
	}
	if endorsementDate.IsZero() {
		endorsementDate = time.Now()
	}

	i.Status = StatusEndorsed
	i.Endorsement = &EndorsementData{
		Endorsee:   endorsee,
		EndorsedAt: endorsementDate,
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentEndorsedEvent(i))

	return nil
}

// MarkRejected records the permanent return of a deposited instrument.
// No balance reversal is needed: deposit never credited the balance.
func (i *Instrument) MarkRejected(reason string) error {
	if i.Status != StatusDeposited {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot reject instrument in %s status", i.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_INPUT", "Rejection reason cannot be empty")
	}

	i.Status = StatusRejected
	i.Deposit = nil
	i.Rejection = &RejectionData{
		Reason:     reason,
		RejectedAt: time.Now(),
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentRejectedEvent(i))

	return nil
}

// MarkVoid tombstones an instrument that never left the portfolio
func (i *Instrument) MarkVoid() error {
	if i.Status != StatusInPortfolio {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot void instrument in %s status", i.Status))
	}

	i.Status = StatusVoid
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentVoidedEvent(i))

	return nil
}

// MarkSold records the sale of the instrument as part of a lot (or a
// synthesized singleton lot). The monetary figures are this instrument's
// allocated share of the lot settlement; no credit movement exists yet.
func (i *Instrument) MarkSold(
	lotID uuid.UUID,
	buyer string,
	discountRate decimal.Decimal,
	taxRate decimal.Decimal,
	share SettlementShare,
) error {
	if i.Status != StatusInPortfolio {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot sell instrument in %s status", i.Status))
	}
	if lotID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Lot ID cannot be empty")
	}
	if buyer == "" {
		return shared.NewDomainError("INVALID_INPUT", "Buyer entity name cannot be empty")
	}

	i.Status = StatusSold
	i.Sale = &SaleData{
		LotID:           lotID,
		Buyer:           buyer,
		DiscountRate:    discountRate,
		TaxRate:         taxRate,
		GrossCommission: share.GrossCommission,
		TaxOnCommission: share.TaxOnCommission,
		TotalDeduction:  share.TotalDeduction,
		NetProceeds:     share.NetProceeds,
		SoldAt:          time.Now(),
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentSoldEvent(i))

	return nil
}

// ApplyCredit stamps the credit movement reference once the net proceeds of
// the sale have been posted to a destination account. Legal only for a sold,
// not yet credited instrument; re-invocation fails rather than double-stamp.
func (i *Instrument) ApplyCredit(movementID uuid.UUID) error {
	if i.Status != StatusSold || i.Sale == nil {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot credit instrument in %s status", i.Status))
	}
	if i.Sale.CreditMovementID != nil {
		return shared.NewDomainError("INVALID_TRANSITION", "Instrument sale proceeds have already been credited")
	}
	if movementID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Credit movement ID cannot be empty")
	}

	now := time.Now()
	i.Sale.CreditMovementID = &movementID
	i.Sale.CreditedAt = &now
	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewInstrumentCreditedEvent(i))

	return nil
}

// Helper methods

// GetAmountMoney returns the face amount as Money
func (i *Instrument) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyARS(i.Amount)
}

// IsInPortfolio returns true if the instrument is still fully operable
func (i *Instrument) IsInPortfolio() bool {
	return i.Status == StatusInPortfolio
}

// IsSoldUncredited returns true if the instrument was sold but its net
// proceeds have not yet been credited to an account
func (i *Instrument) IsSoldUncredited() bool {
	return i.Status == StatusSold && i.Sale != nil && i.Sale.CreditMovementID == nil
}

// IsCredited returns true if the sale proceeds have been credited
func (i *Instrument) IsCredited() bool {
	return i.Status == StatusSold && i.Sale != nil && i.Sale.CreditMovementID != nil
}

// IsOverdue returns true if the collectibility date has passed while the
// instrument is still in portfolio or in clearing
func (i *Instrument) IsOverdue() bool {
	if i.Status != StatusInPortfolio && i.Status != StatusDeposited {
		return false
	}
	return time.Now().After(i.DueDate)
}
