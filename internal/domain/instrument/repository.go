package instrument

import (
	"context"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter holds the query options for listing instruments
type Filter struct {
	shared.Filter
	Status     *Status
	Kind       *Kind
	BankName   string
	LotID      *uuid.UUID
	DueBefore  *time.Time
	DueAfter   *time.Time
	AmountMin  *decimal.Decimal
	AmountMax  *decimal.Decimal
}

// LotSummary is an aggregated view of one sale lot, derived from the sold
// instruments that share a lot id. Lots are a grouping, not a stored
// aggregate: the member instruments are the source of truth.
type LotSummary struct {
	LotID            uuid.UUID       `json:"lot_id"`
	Buyer            string          `json:"buyer"`
	DiscountRate     decimal.Decimal `json:"discount_rate"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	InstrumentCount  int             `json:"instrument_count"`
	TotalFaceAmount  decimal.Decimal `json:"total_face_amount"`
	TotalDeduction   decimal.Decimal `json:"total_deduction"`
	TotalNetProceeds decimal.Decimal `json:"total_net_proceeds"`
	SoldAt           time.Time       `json:"sold_at"`
	FullyCredited    bool            `json:"fully_credited"`
}

// StatusCount is one row of the portfolio summary
type StatusCount struct {
	Status      Status          `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Repository defines the persistence interface for instruments
type Repository interface {
	// Save persists a new instrument
	Save(ctx context.Context, inst *Instrument) error
	// SaveWithLock updates an instrument with optimistic locking
	SaveWithLock(ctx context.Context, inst *Instrument, expectedVersion int) error
	// FindByID retrieves an instrument by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Instrument, error)
	// FindByIDs retrieves multiple instruments by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Instrument, error)
	// FindByLotID retrieves all instruments belonging to a sale lot,
	// ordered by ascending ID
	FindByLotID(ctx context.Context, lotID uuid.UUID) ([]*Instrument, error)
	// List retrieves instruments matching the filter, paginated
	List(ctx context.Context, filter Filter) (shared.Paginated[*Instrument], error)
	// ListLots retrieves the lot summaries derived from sold instruments.
	// With outstandingOnly set, only lots with uncredited members are returned.
	ListLots(ctx context.Context, filter shared.Filter, outstandingOnly bool) (shared.Paginated[*LotSummary], error)
	// SummarizeByStatus returns per-status counts and face amount totals
	SummarizeByStatus(ctx context.Context) ([]StatusCount, error)
}
