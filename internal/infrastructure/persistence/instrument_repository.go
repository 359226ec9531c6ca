package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormInstrumentRepository implements instrument.Repository using GORM
type GormInstrumentRepository struct {
	db *gorm.DB
}

// NewGormInstrumentRepository creates a new GormInstrumentRepository
func NewGormInstrumentRepository(db *gorm.DB) *GormInstrumentRepository {
	return &GormInstrumentRepository{db: db}
}

// Save persists a new instrument
func (r *GormInstrumentRepository) Save(ctx context.Context, inst *instrument.Instrument) error {
	model := models.InstrumentModelFromDomain(inst)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates an instrument with optimistic locking. The domain
// mutation already incremented Version, so the row must still carry the
// expected pre-mutation version.
func (r *GormInstrumentRepository) SaveWithLock(ctx context.Context, inst *instrument.Instrument, expectedVersion int) error {
	model := models.InstrumentModelFromDomain(inst)
	result := r.db.WithContext(ctx).
		Model(&models.InstrumentModel{}).
		Where("id = ? AND version = ?", inst.ID, expectedVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The instrument has been modified by another transaction")
	}
	return nil
}

// FindByID retrieves an instrument by its ID
func (r *GormInstrumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*instrument.Instrument, error) {
	var model models.InstrumentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs retrieves multiple instruments by their IDs, ordered by
// ascending ID
func (r *GormInstrumentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*instrument.Instrument, error) {
	if len(ids) == 0 {
		return []*instrument.Instrument{}, nil
	}
	var rows []models.InstrumentModel
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainInstruments(rows), nil
}

// FindByLotID retrieves all instruments belonging to a sale lot, ordered
// by ascending ID
func (r *GormInstrumentRepository) FindByLotID(ctx context.Context, lotID uuid.UUID) ([]*instrument.Instrument, error) {
	var rows []models.InstrumentModel
	err := r.db.WithContext(ctx).
		Where("lot_id = ?", lotID).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainInstruments(rows), nil
}

// List retrieves instruments matching the filter, paginated
func (r *GormInstrumentRepository) List(ctx context.Context, filter instrument.Filter) (shared.Paginated[*instrument.Instrument], error) {
	query := r.db.WithContext(ctx).Model(&models.InstrumentModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.BankName != "" {
		query = query.Where("LOWER(bank_name) LIKE ?", "%"+strings.ToLower(filter.BankName)+"%")
	}
	if filter.LotID != nil {
		query = query.Where("lot_id = ?", *filter.LotID)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date >= ?", *filter.DueAfter)
	}
	if filter.AmountMin != nil {
		query = query.Where("amount >= ?", *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		query = query.Where("amount <= ?", *filter.AmountMax)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(drawer_name) LIKE ? OR LOWER(beneficiary) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*instrument.Instrument]{}, err
	}

	var rows []models.InstrumentModel
	err := applyPagination(query, filter.Filter).Find(&rows).Error
	if err != nil {
		return shared.Paginated[*instrument.Instrument]{}, err
	}

	return shared.NewPaginated(toDomainInstruments(rows), total, filter.Page, filter.PageSize), nil
}

// lotRow is the scan target for the lot aggregation. The sale columns
// shared by a lot (buyer, rates, sold_at) are identical across its rows,
// so MIN picks the common value.
type lotRow struct {
	LotID            uuid.UUID
	Buyer            string
	DiscountRate     decimal.Decimal
	TaxRate          decimal.Decimal
	SoldAt           time.Time
	InstrumentCount  int
	TotalFaceAmount  decimal.Decimal
	TotalDeduction   decimal.Decimal
	TotalNetProceeds decimal.Decimal
	UncreditedCount  int64
}

// ListLots derives lot summaries from sold instruments. Lots have no table
// of their own: the sale columns are the source of truth, so the database
// groups them by lot_id without materializing individual rows.
func (r *GormInstrumentRepository) ListLots(ctx context.Context, filter shared.Filter, outstandingOnly bool) (shared.Paginated[*instrument.LotSummary], error) {
	grouped := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.InstrumentModel{}).
			Select("lot_id, MIN(buyer) AS buyer, MIN(discount_rate) AS discount_rate, " +
				"MIN(tax_rate) AS tax_rate, MIN(sold_at) AS sold_at, " +
				"COUNT(*) AS instrument_count, SUM(amount) AS total_face_amount, " +
				"SUM(total_deduction) AS total_deduction, SUM(net_proceeds) AS total_net_proceeds, " +
				"COUNT(*) - COUNT(credit_movement_id) AS uncredited_count").
			Where("lot_id IS NOT NULL").
			Group("lot_id")
		if outstandingOnly {
			q = q.Having("COUNT(*) > COUNT(credit_movement_id)")
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Table("(?) AS lots", grouped()).Count(&total).Error; err != nil {
		return shared.Paginated[*instrument.LotSummary]{}, err
	}

	var rows []lotRow
	err := grouped().
		Order("sold_at desc").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Scan(&rows).Error
	if err != nil {
		return shared.Paginated[*instrument.LotSummary]{}, err
	}

	summaries := make([]*instrument.LotSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, &instrument.LotSummary{
			LotID:            row.LotID,
			Buyer:            row.Buyer,
			DiscountRate:     row.DiscountRate,
			TaxRate:          row.TaxRate,
			SoldAt:           row.SoldAt,
			InstrumentCount:  row.InstrumentCount,
			TotalFaceAmount:  row.TotalFaceAmount,
			TotalDeduction:   row.TotalDeduction,
			TotalNetProceeds: row.TotalNetProceeds,
			FullyCredited:    row.UncreditedCount == 0,
		})
	}
	return shared.NewPaginated(summaries, total, filter.Page, filter.PageSize), nil
}

// SummarizeByStatus returns per-status counts and face amount totals
func (r *GormInstrumentRepository) SummarizeByStatus(ctx context.Context) ([]instrument.StatusCount, error) {
	var rows []struct {
		Status      instrument.Status
		Count       int64
		TotalAmount decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.InstrumentModel{}).
		Select("status, COUNT(*) AS count, SUM(amount) AS total_amount").
		Group("status").
		Order("status asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]instrument.StatusCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, instrument.StatusCount{
			Status:      row.Status,
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
		})
	}
	return counts, nil
}

func toDomainInstruments(rows []models.InstrumentModel) []*instrument.Instrument {
	out := make([]*instrument.Instrument, 0, len(rows))
	for idx := range rows {
		out = append(out, rows[idx].ToDomain())
	}
	return out
}
