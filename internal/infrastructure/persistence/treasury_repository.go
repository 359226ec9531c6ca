package persistence

import (
	"context"
	"errors"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/gestion/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements treasury.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Save persists a new account
func (r *GormAccountRepository) Save(ctx context.Context, acc *treasury.Account) error {
	model := models.AccountModelFromDomain(acc)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates an account with optimistic locking
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, acc *treasury.Account, expectedVersion int) error {
	model := models.AccountModelFromDomain(acc)
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ? AND version = ?", acc.ID, expectedVersion).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The account has been modified by another transaction")
	}
	return nil
}

// FindByID retrieves an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	var model models.AccountModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode retrieves an account by its code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*treasury.Account, error) {
	var model models.AccountModel
	err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List retrieves accounts, paginated
func (r *GormAccountRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*treasury.Account], error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*treasury.Account]{}, err
	}

	var rows []models.AccountModel
	err := applyPagination(query, filter).Find(&rows).Error
	if err != nil {
		return shared.Paginated[*treasury.Account]{}, err
	}

	items := make([]*treasury.Account, 0, len(rows))
	for idx := range rows {
		items = append(items, rows[idx].ToDomain())
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GormMovementRepository implements treasury.MovementRepository using GORM.
// Movements are append-only so there is no update path.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Save appends a movement to the trail
func (r *GormMovementRepository) Save(ctx context.Context, m *treasury.Movement) error {
	model := models.MovementModelFromDomain(m)
	return r.db.WithContext(ctx).Create(model).Error
}

// List retrieves movements matching the filter, paginated
func (r *GormMovementRepository) List(ctx context.Context, filter treasury.MovementFilter) (shared.Paginated[*treasury.Movement], error) {
	query := r.db.WithContext(ctx).Model(&models.MovementModel{})

	if filter.AccountID != uuid.Nil {
		query = query.Where("account_id = ?", filter.AccountID)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.SourceType != "" {
		query = query.Where("source_type = ?", filter.SourceType)
	}
	if filter.PostedAfter != nil {
		query = query.Where("posting_date >= ?", *filter.PostedAfter)
	}
	if filter.PostedBefore != nil {
		query = query.Where("posting_date < ?", *filter.PostedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*treasury.Movement]{}, err
	}

	var rows []models.MovementModel
	err := applyPagination(query, filter.Filter).Find(&rows).Error
	if err != nil {
		return shared.Paginated[*treasury.Movement]{}, err
	}

	items := make([]*treasury.Movement, 0, len(rows))
	for idx := range rows {
		items = append(items, rows[idx].ToDomain())
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
