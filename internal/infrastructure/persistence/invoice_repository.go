package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save persists a new invoice with its payments
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.VendorInvoice) error {
	model := models.VendorInvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates an invoice with optimistic locking. Payments are
// append-only: rows appended by the domain since the load are inserted,
// existing rows are never touched.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.VendorInvoice, expectedVersion int) error {
	model := models.VendorInvoiceModelFromDomain(inv)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.VendorInvoiceModel{}).
			Where("id = ? AND version = ?", inv.ID, expectedVersion).
			Select("*").
			Omit("Payments").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "The invoice has been modified by another transaction")
		}

		var existing []uuid.UUID
		err := tx.Model(&models.PaymentModel{}).
			Where("invoice_id = ?", inv.ID).
			Pluck("id", &existing).Error
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}

		for idx := range model.Payments {
			if known[model.Payments[idx].ID] {
				continue
			}
			if err := tx.Create(&model.Payments[idx]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID retrieves an invoice with its payment history
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.VendorInvoice, error) {
	var model models.VendorInvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDocument retrieves an invoice by its fiscal document triple
func (r *GormInvoiceRepository) FindByDocument(ctx context.Context, docType invoice.DocumentType, pointOfSale, documentNumber, supplierName string) (*invoice.VendorInvoice, error) {
	var model models.VendorInvoiceModel
	err := r.db.WithContext(ctx).
		Preload("Payments").
		Where("document_type = ? AND point_of_sale = ? AND document_number = ? AND supplier_name = ?",
			docType, pointOfSale, documentNumber, supplierName).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List retrieves invoices matching the filter, paginated
func (r *GormInvoiceRepository) List(ctx context.Context, filter invoice.Filter) (shared.Paginated[*invoice.VendorInvoice], error) {
	query := r.db.WithContext(ctx).Model(&models.VendorInvoiceModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DocumentType != nil {
		query = query.Where("document_type = ?", *filter.DocumentType)
	}
	if filter.Supplier != "" {
		pattern := "%" + strings.ToLower(filter.Supplier) + "%"
		query = query.Where("LOWER(supplier_name) LIKE ? OR supplier_tax_id = ?", pattern, filter.Supplier)
	}
	if filter.IssuedAfter != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedAfter)
	}
	if filter.IssuedBefore != nil {
		query = query.Where("issue_date < ?", *filter.IssuedBefore)
	}
	if filter.OnlyOpen {
		query = query.Where("status IN ?", []invoice.Status{invoice.StatusPending, invoice.StatusPartial})
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(document_number) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*invoice.VendorInvoice]{}, err
	}

	var rows []models.VendorInvoiceModel
	err := applyPagination(query, filter.Filter).
		Preload("Payments").
		Find(&rows).Error
	if err != nil {
		return shared.Paginated[*invoice.VendorInvoice]{}, err
	}

	items := make([]*invoice.VendorInvoice, 0, len(rows))
	for idx := range rows {
		items = append(items, rows[idx].ToDomain())
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
