package invoice

import (
	"context"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter holds the query options for listing invoices
type Filter struct {
	shared.Filter
	Status       *Status
	DocumentType *DocumentType
	Supplier     string
	IssuedAfter  *time.Time
	IssuedBefore *time.Time
	OnlyOpen     bool
}

// Repository defines the persistence interface for vendor invoices
type Repository interface {
	// Save persists a new invoice
	Save(ctx context.Context, inv *VendorInvoice) error
	// SaveWithLock updates an invoice with optimistic locking, persisting
	// any newly appended payments
	SaveWithLock(ctx context.Context, inv *VendorInvoice, expectedVersion int) error
	// FindByID retrieves an invoice with its payment history
	FindByID(ctx context.Context, id uuid.UUID) (*VendorInvoice, error)
	// FindByDocument retrieves an invoice by its fiscal document triple
	FindByDocument(ctx context.Context, docType DocumentType, pointOfSale, documentNumber, supplierName string) (*VendorInvoice, error)
	// List retrieves invoices matching the filter, paginated
	List(ctx context.Context, filter Filter) (shared.Paginated[*VendorInvoice], error)
}
