package persistence

import (
	"context"

	appinv "github.com/gestion/backend/internal/application/invoice"
	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormInvoiceTransactionScope implements the invoice application
// TransactionScope using GORM transactions. Payment registration and the
// treasury posting it triggers commit or roll back together.
type GormInvoiceTransactionScope struct {
	db *gorm.DB
}

// NewGormInvoiceTransactionScope creates a new GormInvoiceTransactionScope.
func NewGormInvoiceTransactionScope(db *gorm.DB) *GormInvoiceTransactionScope {
	return &GormInvoiceTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInvoiceTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormInvoiceTxRepositories{tx: tx}
		return fn(repos)
	})
}

// gormInvoiceTxRepositories provides access to the repositories scoped to
// the current transaction.
type gormInvoiceTxRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormInvoiceTxRepositories) InvoiceRepo() invoice.Repository {
	return NewGormInvoiceRepository(r.tx)
}

// AccountRepo returns the treasury account repository scoped to the current transaction.
func (r *gormInvoiceTxRepositories) AccountRepo() treasury.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction.
func (r *gormInvoiceTxRepositories) MovementRepo() treasury.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Ensure GormInvoiceTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormInvoiceTransactionScope)(nil)

// Ensure gormInvoiceTxRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormInvoiceTxRepositories)(nil)
