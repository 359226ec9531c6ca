package persistence

import (
	"context"

	appinst "github.com/gestion/backend/internal/application/instrument"
	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/treasury"
	"gorm.io/gorm"
)

// GormInstrumentTransactionScope implements the instrument application
// TransactionScope using GORM transactions. Status transitions and the
// treasury postings they trigger commit or roll back together.
type GormInstrumentTransactionScope struct {
	db *gorm.DB
}

// NewGormInstrumentTransactionScope creates a new GormInstrumentTransactionScope.
func NewGormInstrumentTransactionScope(db *gorm.DB) *GormInstrumentTransactionScope {
	return &GormInstrumentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormInstrumentTransactionScope) Execute(ctx context.Context, fn func(repos appinst.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormInstrumentTxRepositories{tx: tx}
		return fn(repos)
	})
}

// gormInstrumentTxRepositories provides access to the repositories scoped
// to the current transaction.
type gormInstrumentTxRepositories struct {
	tx *gorm.DB
}

// InstrumentRepo returns the instrument repository scoped to the current transaction.
func (r *gormInstrumentTxRepositories) InstrumentRepo() instrument.Repository {
	return NewGormInstrumentRepository(r.tx)
}

// AccountRepo returns the treasury account repository scoped to the current transaction.
func (r *gormInstrumentTxRepositories) AccountRepo() treasury.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

// MovementRepo returns the movement repository scoped to the current transaction.
func (r *gormInstrumentTxRepositories) MovementRepo() treasury.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// Ensure GormInstrumentTransactionScope implements TransactionScope
var _ appinst.TransactionScope = (*GormInstrumentTransactionScope)(nil)

// Ensure gormInstrumentTxRepositories implements TransactionalRepositories
var _ appinst.TransactionalRepositories = (*gormInstrumentTxRepositories)(nil)
