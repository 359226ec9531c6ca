package invoice

import (
	"context"

	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to the repositories a
// payment registration touches: the invoice, the paying account and the
// movement trail commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() invoice.Repository
	// AccountRepo returns the treasury account repository scoped to the current transaction
	AccountRepo() treasury.AccountRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() treasury.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	invoiceRepo  invoice.Repository
	accountRepo  treasury.AccountRepository
	movementRepo treasury.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo invoice.Repository,
	accountRepo treasury.AccountRepository,
	movementRepo treasury.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:  invoiceRepo,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() invoice.Repository {
	return s.invoiceRepo
}

// AccountRepo returns the treasury account repository.
func (s *NoOpTransactionScope) AccountRepo() treasury.AccountRepository {
	return s.accountRepo
}

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() treasury.MovementRepository {
	return s.movementRepo
}
