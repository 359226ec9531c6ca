package instrument

import (
	"context"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/treasury"
)

// TransactionScope provides transactional access to the repositories the
// instrument operations touch. Everything executed within the scope is
// committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
//
// Balance postings (collect, lot credit) mutate an Account aggregate and
// append a Movement in the same transaction as the instrument transition,
// which is why the treasury repositories are part of this scope.
type TransactionalRepositories interface {
	// InstrumentRepo returns the instrument repository scoped to the current transaction
	InstrumentRepo() instrument.Repository
	// AccountRepo returns the treasury account repository scoped to the current transaction
	AccountRepo() treasury.AccountRepository
	// MovementRepo returns the movement repository scoped to the current transaction
	MovementRepo() treasury.MovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing.
type NoOpTransactionScope struct {
	instrumentRepo instrument.Repository
	accountRepo    treasury.AccountRepository
	movementRepo   treasury.MovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	instrumentRepo instrument.Repository,
	accountRepo treasury.AccountRepository,
	movementRepo treasury.MovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		instrumentRepo: instrumentRepo,
		accountRepo:    accountRepo,
		movementRepo:   movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InstrumentRepo returns the instrument repository.
func (s *NoOpTransactionScope) InstrumentRepo() instrument.Repository {
	return s.instrumentRepo
}

// AccountRepo returns the treasury account repository.
func (s *NoOpTransactionScope) AccountRepo() treasury.AccountRepository {
	return s.accountRepo
}

// MovementRepo returns the movement repository.
func (s *NoOpTransactionScope) MovementRepo() treasury.MovementRepository {
	return s.movementRepo
}
