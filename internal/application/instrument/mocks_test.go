package instrument

import (
	"context"
	"testing"

	domain "github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// MockInstrumentRepository is a mock implementation of instrument.Repository
type MockInstrumentRepository struct {
	mock.Mock
}

func (m *MockInstrumentRepository) Save(ctx context.Context, inst *domain.Instrument) error {
	args := m.Called(ctx, inst)
	return args.Error(0)
}

func (m *MockInstrumentRepository) SaveWithLock(ctx context.Context, inst *domain.Instrument, expectedVersion int) error {
	args := m.Called(ctx, inst, expectedVersion)
	return args.Error(0)
}

func (m *MockInstrumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Instrument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Instrument, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) FindByLotID(ctx context.Context, lotID uuid.UUID) ([]*domain.Instrument, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Instrument), args.Error(1)
}

func (m *MockInstrumentRepository) List(ctx context.Context, filter domain.Filter) (shared.Paginated[*domain.Instrument], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*domain.Instrument]), args.Error(1)
}

func (m *MockInstrumentRepository) ListLots(ctx context.Context, filter shared.Filter, outstandingOnly bool) (shared.Paginated[*domain.LotSummary], error) {
	args := m.Called(ctx, filter, outstandingOnly)
	return args.Get(0).(shared.Paginated[*domain.LotSummary]), args.Error(1)
}

func (m *MockInstrumentRepository) SummarizeByStatus(ctx context.Context) ([]domain.StatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusCount), args.Error(1)
}

// MockAccountRepository is a mock implementation of treasury.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Save(ctx context.Context, acc *treasury.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) SaveWithLock(ctx context.Context, acc *treasury.Account, expectedVersion int) error {
	args := m.Called(ctx, acc, expectedVersion)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, code string) (*treasury.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*treasury.Account], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*treasury.Account]), args.Error(1)
}

// MockMovementRepository is a mock implementation of treasury.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Save(ctx context.Context, mv *treasury.Movement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *MockMovementRepository) List(ctx context.Context, filter treasury.MovementFilter) (shared.Paginated[*treasury.Movement], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*treasury.Movement]), args.Error(1)
}
