package invoice

import (
	"context"
	"testing"
	"time"

	domain "github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// MockInvoiceRepository is a mock implementation of invoice.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *domain.VendorInvoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *domain.VendorInvoice, expectedVersion int) error {
	args := m.Called(ctx, inv, expectedVersion)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.VendorInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByDocument(ctx context.Context, docType domain.DocumentType, pointOfSale, documentNumber, supplierName string) (*domain.VendorInvoice, error) {
	args := m.Called(ctx, docType, pointOfSale, documentNumber, supplierName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter domain.Filter) (shared.Paginated[*domain.VendorInvoice], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*domain.VendorInvoice]), args.Error(1)
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

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func makeInvoice(t *testing.T) *domain.VendorInvoice {
	t.Helper()
	inv, err := domain.NewVendorInvoice(
		uuid.New(),
		domain.DocumentInvoiceA,
		"0001",
		"00004567",
		"Proveedor SA",
		"30-12345678-9",
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		nil,
		domain.Amounts{NetAmount: d("100000"), VAT21: d("21000")},
		domain.Classification{},
	)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func makeAccount(t *testing.T) *treasury.Account {
	t.Helper()
	acc, err := treasury.NewAccount(uuid.New(), "BN-CC-001", "Banco Nación cuenta corriente", treasury.AccountBank)
	require.NoError(t, err)
	acc.ClearDomainEvents()
	return acc
}

func newServiceForTest(invRepo *MockInvoiceRepository, accRepo *MockAccountRepository, mvRepo *MockMovementRepository) *Service {
	scope := NewNoOpTransactionScope(invRepo, accRepo, mvRepo)
	return NewService(invRepo, scope, nil)
}

func TestInvoiceServiceCreate(t *testing.T) {
	t.Run("creates when document triple is free", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		invRepo.On("FindByDocument", mock.Anything, domain.DocumentInvoiceA, "0001", "00004567", "Proveedor SA").
			Return(nil, nil)
		invRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := newServiceForTest(invRepo, new(MockAccountRepository), new(MockMovementRepository))

		inv, err := svc.Create(context.Background(), CreateInvoiceRequest{
			ActorID:        uuid.New(),
			DocumentType:   domain.DocumentInvoiceA,
			PointOfSale:    "0001",
			DocumentNumber: "00004567",
			SupplierName:   "Proveedor SA",
			IssueDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Amounts:        domain.Amounts{NetAmount: d("100000"), VAT21: d("21000")},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, inv.Status)
		assert.True(t, inv.Total.Equal(d("121000")))
		invRepo.AssertExpectations(t)
	})

	t.Run("duplicate document rejected", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		invRepo.On("FindByDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(makeInvoice(t), nil)

		svc := newServiceForTest(invRepo, new(MockAccountRepository), new(MockMovementRepository))

		_, err := svc.Create(context.Background(), CreateInvoiceRequest{
			DocumentType:   domain.DocumentInvoiceA,
			PointOfSale:    "0001",
			DocumentNumber: "00004567",
			SupplierName:   "Proveedor SA",
			IssueDate:      time.Now(),
			Amounts:        domain.Amounts{NetAmount: d("1000")},
		})

		require.Error(t, err)
		assertDomainCode(t, err, "ALREADY_EXISTS")
		invRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceRegisterPayment(t *testing.T) {
	t.Run("appends payment and posts an out movement", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		accRepo := new(MockAccountRepository)
		mvRepo := new(MockMovementRepository)

		inv := makeInvoice(t)
		account := makeAccount(t)

		invRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		invRepo.On("SaveWithLock", mock.Anything, inv, 1).Return(nil)
		accRepo.On("FindByID", mock.Anything, account.ID).Return(account, nil)
		accRepo.On("SaveWithLock", mock.Anything, account, 1).Return(nil)
		mvRepo.On("Save", mock.Anything, mock.MatchedBy(func(m *treasury.Movement) bool {
			return m.Direction == treasury.DirectionOut &&
				m.Amount.Equal(d("60500")) &&
				m.SourceType == treasury.SourceInvoicePayment
		})).Return(nil)

		svc := newServiceForTest(invRepo, accRepo, mvRepo)

		result, err := svc.RegisterPayment(context.Background(), inv.ID, RegisterPaymentRequest{
			ActorID:     uuid.New(),
			Amount:      d("60500"),
			PaymentDate: time.Now(),
			Method:      domain.MethodBankTransfer,
			AccountID:   account.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPartial, result.Status)
		assert.True(t, result.BalanceDue.Equal(d("60500")))
		assert.True(t, account.Balance.Equal(d("-60500")))
		mvRepo.AssertExpectations(t)
	})

	t.Run("overpayment posts nothing", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		accRepo := new(MockAccountRepository)
		mvRepo := new(MockMovementRepository)

		inv := makeInvoice(t)
		account := makeAccount(t)

		invRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		accRepo.On("FindByID", mock.Anything, account.ID).Return(account, nil)

		svc := newServiceForTest(invRepo, accRepo, mvRepo)

		_, err := svc.RegisterPayment(context.Background(), inv.ID, RegisterPaymentRequest{
			Amount:    d("121000.01"),
			Method:    domain.MethodCash,
			AccountID: account.ID,
		})

		require.Error(t, err)
		assertDomainCode(t, err, "OVERPAYMENT_REJECTED")
		assert.True(t, account.Balance.IsZero())
		mvRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		invRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("check payment without instrument reference rejected", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		accRepo := new(MockAccountRepository)

		inv := makeInvoice(t)
		account := makeAccount(t)

		invRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		accRepo.On("FindByID", mock.Anything, account.ID).Return(account, nil)

		svc := newServiceForTest(invRepo, accRepo, new(MockMovementRepository))

		_, err := svc.RegisterPayment(context.Background(), inv.ID, RegisterPaymentRequest{
			Amount:    d("1000"),
			Method:    domain.MethodECheck,
			AccountID: account.ID,
		})

		require.Error(t, err)
		assertDomainCode(t, err, "MISSING_INSTRUMENT_REFERENCE")
	})

	t.Run("unknown invoice is not found", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		invRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

		svc := newServiceForTest(invRepo, new(MockAccountRepository), new(MockMovementRepository))

		_, err := svc.RegisterPayment(context.Background(), uuid.New(), RegisterPaymentRequest{
			Amount:    d("1000"),
			Method:    domain.MethodCash,
			AccountID: uuid.New(),
		})

		require.Error(t, err)
		assertDomainCode(t, err, "NOT_FOUND")
	})
}

func TestInvoiceServiceVoid(t *testing.T) {
	t.Run("voids unpaid invoice", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		inv := makeInvoice(t)

		invRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		invRepo.On("SaveWithLock", mock.Anything, inv, 1).Return(nil)

		svc := newServiceForTest(invRepo, new(MockAccountRepository), new(MockMovementRepository))

		got, err := svc.Void(context.Background(), inv.ID, uuid.New())

		require.NoError(t, err)
		assert.Equal(t, domain.StatusVoid, got.Status)
	})

	t.Run("void with payments rejected", func(t *testing.T) {
		invRepo := new(MockInvoiceRepository)
		inv := makeInvoice(t)
		_, err := inv.RegisterPayment(d("1000"), time.Now(), domain.MethodCash, uuid.New(), nil, "")
		require.NoError(t, err)
		inv.ClearDomainEvents()

		invRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

		svc := newServiceForTest(invRepo, new(MockAccountRepository), new(MockMovementRepository))

		_, err = svc.Void(context.Background(), inv.ID, uuid.New())

		require.Error(t, err)
		assertDomainCode(t, err, "INVOICE_HAS_PAYMENTS")
		invRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestInvoiceServiceUpdate(t *testing.T) {
	invRepo := new(MockInvoiceRepository)
	inv := makeInvoice(t)

	invRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	invRepo.On("SaveWithLock", mock.Anything, inv, 1).Return(nil)

	svc := newServiceForTest(invRepo, new(MockAccountRepository), new(MockMovementRepository))

	got, err := svc.Update(context.Background(), inv.ID, UpdateInvoiceRequest{
		Amounts:        domain.Amounts{NetAmount: d("200000"), VAT21: d("42000")},
		Classification: domain.Classification{LedgerAccountCode: "511000"},
	})

	require.NoError(t, err)
	assert.True(t, got.Total.Equal(d("242000")))
	assert.Equal(t, "511000", got.Classification.LedgerAccountCode)
}
