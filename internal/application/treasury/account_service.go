package treasury

import (
	"context"
	"fmt"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/gestion/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CreateAccountRequest carries the details of a new treasury account
type CreateAccountRequest struct {
	ActorID uuid.UUID
	Code    string
	Name    string
	Type    treasury.AccountType
}

// AccountService handles treasury account management and movement queries.
// Business postings happen inside the instrument and invoice services; this
// service only opens, toggles and reads accounts.
type AccountService struct {
	accountRepo    treasury.AccountRepository
	movementRepo   treasury.MovementRepository
	eventPublisher shared.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accountRepo treasury.AccountRepository,
	movementRepo treasury.MovementRepository,
	eventPublisher shared.EventPublisher,
) *AccountService {
	return &AccountService{
		accountRepo:    accountRepo,
		movementRepo:   movementRepo,
		eventPublisher: eventPublisher,
	}
}

// Create opens a new treasury account with a unique code
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*treasury.Account, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "create")
	defer span.End()

	existing, err := s.accountRepo.FindByCode(ctx, req.Code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Account code %s already exists", req.Code))
		telemetry.RecordError(span, err)
		return nil, err
	}

	account, err := treasury.NewAccount(req.ActorID, req.Code, req.Name, req.Type)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, account.GetDomainEvents()...)
		account.ClearDomainEvents()
	}
	return account, nil
}

// Get retrieves an account by ID
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Account not found")
	}
	return account, nil
}

// List retrieves accounts, paginated
func (s *AccountService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*treasury.Account], error) {
	return s.accountRepo.List(ctx, filter)
}

// SetActive activates or deactivates an account
func (s *AccountService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*treasury.Account, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	expectedVersion := account.Version
	if active {
		account.Activate()
	} else {
		account.Deactivate()
	}
	if account.Version == expectedVersion {
		return account, nil
	}

	if err := s.accountRepo.SaveWithLock(ctx, account, expectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return account, nil
}

// ListMovements retrieves the movement trail, across all accounts unless
// the filter narrows it to one
func (s *AccountService) ListMovements(ctx context.Context, filter treasury.MovementFilter) (shared.Paginated[*treasury.Movement], error) {
	return s.movementRepo.List(ctx, filter)
}
