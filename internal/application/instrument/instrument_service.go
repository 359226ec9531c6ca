package instrument

import (
	"context"
	"fmt"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/gestion/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// Service handles the instrument registry operations: registration,
// amendment and the single-instrument lifecycle transitions. Batch sale and
// lot crediting live in LotService.
type Service struct {
	repo           instrument.Repository
	accountRepo    treasury.AccountRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewService creates a new instrument Service
func NewService(
	repo instrument.Repository,
	accountRepo treasury.AccountRepository,
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
) *Service {
	return &Service{
		repo:           repo,
		accountRepo:    accountRepo,
		txScope:        txScope,
		eventPublisher: eventPublisher,
	}
}

// Create registers a new instrument in the portfolio
func (s *Service) Create(ctx context.Context, req CreateInstrumentRequest) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrNumber, req.Number,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	inst, err := instrument.NewInstrument(
		req.ActorID,
		req.Number,
		req.BankName,
		req.Kind,
		req.IssueDate,
		req.DueDate,
		valueobject.NewMoneyARS(req.Amount),
		req.Beneficiary,
		req.DrawerName,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.Save(ctx, inst); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// Get retrieves an instrument by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*instrument.Instrument, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument: %w", err)
	}
	if inst == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Instrument not found")
	}
	return inst, nil
}

// List retrieves instruments matching the filter
func (s *Service) List(ctx context.Context, filter instrument.Filter) (shared.Paginated[*instrument.Instrument], error) {
	return s.repo.List(ctx, filter)
}

// Summary returns per-status counts and face amount totals
func (s *Service) Summary(ctx context.Context) ([]instrument.StatusCount, error) {
	return s.repo.SummarizeByStatus(ctx)
}

// Amend replaces the details of an in-portfolio instrument
func (s *Service) Amend(ctx context.Context, id uuid.UUID, req AmendInstrumentRequest) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "amend")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInstrumentID, id.String())

	inst, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inst.Version
	if err := inst.Amend(
		req.Number,
		req.BankName,
		req.Kind,
		req.IssueDate,
		req.DueDate,
		valueobject.NewMoneyARS(req.Amount),
		req.Beneficiary,
		req.DrawerName,
	); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inst, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// Deposit places an instrument in clearing at a bank account. The balance
// is untouched until Collect confirms the funds.
func (s *Service) Deposit(ctx context.Context, id uuid.UUID, req DepositRequest) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "deposit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInstrumentID, id.String(),
		telemetry.SpanAttrAccountID, req.AccountID.String(),
	)

	account, err := s.accountRepo.FindByID(ctx, req.AccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		err := shared.NewDomainError("NOT_FOUND", "Destination account not found")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !account.Active {
		err := shared.NewDomainError("ACCOUNT_INACTIVE", fmt.Sprintf("Account %s is inactive", account.Code))
		telemetry.RecordError(span, err)
		return nil, err
	}

	inst, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inst.Version
	if err := inst.MarkDeposited(req.AccountID, req.DepositDate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inst, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// Collect confirms the deposited funds as realized: the instrument
// transitions to COLLECTED and the face amount is posted to the deposit
// account, atomically. The state machine guarantees at most one posting.
func (s *Service) Collect(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "collect")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInstrumentID, id.String())

	var inst *instrument.Instrument
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inst, err = repos.InstrumentRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get instrument: %w", err)
		}
		if inst == nil {
			return shared.NewDomainError("NOT_FOUND", "Instrument not found")
		}

		depositAccountID := uuid.Nil
		if inst.Deposit != nil {
			depositAccountID = inst.Deposit.AccountID
		}

		expectedVersion := inst.Version
		if err := inst.MarkCollected(); err != nil {
			return err
		}

		account, err := repos.AccountRepo().FindByID(ctx, depositAccountID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return shared.NewDomainError("NOT_FOUND", "Deposit account not found")
		}

		accountVersion := account.Version
		if err := account.Post(treasury.DirectionIn, inst.Amount); err != nil {
			return err
		}

		movement, err := treasury.NewMovement(
			account.ID,
			treasury.DirectionIn,
			inst.Amount,
			fmt.Sprintf("Collection of instrument %s", inst.Number),
			treasury.SourceInstrumentCollection,
			&inst.ID,
			inst.UpdatedAt,
		)
		if err != nil {
			return err
		}

		if err := repos.InstrumentRepo().SaveWithLock(ctx, inst, expectedVersion); err != nil {
			return fmt.Errorf("failed to save instrument: %w", err)
		}
		if err := repos.AccountRepo().SaveWithLock(ctx, account, accountVersion); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// Endorse passes control of the paper to a third party
func (s *Service) Endorse(ctx context.Context, id uuid.UUID, req EndorseRequest) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "endorse")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInstrumentID, id.String())

	inst, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inst.Version
	if err := inst.MarkEndorsed(req.Endorsee, req.EndorsementDate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inst, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// Reject records the bank's permanent return of a deposited instrument.
// Nothing is posted: deposit never touched the balance.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, req RejectRequest) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "reject")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInstrumentID, id.String())

	inst, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inst.Version
	if err := inst.MarkRejected(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inst, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// Void tombstones an in-portfolio instrument
func (s *Service) Void(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*instrument.Instrument, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "instrument", "void")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInstrumentID, id.String())

	inst, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inst.Version
	if err := inst.MarkVoid(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inst, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save instrument: %w", err)
	}

	s.publishEvents(ctx, inst)
	return inst, nil
}

// publishEvents publishes the aggregate's pending domain events and clears
// them. Event delivery is best effort and never fails the operation.
func (s *Service) publishEvents(ctx context.Context, inst *instrument.Instrument) {
	if s.eventPublisher == nil || inst == nil {
		return
	}
	events := inst.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	inst.ClearDomainEvents()
}
