package invoice

import (
	"context"
	"fmt"

	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/gestion/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// Service handles the vendor invoice ledger: registration, amendment while
// pending, voiding and payment registration with its treasury posting.
type Service struct {
	repo           invoice.Repository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewService creates a new invoice Service
func NewService(
	repo invoice.Repository,
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
) *Service {
	return &Service{
		repo:           repo,
		txScope:        txScope,
		eventPublisher: eventPublisher,
	}
}

// Create registers a new pending invoice. The fiscal document triple must
// be unique for the supplier.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*invoice.VendorInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	existing, err := s.repo.FindByDocument(ctx, req.DocumentType, req.PointOfSale, req.DocumentNumber, req.SupplierName)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check document uniqueness: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Document %s %s-%s already registered for supplier %s",
				req.DocumentType, req.PointOfSale, req.DocumentNumber, req.SupplierName))
		telemetry.RecordError(span, err)
		return nil, err
	}

	inv, err := invoice.NewVendorInvoice(
		req.ActorID,
		req.DocumentType,
		req.PointOfSale,
		req.DocumentNumber,
		req.SupplierName,
		req.SupplierTaxID,
		req.IssueDate,
		req.DueDate,
		req.Amounts,
		req.Classification,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrDocumentRef, inv.DocumentRef())

	if err := s.repo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, inv)
	return inv, nil
}

// Get retrieves an invoice with its payment history
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*invoice.VendorInvoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return inv, nil
}

// List retrieves invoices matching the filter
func (s *Service) List(ctx context.Context, filter invoice.Filter) (shared.Paginated[*invoice.VendorInvoice], error) {
	return s.repo.List(ctx, filter)
}

// Update replaces the amounts and classification of a pending invoice
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*invoice.VendorInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, id.String())

	inv, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inv.Version
	if err := inv.UpdateAmounts(req.Amounts); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := inv.UpdateClassification(req.Classification); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inv, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, inv)
	return inv, nil
}

// Void annuls an invoice with no registered payments
func (s *Service) Void(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*invoice.VendorInvoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "void")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, id.String())

	inv, err := s.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	expectedVersion := inv.Version
	if err := inv.Void(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, inv, expectedVersion); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.publishEvents(ctx, inv)
	return inv, nil
}

// RegisterPayment appends a payment to the invoice and posts the matching
// balance decrease to the paying account, atomically. The invoice re-derives
// its paid figures and status from the appended payment.
func (s *Service) RegisterPayment(ctx context.Context, id uuid.UUID, req RegisterPaymentRequest) (*RegisterPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "register_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, id.String(),
		telemetry.SpanAttrAccountID, req.AccountID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var result *RegisterPaymentResult
	var inv *invoice.VendorInvoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if inv == nil {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}

		account, err := repos.AccountRepo().FindByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return shared.NewDomainError("NOT_FOUND", "Paying account not found")
		}

		expectedVersion := inv.Version
		payment, err := inv.RegisterPayment(
			req.Amount,
			req.PaymentDate,
			req.Method,
			req.AccountID,
			req.InstrumentID,
			req.ReceiptRef,
		)
		if err != nil {
			return err
		}

		accountVersion := account.Version
		if err := account.Post(treasury.DirectionOut, payment.Amount); err != nil {
			return err
		}

		movement, err := treasury.NewMovement(
			account.ID,
			treasury.DirectionOut,
			payment.Amount,
			fmt.Sprintf("Payment of %s", inv.DocumentRef()),
			treasury.SourceInvoicePayment,
			&payment.ID,
			payment.PaymentDate,
		)
		if err != nil {
			return err
		}

		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv, expectedVersion); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		if err := repos.AccountRepo().SaveWithLock(ctx, account, accountVersion); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}

		result = &RegisterPaymentResult{
			Payment:    *payment,
			PaidAmount: inv.PaidAmount,
			BalanceDue: inv.BalanceDue,
			Status:     inv.Status,
			MovementID: movement.ID,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, inv)
	return result, nil
}

func (s *Service) publishEvents(ctx context.Context, inv *invoice.VendorInvoice) {
	if s.eventPublisher == nil || inv == nil {
		return
	}
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	inv.ClearDomainEvents()
}
