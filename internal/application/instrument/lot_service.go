package instrument

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/gestion/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotService handles discount sales: selling instruments in batches as lots
// and crediting lot proceeds to treasury accounts. A solo sale is a
// singleton lot; there is exactly one settlement path.
type LotService struct {
	repo           instrument.Repository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLotService creates a new LotService
func NewLotService(
	repo instrument.Repository,
	txScope TransactionScope,
	eventPublisher shared.EventPublisher,
) *LotService {
	return &LotService{
		repo:           repo,
		txScope:        txScope,
		eventPublisher: eventPublisher,
	}
}

// PreviewSettlement computes the settlement figures without selling anything
func (s *LotService) PreviewSettlement(req PreviewSettlementRequest) (*instrument.Settlement, error) {
	return instrument.ComputeSettlement(req.GrossAmount, req.DiscountRate, req.TaxRate)
}

// SellSolo sells a single instrument as a singleton lot
func (s *LotService) SellSolo(ctx context.Context, id uuid.UUID, req SellBatchRequest) (*SellBatchResult, error) {
	req.InstrumentIDs = []uuid.UUID{id}
	return s.SellBatch(ctx, req)
}

// SellBatch sells a set of in-portfolio instruments as one lot, all or
// nothing. The settlement is computed once over the summed face amounts and
// pro-rated over the members; every member gets the shared lot id. If any
// requested instrument is missing or not sellable the whole batch fails
// with PARTIAL_BATCH_FAILURE and no member transitions.
func (s *LotService) SellBatch(ctx context.Context, req SellBatchRequest) (*SellBatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lot", "sell_batch")
	defer span.End()

	ids := dedupeIDs(req.InstrumentIDs)
	if len(ids) == 0 {
		err := shared.NewDomainError("INVALID_INPUT", "Batch must reference at least one instrument")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Buyer == "" {
		err := shared.NewDomainError("INVALID_INPUT", "Buyer entity name cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBuyer, req.Buyer,
		telemetry.SpanAttrMemberCount, len(ids),
	)

	var result *SellBatchResult
	var sold []*instrument.Instrument
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		members, err := repos.InstrumentRepo().FindByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load batch members: %w", err)
		}

		if offending := findUnsellable(ids, members); len(offending) > 0 {
			return shared.NewDomainError("PARTIAL_BATCH_FAILURE",
				fmt.Sprintf("Batch rejected, instruments not sellable: %s", joinIDs(offending)))
		}

		sortByID(members)

		faceAmounts := make([]decimal.Decimal, len(members))
		gross := decimal.Zero
		for idx, m := range members {
			faceAmounts[idx] = m.Amount
			gross = gross.Add(m.Amount)
		}

		settlement, err := instrument.ComputeSettlement(gross, req.DiscountRate, req.TaxRate)
		if err != nil {
			return err
		}
		shares, err := instrument.AllocateShares(settlement, faceAmounts)
		if err != nil {
			return err
		}

		lotID := uuid.New()
		netShares := make(map[uuid.UUID]decimal.Decimal, len(members))
		for idx, m := range members {
			expectedVersion := m.Version
			if err := m.MarkSold(lotID, req.Buyer, req.DiscountRate, req.TaxRate, shares[idx]); err != nil {
				return err
			}
			if err := repos.InstrumentRepo().SaveWithLock(ctx, m, expectedVersion); err != nil {
				return fmt.Errorf("failed to save instrument %s: %w", m.ID, err)
			}
			netShares[m.ID] = shares[idx].NetProceeds
		}

		sold = members
		result = &SellBatchResult{
			LotID:           lotID,
			InstrumentCount: len(members),
			Settlement:      *settlement,
			MemberNetShares: netShares,
		}
		telemetry.SetAttribute(span, telemetry.SpanAttrLotID, lotID.String())
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, m := range sold {
		s.publishEvents(ctx, m)
	}
	return result, nil
}

// CreditLot posts a lot's summed allocated net proceeds to an account as a
// single movement and stamps every uncredited member with the movement
// reference. A fully credited lot yields Affected 0 with no error, so the
// operation is retry-safe.
func (s *LotService) CreditLot(ctx context.Context, req CreditLotRequest) (*CreditLotResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "lot", "credit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrLotID, req.LotID.String(),
		telemetry.SpanAttrAccountID, req.AccountID.String(),
	)

	var result *CreditLotResult
	var credited []*instrument.Instrument
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		members, err := repos.InstrumentRepo().FindByLotID(ctx, req.LotID)
		if err != nil {
			return fmt.Errorf("failed to load lot members: %w", err)
		}
		if len(members) == 0 {
			return shared.NewDomainError("NOT_FOUND", "Lot not found")
		}

		uncredited := make([]*instrument.Instrument, 0, len(members))
		for _, m := range members {
			if m.IsSoldUncredited() {
				uncredited = append(uncredited, m)
			}
		}
		if len(uncredited) == 0 {
			result = &CreditLotResult{
				LotID:     req.LotID,
				Affected:  0,
				NetAmount: decimal.Zero,
			}
			return nil
		}

		net := decimal.Zero
		for _, m := range uncredited {
			net = net.Add(m.Sale.NetProceeds)
		}

		account, err := repos.AccountRepo().FindByID(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil {
			return shared.NewDomainError("NOT_FOUND", "Destination account not found")
		}

		accountVersion := account.Version
		if err := account.Post(treasury.DirectionIn, net); err != nil {
			return err
		}

		movement, err := treasury.NewMovement(
			account.ID,
			treasury.DirectionIn,
			net,
			fmt.Sprintf("Credit of lot %s (%d instruments)", req.LotID, len(uncredited)),
			treasury.SourceLotCredit,
			&req.LotID,
			account.UpdatedAt,
		)
		if err != nil {
			return err
		}

		for _, m := range uncredited {
			expectedVersion := m.Version
			if err := m.ApplyCredit(movement.ID); err != nil {
				return err
			}
			if err := repos.InstrumentRepo().SaveWithLock(ctx, m, expectedVersion); err != nil {
				return fmt.Errorf("failed to save instrument %s: %w", m.ID, err)
			}
		}

		if err := repos.AccountRepo().SaveWithLock(ctx, account, accountVersion); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return fmt.Errorf("failed to save movement: %w", err)
		}

		credited = uncredited
		movementID := movement.ID
		result = &CreditLotResult{
			LotID:      req.LotID,
			Affected:   len(uncredited),
			MovementID: &movementID,
			NetAmount:  net,
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, m := range credited {
		s.publishEvents(ctx, m)
	}
	return result, nil
}

// ListLots retrieves lot summaries, optionally only those with uncredited members
func (s *LotService) ListLots(ctx context.Context, filter shared.Filter, outstandingOnly bool) (shared.Paginated[*instrument.LotSummary], error) {
	return s.repo.ListLots(ctx, filter, outstandingOnly)
}

func (s *LotService) publishEvents(ctx context.Context, inst *instrument.Instrument) {
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

// dedupeIDs removes duplicate ids preserving first occurrence order
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// findUnsellable returns the requested ids that are missing or not in
// portfolio, sorted for a stable error message.
func findUnsellable(requested []uuid.UUID, found []*instrument.Instrument) []uuid.UUID {
	byID := make(map[uuid.UUID]*instrument.Instrument, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	offending := make([]uuid.UUID, 0)
	for _, id := range requested {
		m, ok := byID[id]
		if !ok || !m.IsInPortfolio() {
			offending = append(offending, id)
		}
	}
	sort.Slice(offending, func(a, b int) bool {
		return bytes.Compare(offending[a][:], offending[b][:]) < 0
	})
	return offending
}

// sortByID orders members ascending by id so concurrent batches lock rows
// in a consistent order.
func sortByID(members []*instrument.Instrument) {
	sort.Slice(members, func(a, b int) bool {
		return bytes.Compare(members[a].ID[:], members[b].ID[:]) < 0
	})
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for idx, id := range ids {
		parts[idx] = id.String()
	}
	return strings.Join(parts, ", ")
}
