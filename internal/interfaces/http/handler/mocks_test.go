package handler

import (
	"context"
	"sort"
	"strings"

	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repository fakes shared by the handler tests.

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return nil
}

type mockInstrumentRepo struct {
	items map[uuid.UUID]*instrument.Instrument
}

func newMockInstrumentRepo() *mockInstrumentRepo {
	return &mockInstrumentRepo{items: make(map[uuid.UUID]*instrument.Instrument)}
}

func (m *mockInstrumentRepo) Save(ctx context.Context, inst *instrument.Instrument) error {
	m.items[inst.ID] = inst
	return nil
}

func (m *mockInstrumentRepo) SaveWithLock(ctx context.Context, inst *instrument.Instrument, expectedVersion int) error {
	if _, ok := m.items[inst.ID]; !ok {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The instrument has been modified by another transaction")
	}
	m.items[inst.ID] = inst
	return nil
}

func (m *mockInstrumentRepo) FindByID(ctx context.Context, id uuid.UUID) (*instrument.Instrument, error) {
	if inst, ok := m.items[id]; ok {
		return inst, nil
	}
	return nil, nil
}

func (m *mockInstrumentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*instrument.Instrument, error) {
	result := make([]*instrument.Instrument, 0, len(ids))
	for _, id := range ids {
		if inst, ok := m.items[id]; ok {
			result = append(result, inst)
		}
	}
	return result, nil
}

func (m *mockInstrumentRepo) FindByLotID(ctx context.Context, lotID uuid.UUID) ([]*instrument.Instrument, error) {
	var result []*instrument.Instrument
	for _, inst := range m.items {
		if inst.Sale != nil && inst.Sale.LotID == lotID {
			result = append(result, inst)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.Compare(result[i].ID.String(), result[j].ID.String()) < 0
	})
	return result, nil
}

func (m *mockInstrumentRepo) List(ctx context.Context, filter instrument.Filter) (shared.Paginated[*instrument.Instrument], error) {
	var result []*instrument.Instrument
	for _, inst := range m.items {
		if filter.Status != nil && inst.Status != *filter.Status {
			continue
		}
		result = append(result, inst)
	}
	return shared.NewPaginated(result, int64(len(result)), filter.Page, filter.PageSize), nil
}

func (m *mockInstrumentRepo) ListLots(ctx context.Context, filter shared.Filter, outstandingOnly bool) (shared.Paginated[*instrument.LotSummary], error) {
	return shared.NewPaginated([]*instrument.LotSummary{}, 0, filter.Page, filter.PageSize), nil
}

func (m *mockInstrumentRepo) SummarizeByStatus(ctx context.Context) ([]instrument.StatusCount, error) {
	totals := make(map[instrument.Status]*instrument.StatusCount)
	for _, inst := range m.items {
		row, ok := totals[inst.Status]
		if !ok {
			row = &instrument.StatusCount{Status: inst.Status, TotalAmount: decimal.Zero}
			totals[inst.Status] = row
		}
		row.Count++
		row.TotalAmount = row.TotalAmount.Add(inst.Amount)
	}
	result := make([]instrument.StatusCount, 0, len(totals))
	for _, row := range totals {
		result = append(result, *row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Status < result[j].Status
	})
	return result, nil
}

type mockAccountRepo struct {
	accounts map[uuid.UUID]*treasury.Account
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[uuid.UUID]*treasury.Account)}
}

func (m *mockAccountRepo) Save(ctx context.Context, acc *treasury.Account) error {
	m.accounts[acc.ID] = acc
	return nil
}

func (m *mockAccountRepo) SaveWithLock(ctx context.Context, acc *treasury.Account, expectedVersion int) error {
	if _, ok := m.accounts[acc.ID]; !ok {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The account has been modified by another transaction")
	}
	m.accounts[acc.ID] = acc
	return nil
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Account, error) {
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, nil
}

func (m *mockAccountRepo) FindByCode(ctx context.Context, code string) (*treasury.Account, error) {
	for _, acc := range m.accounts {
		if acc.Code == code {
			return acc, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*treasury.Account], error) {
	result := make([]*treasury.Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		result = append(result, acc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return shared.NewPaginated(result, int64(len(result)), filter.Page, filter.PageSize), nil
}

type mockMovementRepo struct {
	movements []*treasury.Movement
}

func newMockMovementRepo() *mockMovementRepo {
	return &mockMovementRepo{}
}

func (m *mockMovementRepo) Save(ctx context.Context, mv *treasury.Movement) error {
	m.movements = append(m.movements, mv)
	return nil
}

func (m *mockMovementRepo) List(ctx context.Context, filter treasury.MovementFilter) (shared.Paginated[*treasury.Movement], error) {
	var result []*treasury.Movement
	for _, mv := range m.movements {
		if filter.AccountID != uuid.Nil && mv.AccountID != filter.AccountID {
			continue
		}
		result = append(result, mv)
	}
	return shared.NewPaginated(result, int64(len(result)), filter.Page, filter.PageSize), nil
}

type mockInvoiceRepo struct {
	invoices map[uuid.UUID]*invoice.VendorInvoice
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{invoices: make(map[uuid.UUID]*invoice.VendorInvoice)}
}

func (m *mockInvoiceRepo) Save(ctx context.Context, inv *invoice.VendorInvoice) error {
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) SaveWithLock(ctx context.Context, inv *invoice.VendorInvoice, expectedVersion int) error {
	if _, ok := m.invoices[inv.ID]; !ok {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "The invoice has been modified by another transaction")
	}
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*invoice.VendorInvoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, nil
}

func (m *mockInvoiceRepo) FindByDocument(ctx context.Context, docType invoice.DocumentType, pointOfSale, documentNumber, supplierName string) (*invoice.VendorInvoice, error) {
	for _, inv := range m.invoices {
		if inv.DocumentType == docType &&
			inv.PointOfSale == pointOfSale &&
			inv.DocumentNumber == documentNumber &&
			strings.EqualFold(inv.SupplierName, supplierName) {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, filter invoice.Filter) (shared.Paginated[*invoice.VendorInvoice], error) {
	var result []*invoice.VendorInvoice
	for _, inv := range m.invoices {
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		result = append(result, inv)
	}
	return shared.NewPaginated(result, int64(len(result)), filter.Page, filter.PageSize), nil
}
