package invoice

import (
	"testing"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func newTestInvoice(t *testing.T, amounts Amounts) *VendorInvoice {
	t.Helper()
	inv, err := NewVendorInvoice(
		uuid.New(),
		DocumentInvoiceA,
		"0001",
		"00004567",
		"Proveedor SA",
		"30-12345678-9",
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		nil,
		amounts,
		Classification{},
	)
	require.NoError(t, err)
	return inv
}

func standardAmounts() Amounts {
	return Amounts{
		NetAmount: d("100000"),
		VAT21:     d("21000"),
	}
}

func TestNewVendorInvoice(t *testing.T) {
	t.Run("derives totals and pending status", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		assert.True(t, inv.Total.Equal(d("121000")), "total: %s", inv.Total)
		assert.True(t, inv.AmountPayable.Equal(d("121000")))
		assert.True(t, inv.BalanceDue.Equal(d("121000")))
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Equal(t, StatusPending, inv.Status)

		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceCreated, events[0].EventType())
	})

	t.Run("withholdings reduce payable not total", func(t *testing.T) {
		amounts := standardAmounts()
		amounts.WithholdingIncomeTax = d("2000")
		amounts.WithholdingGrossReceipts = d("1500")
		inv := newTestInvoice(t, amounts)

		assert.True(t, inv.Total.Equal(d("121000")))
		assert.True(t, inv.AmountPayable.Equal(d("117500")))
		assert.True(t, inv.BalanceDue.Equal(d("117500")))
	})

	t.Run("rejects negative component", func(t *testing.T) {
		amounts := standardAmounts()
		amounts.ExemptAmount = d("-1")

		_, err := NewVendorInvoice(uuid.New(), DocumentInvoiceB, "0001", "1", "Proveedor SA",
			"", time.Now(), nil, amounts, Classification{})

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects zero total", func(t *testing.T) {
		_, err := NewVendorInvoice(uuid.New(), DocumentInvoiceB, "0001", "1", "Proveedor SA",
			"", time.Now(), nil, Amounts{}, Classification{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invoice total must be positive")
	})

	t.Run("rejects withholdings exceeding total", func(t *testing.T) {
		amounts := Amounts{NetAmount: d("1000"), WithholdingVAT: d("1001")}

		_, err := NewVendorInvoice(uuid.New(), DocumentInvoiceB, "0001", "1", "Proveedor SA",
			"", time.Now(), nil, amounts, Classification{})

		require.Error(t, err)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewVendorInvoice(uuid.New(), DocumentInvoiceA, "0001", "1", "Proveedor SA",
			"", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), &due, standardAmounts(), Classification{})

		require.Error(t, err)
	})

	t.Run("rejects invalid document type", func(t *testing.T) {
		_, err := NewVendorInvoice(uuid.New(), DocumentType("INVOICE_X"), "0001", "1", "Proveedor SA",
			"", time.Now(), nil, standardAmounts(), Classification{})

		require.Error(t, err)
	})
}

func TestRegisterPayment(t *testing.T) {
	accountID := uuid.New()

	t.Run("partial then final payment walkthrough", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		require.True(t, inv.AmountPayable.Equal(d("121000")))

		p1, err := inv.RegisterPayment(d("60500"), time.Now(), MethodBankTransfer, accountID, nil, "")
		require.NoError(t, err)
		assert.True(t, p1.Amount.Equal(d("60500")))
		assert.True(t, inv.PaidAmount.Equal(d("60500")))
		assert.True(t, inv.BalanceDue.Equal(d("60500")))
		assert.Equal(t, StatusPartial, inv.Status)

		_, err = inv.RegisterPayment(d("60500"), time.Now(), MethodBankTransfer, accountID, nil, "R-42")
		require.NoError(t, err)
		assert.True(t, inv.BalanceDue.IsZero())
		assert.Equal(t, StatusPaid, inv.Status)
		assert.Len(t, inv.Payments, 2)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		_, err := inv.RegisterPayment(d("121000.01"), time.Now(), MethodCash, accountID, nil, "")

		require.Error(t, err)
		assertDomainCode(t, err, "OVERPAYMENT_REJECTED")
		assert.Equal(t, StatusPending, inv.Status)
		assert.Empty(t, inv.Payments)
	})

	t.Run("payment on paid invoice rejected", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		_, err := inv.RegisterPayment(d("121000"), time.Now(), MethodCash, accountID, nil, "")
		require.NoError(t, err)

		_, err = inv.RegisterPayment(d("1"), time.Now(), MethodCash, accountID, nil, "")

		require.Error(t, err)
		assertDomainCode(t, err, "OVERPAYMENT_REJECTED")
	})

	t.Run("check methods require instrument reference", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		_, err := inv.RegisterPayment(d("1000"), time.Now(), MethodCheck, accountID, nil, "")
		require.Error(t, err)
		assertDomainCode(t, err, "MISSING_INSTRUMENT_REFERENCE")

		_, err = inv.RegisterPayment(d("1000"), time.Now(), MethodECheck, accountID, nil, "")
		require.Error(t, err)
		assertDomainCode(t, err, "MISSING_INSTRUMENT_REFERENCE")

		instrumentID := uuid.New()
		p, err := inv.RegisterPayment(d("1000"), time.Now(), MethodECheck, accountID, &instrumentID, "")
		require.NoError(t, err)
		require.NotNil(t, p.InstrumentID)
		assert.Equal(t, instrumentID, *p.InstrumentID)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		_, err := inv.RegisterPayment(decimal.Zero, time.Now(), MethodCash, accountID, nil, "")

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects payment on void invoice", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		require.NoError(t, inv.Void())

		_, err := inv.RegisterPayment(d("1000"), time.Now(), MethodCash, accountID, nil, "")

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("payment raises event", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		inv.ClearDomainEvents()

		_, err := inv.RegisterPayment(d("1000"), time.Now(), MethodCash, accountID, nil, "")

		require.NoError(t, err)
		events := inv.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoicePaymentRegistered, events[0].EventType())
	})
}

func TestInvoiceUpdateAndVoid(t *testing.T) {
	t.Run("update amounts while pending", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		amounts := standardAmounts()
		amounts.PerceptionsVAT = d("3000")
		err := inv.UpdateAmounts(amounts)

		require.NoError(t, err)
		assert.True(t, inv.Total.Equal(d("124000")))
		assert.True(t, inv.BalanceDue.Equal(d("124000")))
	})

	t.Run("update rejected after payment", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		_, err := inv.RegisterPayment(d("1000"), time.Now(), MethodCash, uuid.New(), nil, "")
		require.NoError(t, err)

		err = inv.UpdateAmounts(standardAmounts())

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("void without payments", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		err := inv.Void()

		require.NoError(t, err)
		assert.Equal(t, StatusVoid, inv.Status)
		assert.NotNil(t, inv.VoidedAt)
	})

	t.Run("void with payments rejected", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		_, err := inv.RegisterPayment(d("1000"), time.Now(), MethodCash, uuid.New(), nil, "")
		require.NoError(t, err)

		err = inv.Void()

		require.Error(t, err)
		assertDomainCode(t, err, "INVOICE_HAS_PAYMENTS")
	})

	t.Run("double void rejected", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())
		require.NoError(t, inv.Void())

		err := inv.Void()

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("update classification while pending", func(t *testing.T) {
		inv := newTestInvoice(t, standardAmounts())

		err := inv.UpdateClassification(Classification{LedgerAccountCode: "511000", CostCenterCode: "CC-01"})

		require.NoError(t, err)
		assert.Equal(t, "511000", inv.Classification.LedgerAccountCode)
	})
}

func TestDocumentRef(t *testing.T) {
	inv := newTestInvoice(t, standardAmounts())

	assert.Equal(t, "INVOICE_A 0001-00004567", inv.DocumentRef())
}
