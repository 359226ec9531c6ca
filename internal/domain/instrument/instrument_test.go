package instrument

import (
	"testing"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
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

func newTestInstrument(t *testing.T) *Instrument {
	t.Helper()
	inst, err := NewInstrument(
		uuid.New(),
		"00012345",
		"Banco Nación",
		KindElectronic,
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyARSFromFloat(100000),
		"ACME SRL",
		"Cliente SA",
	)
	require.NoError(t, err)
	return inst
}

func testShare(amount string) SettlementShare {
	s, err := ComputeSettlement(d(amount), d("7"), d("21"))
	if err != nil {
		panic(err)
	}
	return SettlementShare{
		GrossCommission: s.GrossCommission,
		TaxOnCommission: s.TaxOnCommission,
		TotalDeduction:  s.TotalDeduction,
		NetProceeds:     s.NetProceeds,
	}
}

func TestNewInstrument(t *testing.T) {
	t.Run("creates instrument in portfolio", func(t *testing.T) {
		inst := newTestInstrument(t)

		assert.Equal(t, StatusInPortfolio, inst.Status)
		assert.Equal(t, 1, inst.Version)
		assert.Nil(t, inst.Deposit)
		assert.Nil(t, inst.Sale)
		assert.True(t, inst.IsInPortfolio())

		events := inst.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInstrumentCreated, events[0].EventType())
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewInstrument(uuid.New(), "", "Banco Nación", KindPhysical,
			time.Now(), time.Now().AddDate(0, 1, 0),
			valueobject.NewMoneyARSFromFloat(1000), "ACME SRL", "Cliente SA")

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_INPUT")
	})

	t.Run("rejects issue date after due date", func(t *testing.T) {
		_, err := NewInstrument(uuid.New(), "123", "Banco Nación", KindPhysical,
			time.Now().AddDate(0, 2, 0), time.Now(),
			valueobject.NewMoneyARSFromFloat(1000), "ACME SRL", "Cliente SA")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Issue date cannot be after due date")
	})

	t.Run("allows issue date equal to due date", func(t *testing.T) {
		day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		_, err := NewInstrument(uuid.New(), "123", "Banco Nación", KindPhysical,
			day, day, valueobject.NewMoneyARSFromFloat(1000), "ACME SRL", "Cliente SA")

		require.NoError(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInstrument(uuid.New(), "123", "Banco Nación", KindPhysical,
			time.Now(), time.Now().AddDate(0, 1, 0),
			valueobject.ZeroARS(), "ACME SRL", "Cliente SA")

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		_, err := NewInstrument(uuid.New(), "123", "Banco Nación", Kind("PAPER"),
			time.Now(), time.Now().AddDate(0, 1, 0),
			valueobject.NewMoneyARSFromFloat(1000), "ACME SRL", "Cliente SA")

		require.Error(t, err)
	})
}

func TestInstrumentAmend(t *testing.T) {
	t.Run("amends in portfolio", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.Amend("99999", "Banco Galicia", KindPhysical,
			inst.IssueDate, inst.DueDate,
			valueobject.NewMoneyARSFromFloat(250000), "Otro SRL", "Cliente SA")

		require.NoError(t, err)
		assert.Equal(t, "99999", inst.Number)
		assert.Equal(t, "Banco Galicia", inst.BankName)
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(250000)))
		assert.Equal(t, 2, inst.Version)
	})

	t.Run("rejects amend after deposit", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkDeposited(uuid.New(), time.Now()))

		err := inst.Amend("99999", "Banco Galicia", KindPhysical,
			inst.IssueDate, inst.DueDate,
			valueobject.NewMoneyARSFromFloat(250000), "Otro SRL", "Cliente SA")

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("invalid amendment leaves instrument untouched", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.Amend("", "Banco Galicia", KindPhysical,
			inst.IssueDate, inst.DueDate,
			valueobject.NewMoneyARSFromFloat(250000), "Otro SRL", "Cliente SA")

		require.Error(t, err)
		assert.Equal(t, "00012345", inst.Number)
		assert.Equal(t, 1, inst.Version)
	})
}

func TestInstrumentDepositAndCollect(t *testing.T) {
	t.Run("deposit records clearing account", func(t *testing.T) {
		inst := newTestInstrument(t)
		accountID := uuid.New()

		err := inst.MarkDeposited(accountID, time.Now())

		require.NoError(t, err)
		assert.Equal(t, StatusDeposited, inst.Status)
		require.NotNil(t, inst.Deposit)
		assert.Equal(t, accountID, inst.Deposit.AccountID)
	})

	t.Run("collect requires deposited status", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.MarkCollected()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot collect instrument in IN_PORTFOLIO status")
	})

	t.Run("collect transitions and cannot repeat", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkDeposited(uuid.New(), time.Now()))

		require.NoError(t, inst.MarkCollected())
		assert.Equal(t, StatusCollected, inst.Status)
		assert.NotNil(t, inst.Deposit)

		err := inst.MarkCollected()
		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})

	t.Run("deposit requires account", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.MarkDeposited(uuid.Nil, time.Now())

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_INPUT")
	})
}

func TestInstrumentReject(t *testing.T) {
	t.Run("reject clears deposit data and records reason", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkDeposited(uuid.New(), time.Now()))

		err := inst.MarkRejected("insufficient funds")

		require.NoError(t, err)
		assert.Equal(t, StatusRejected, inst.Status)
		assert.Nil(t, inst.Deposit)
		require.NotNil(t, inst.Rejection)
		assert.Equal(t, "insufficient funds", inst.Rejection.Reason)
		assert.True(t, inst.Status.IsFinal())
	})

	t.Run("requires a reason", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkDeposited(uuid.New(), time.Now()))

		err := inst.MarkRejected("")

		require.Error(t, err)
	})

	t.Run("rejects from portfolio is invalid", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.MarkRejected("insufficient funds")

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})
}

func TestInstrumentEndorseAndVoid(t *testing.T) {
	t.Run("endorse records endorsee", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.MarkEndorsed("Proveedor SA", time.Now())

		require.NoError(t, err)
		assert.Equal(t, StatusEndorsed, inst.Status)
		require.NotNil(t, inst.Endorsement)
		assert.Equal(t, "Proveedor SA", inst.Endorsement.Endorsee)
	})

	t.Run("endorse requires endorsee name", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.MarkEndorsed("", time.Now())

		require.Error(t, err)
	})

	t.Run("void only from portfolio", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkVoid())
		assert.Equal(t, StatusVoid, inst.Status)

		other := newTestInstrument(t)
		require.NoError(t, other.MarkDeposited(uuid.New(), time.Now()))
		err := other.MarkVoid()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot void instrument in DEPOSITED status")
	})
}

func TestInstrumentSellAndCredit(t *testing.T) {
	t.Run("sell stores allocated share", func(t *testing.T) {
		inst := newTestInstrument(t)
		lotID := uuid.New()

		err := inst.MarkSold(lotID, "Financiera SA", d("7"), d("21"), testShare("100000"))

		require.NoError(t, err)
		assert.Equal(t, StatusSold, inst.Status)
		require.NotNil(t, inst.Sale)
		assert.Equal(t, lotID, inst.Sale.LotID)
		assert.True(t, inst.Sale.NetProceeds.Equal(d("91530.00")))
		assert.True(t, inst.IsSoldUncredited())
		assert.False(t, inst.IsCredited())
	})

	t.Run("sell rejected outside portfolio", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkDeposited(uuid.New(), time.Now()))

		err := inst.MarkSold(uuid.New(), "Financiera SA", d("7"), d("21"), testShare("100000"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot sell instrument in DEPOSITED status")
	})

	t.Run("credit stamps movement once", func(t *testing.T) {
		inst := newTestInstrument(t)
		require.NoError(t, inst.MarkSold(uuid.New(), "Financiera SA", d("7"), d("21"), testShare("100000")))
		movementID := uuid.New()

		require.NoError(t, inst.ApplyCredit(movementID))
		assert.True(t, inst.IsCredited())
		require.NotNil(t, inst.Sale.CreditMovementID)
		assert.Equal(t, movementID, *inst.Sale.CreditMovementID)

		err := inst.ApplyCredit(uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been credited")
	})

	t.Run("credit requires sold status", func(t *testing.T) {
		inst := newTestInstrument(t)

		err := inst.ApplyCredit(uuid.New())

		require.Error(t, err)
		assertDomainCode(t, err, "INVALID_TRANSITION")
	})
}

func TestStatusHelpers(t *testing.T) {
	t.Run("valid statuses", func(t *testing.T) {
		for _, s := range []Status{StatusInPortfolio, StatusDeposited, StatusCollected,
			StatusEndorsed, StatusSold, StatusRejected, StatusVoid} {
			assert.True(t, s.IsValid(), s.String())
		}
		assert.False(t, Status("BOUNCED").IsValid())
	})

	t.Run("final statuses", func(t *testing.T) {
		assert.True(t, StatusCollected.IsFinal())
		assert.True(t, StatusVoid.IsFinal())
		assert.True(t, StatusRejected.IsFinal())
		assert.True(t, StatusEndorsed.IsFinal())
		assert.False(t, StatusInPortfolio.IsFinal())
		assert.False(t, StatusDeposited.IsFinal())
		assert.False(t, StatusSold.IsFinal())
	})

	t.Run("overdue only while in portfolio or clearing", func(t *testing.T) {
		inst := newTestInstrument(t)
		inst.DueDate = time.Now().AddDate(0, 0, -1)
		assert.True(t, inst.IsOverdue())

		require.NoError(t, inst.MarkVoid())
		assert.False(t, inst.IsOverdue())
	})
}
