package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gestion/backend/internal/domain/instrument"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockInstrumentRepository creates a GormInstrumentRepository with a mocked SQL connection
func newMockInstrumentRepository(t *testing.T) (*GormInstrumentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInstrumentRepository(gormDB), mock, mockDB
}

func newTestInstrument(t *testing.T) *instrument.Instrument {
	t.Helper()
	inst, err := instrument.NewInstrument(
		uuid.New(),
		"00012345",
		"Banco Galicia",
		instrument.KindElectronic,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		valueobject.NewMoneyARS(decimal.NewFromInt(25000)),
		"ACME SA",
		"Cliente SRL",
	)
	require.NoError(t, err)
	return inst
}

func TestNewGormInstrumentRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormInstrumentRepository_FindByID(t *testing.T) {
	t.Run("finds existing instrument", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		instrumentID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "version", "number", "bank_name", "kind",
			"issue_date", "due_date", "amount", "beneficiary", "drawer_name", "status",
		}).AddRow(
			instrumentID, 1, "00012345", "Banco Galicia", "ELECTRONIC",
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(25000), "ACME SA", "Cliente SRL", "IN_PORTFOLIO",
		)

		mock.ExpectQuery(`SELECT \* FROM "instruments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(instrumentID, 1).
			WillReturnRows(rows)

		inst, err := repo.FindByID(context.Background(), instrumentID)

		assert.NoError(t, err)
		assert.NotNil(t, inst)
		assert.Equal(t, instrumentID, inst.ID)
		assert.Equal(t, "00012345", inst.Number)
		assert.Equal(t, instrument.StatusInPortfolio, inst.Status)
		assert.Nil(t, inst.Deposit)
		assert.Nil(t, inst.Sale)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent instrument", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		instrumentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "instruments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(instrumentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inst, err := repo.FindByID(context.Background(), instrumentID)

		assert.NoError(t, err)
		assert.Nil(t, inst)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstrumentRepository_FindByIDs(t *testing.T) {
	t.Run("finds multiple instruments by IDs", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		id1 := uuid.New()
		id2 := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "number", "bank_name", "kind", "amount", "status"}).
			AddRow(id1, 1, "00000001", "Banco Galicia", "PHYSICAL", decimal.NewFromInt(10000), "IN_PORTFOLIO").
			AddRow(id2, 1, "00000002", "Banco Nación", "ELECTRONIC", decimal.NewFromInt(20000), "IN_PORTFOLIO")

		mock.ExpectQuery(`SELECT \* FROM "instruments" WHERE id IN \(\$1,\$2\) ORDER BY id asc`).
			WithArgs(id1, id2).
			WillReturnRows(rows)

		instruments, err := repo.FindByIDs(context.Background(), []uuid.UUID{id1, id2})

		assert.NoError(t, err)
		assert.Len(t, instruments, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for empty IDs", func(t *testing.T) {
		repo, _, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		instruments, err := repo.FindByIDs(context.Background(), []uuid.UUID{})

		assert.NoError(t, err)
		assert.Empty(t, instruments)
	})
}

func TestGormInstrumentRepository_FindByLotID(t *testing.T) {
	t.Run("finds sold instruments with sale data", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()
		instrumentID := uuid.New()
		soldAt := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{
			"id", "version", "number", "bank_name", "kind", "amount", "status",
			"lot_id", "buyer", "discount_rate", "tax_rate",
			"gross_commission", "tax_on_commission", "total_deduction", "net_proceeds", "sold_at",
		}).AddRow(
			instrumentID, 2, "00012345", "Banco Galicia", "ELECTRONIC",
			decimal.NewFromInt(50000), "SOLD",
			lotID, "Financiera SA", decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.21),
			decimal.NewFromInt(2500), decimal.NewFromInt(525), decimal.NewFromInt(3025),
			decimal.NewFromInt(46975), soldAt,
		)

		mock.ExpectQuery(`SELECT \* FROM "instruments" WHERE lot_id = \$1 ORDER BY id asc`).
			WithArgs(lotID).
			WillReturnRows(rows)

		instruments, err := repo.FindByLotID(context.Background(), lotID)

		assert.NoError(t, err)
		require.Len(t, instruments, 1)
		require.NotNil(t, instruments[0].Sale)
		assert.Equal(t, lotID, instruments[0].Sale.LotID)
		assert.Equal(t, "Financiera SA", instruments[0].Sale.Buyer)
		assert.True(t, instruments[0].Sale.NetProceeds.Equal(decimal.NewFromInt(46975)))
		assert.Nil(t, instruments[0].Sale.CreditMovementID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstrumentRepository_Save(t *testing.T) {
	t.Run("inserts new instrument", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		inst := newTestInstrument(t)

		mock.ExpectExec(`INSERT INTO "instruments"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), inst)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstrumentRepository_SaveWithLock(t *testing.T) {
	t.Run("updates instrument at expected version", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		inst := newTestInstrument(t)

		mock.ExpectExec(`UPDATE "instruments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), inst, 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version moved", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		inst := newTestInstrument(t)

		mock.ExpectExec(`UPDATE "instruments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), inst, 1)

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstrumentRepository_List(t *testing.T) {
	t.Run("lists instruments filtered by status", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		status := instrument.StatusInPortfolio

		mock.ExpectQuery(`SELECT count\(\*\) FROM "instruments" WHERE status = \$1`).
			WithArgs(status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{"id", "version", "number", "bank_name", "kind", "amount", "status"}).
			AddRow(uuid.New(), 1, "00012345", "Banco Galicia", "PHYSICAL", decimal.NewFromInt(10000), "IN_PORTFOLIO")

		mock.ExpectQuery(`SELECT \* FROM "instruments" WHERE status = \$1 ORDER BY created_at desc LIMIT .*`).
			WithArgs(status, 20).
			WillReturnRows(rows)

		result, err := repo.List(context.Background(), instrument.Filter{
			Filter: shared.Filter{Page: 1, PageSize: 20},
			Status: &status,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		assert.Len(t, result.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstrumentRepository_ListLots(t *testing.T) {
	t.Run("aggregates lots in the database", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		lot1 := uuid.New()
		lot2 := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM \(SELECT lot_id, .* FROM "instruments" WHERE lot_id IS NOT NULL GROUP BY .*\) AS lots`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{
			"lot_id", "buyer", "discount_rate", "tax_rate", "sold_at",
			"instrument_count", "total_face_amount", "total_deduction", "total_net_proceeds",
			"uncredited_count",
		}).
			AddRow(lot1, "Financiera SA", decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.21),
				time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
				2, decimal.NewFromInt(75000), decimal.NewFromInt(4537), decimal.NewFromInt(70463), 1).
			AddRow(lot2, "Banco Macro", decimal.NewFromFloat(0.04), decimal.NewFromFloat(0.21),
				time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
				1, decimal.NewFromInt(25000), decimal.NewFromInt(1210), decimal.NewFromInt(23790), 0)

		mock.ExpectQuery(`SELECT lot_id, MIN\(buyer\) AS buyer, .* COUNT\(\*\) - COUNT\(credit_movement_id\) AS uncredited_count FROM "instruments" WHERE lot_id IS NOT NULL GROUP BY .* ORDER BY sold_at desc LIMIT .*`).
			WithArgs(20).
			WillReturnRows(rows)

		result, err := repo.ListLots(context.Background(), shared.Filter{Page: 1, PageSize: 20}, false)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
		require.Len(t, result.Items, 2)
		assert.Equal(t, lot1, result.Items[0].LotID)
		assert.Equal(t, 2, result.Items[0].InstrumentCount)
		assert.False(t, result.Items[0].FullyCredited)
		assert.True(t, result.Items[0].TotalNetProceeds.Equal(decimal.NewFromInt(70463)))
		assert.True(t, result.Items[1].FullyCredited)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("outstanding filter excludes fully credited lots in SQL", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		lotID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM \(SELECT .* GROUP BY .* HAVING COUNT\(\*\) > COUNT\(credit_movement_id\)\) AS lots`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{
			"lot_id", "buyer", "discount_rate", "tax_rate", "sold_at",
			"instrument_count", "total_face_amount", "total_deduction", "total_net_proceeds",
			"uncredited_count",
		}).AddRow(lotID, "Financiera SA", decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.21),
			time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
			3, decimal.NewFromInt(120000), decimal.NewFromInt(7260), decimal.NewFromInt(112740), 3)

		mock.ExpectQuery(`SELECT .* FROM "instruments" WHERE lot_id IS NOT NULL GROUP BY .* HAVING COUNT\(\*\) > COUNT\(credit_movement_id\) ORDER BY sold_at desc LIMIT .*`).
			WithArgs(20).
			WillReturnRows(rows)

		result, err := repo.ListLots(context.Background(), shared.Filter{Page: 1, PageSize: 20}, true)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		require.Len(t, result.Items, 1)
		assert.Equal(t, lotID, result.Items[0].LotID)
		assert.False(t, result.Items[0].FullyCredited)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInstrumentRepository_SummarizeByStatus(t *testing.T) {
	t.Run("returns per-status counts and totals", func(t *testing.T) {
		repo, mock, mockDB := newMockInstrumentRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"status", "count", "total_amount"}).
			AddRow("DEPOSITED", 2, decimal.NewFromInt(35000)).
			AddRow("IN_PORTFOLIO", 3, decimal.NewFromInt(90000))

		mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count, SUM\(amount\) AS total_amount FROM "instruments" GROUP BY .*`).
			WillReturnRows(rows)

		counts, err := repo.SummarizeByStatus(context.Background())

		assert.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, instrument.StatusDeposited, counts[0].Status)
		assert.Equal(t, int64(2), counts[0].Count)
		assert.True(t, counts[1].TotalAmount.Equal(decimal.NewFromInt(90000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
