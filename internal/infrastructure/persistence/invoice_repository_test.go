package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gestion/backend/internal/domain/invoice"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockInvoiceRepository creates a GormInvoiceRepository with a mocked SQL connection
func newMockInvoiceRepository(t *testing.T) (*GormInvoiceRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormInvoiceRepository(gormDB), mock, mockDB
}

func newTestVendorInvoice(t *testing.T) *invoice.VendorInvoice {
	t.Helper()
	inv, err := invoice.NewVendorInvoice(
		uuid.New(),
		invoice.DocumentInvoiceA,
		"0003",
		"00001234",
		"Proveedor SRL",
		"30-11111111-1",
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		nil,
		invoice.Amounts{
			NetAmount: decimal.NewFromInt(10000),
			VAT21:     decimal.NewFromInt(2100),
		},
		invoice.Classification{},
	)
	require.NoError(t, err)
	return inv
}

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("finds invoice with payment history", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		invoiceRows := sqlmock.NewRows([]string{
			"id", "version", "document_type", "point_of_sale", "document_number",
			"supplier_name", "issue_date", "net_amount", "vat_21",
			"total", "amount_payable", "paid_amount", "balance_due", "status",
		}).AddRow(
			invoiceID, 1, "INVOICE_A", "0003", "00001234",
			"Proveedor SRL", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			decimal.NewFromInt(10000), decimal.NewFromInt(2100),
			decimal.NewFromInt(12100), decimal.NewFromInt(12100),
			decimal.Zero, decimal.NewFromInt(12100), "PENDING",
		)

		mock.ExpectQuery(`SELECT \* FROM "vendor_invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(invoiceRows)

		paymentRows := sqlmock.NewRows([]string{"id", "invoice_id", "amount", "payment_date", "method", "account_id"}).
			AddRow(uuid.New(), invoiceID, decimal.NewFromInt(5000),
				time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "BANK_TRANSFER", uuid.New())

		mock.ExpectQuery(`SELECT \* FROM "invoice_payments" WHERE "invoice_payments"."invoice_id" = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(paymentRows)

		inv, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, invoiceID, inv.ID)
		assert.Equal(t, invoice.DocumentInvoiceA, inv.DocumentType)
		assert.True(t, inv.Total.Equal(decimal.NewFromInt(12100)))
		require.Len(t, inv.Payments, 1)
		assert.Equal(t, invoice.MethodBankTransfer, inv.Payments[0].Method)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "vendor_invoices" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.Nil(t, inv)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindByDocument(t *testing.T) {
	t.Run("finds invoice by fiscal document triple", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		invoiceRows := sqlmock.NewRows([]string{
			"id", "version", "document_type", "point_of_sale", "document_number",
			"supplier_name", "net_amount", "total", "amount_payable", "balance_due", "status",
		}).AddRow(
			invoiceID, 1, "INVOICE_A", "0003", "00001234",
			"Proveedor SRL", decimal.NewFromInt(10000), decimal.NewFromInt(12100),
			decimal.NewFromInt(12100), decimal.NewFromInt(12100), "PENDING",
		)

		mock.ExpectQuery(`SELECT \* FROM "vendor_invoices" WHERE document_type = \$1 AND point_of_sale = \$2 AND document_number = \$3 AND supplier_name = \$4 ORDER BY .* LIMIT .*`).
			WithArgs(invoice.DocumentInvoiceA, "0003", "00001234", "Proveedor SRL", 1).
			WillReturnRows(invoiceRows)

		mock.ExpectQuery(`SELECT \* FROM "invoice_payments" WHERE "invoice_payments"."invoice_id" = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "amount"}))

		inv, err := repo.FindByDocument(context.Background(), invoice.DocumentInvoiceA, "0003", "00001234", "Proveedor SRL")

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, "00001234", inv.DocumentNumber)
		assert.Empty(t, inv.Payments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil when no document matches", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "vendor_invoices" WHERE document_type = \$1 AND point_of_sale = \$2 AND document_number = \$3 AND supplier_name = \$4 ORDER BY .* LIMIT .*`).
			WithArgs(invoice.DocumentInvoiceB, "0001", "00009999", "Otro SA", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByDocument(context.Background(), invoice.DocumentInvoiceB, "0001", "00009999", "Otro SA")

		assert.NoError(t, err)
		assert.Nil(t, inv)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	t.Run("inserts new invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := newTestVendorInvoice(t)

		mock.ExpectExec(`INSERT INTO "vendor_invoices"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), inv)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("updates invoice and appends new payments", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := newTestVendorInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "vendor_invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT "id" FROM "invoice_payments" WHERE invoice_id = \$1`).
			WithArgs(inv.ID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), inv, 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when version moved", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := newTestVendorInvoice(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "vendor_invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), inv, 1)

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_List(t *testing.T) {
	t.Run("lists open invoices", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "vendor_invoices" WHERE status IN \(\$1,\$2\)`).
			WithArgs(invoice.StatusPending, invoice.StatusPartial).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		invoiceRows := sqlmock.NewRows([]string{
			"id", "version", "document_type", "point_of_sale", "document_number",
			"supplier_name", "net_amount", "total", "amount_payable", "balance_due", "status",
		}).AddRow(
			invoiceID, 1, "INVOICE_A", "0003", "00001234",
			"Proveedor SRL", decimal.NewFromInt(10000), decimal.NewFromInt(12100),
			decimal.NewFromInt(12100), decimal.NewFromInt(12100), "PENDING",
		)

		mock.ExpectQuery(`SELECT \* FROM "vendor_invoices" WHERE status IN \(\$1,\$2\) ORDER BY created_at desc LIMIT .*`).
			WithArgs(invoice.StatusPending, invoice.StatusPartial, 20).
			WillReturnRows(invoiceRows)

		mock.ExpectQuery(`SELECT \* FROM "invoice_payments" WHERE "invoice_payments"."invoice_id" = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "amount"}))

		result, err := repo.List(context.Background(), invoice.Filter{
			Filter:   shared.Filter{Page: 1, PageSize: 20},
			OnlyOpen: true,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		require.Len(t, result.Items, 1)
		assert.Equal(t, invoice.StatusPending, result.Items[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
