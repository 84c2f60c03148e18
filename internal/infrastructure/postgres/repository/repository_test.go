package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true, TranslateError: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestApplyCallbackUpdate_GuardsSuccess(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	mock.ExpectExec(`UPDATE "transactions" SET .* WHERE id = \$\d+ AND status <> \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.ApplyCallbackUpdate(context.Background(), &domain.Transaction{
		ID:               "01HZX0000000000000000000AA",
		Status:           domain.StatusSuccess,
		GatewayPaymentID: "pay_1",
	}, false)

	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCallbackUpdate_Applied(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	mock.ExpectExec(`UPDATE "transactions" SET .* WHERE id = \$\d+ AND status <> \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.ApplyCallbackUpdate(context.Background(), &domain.Transaction{
		ID:     "01HZX0000000000000000000AA",
		Status: domain.StatusSuccess,
	}, false)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCallbackUpdate_ForceSkipsGuard(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	// callback_response, gateway_payment_id, status, updated_at, then id.
	mock.ExpectExec(`UPDATE "transactions" SET .* WHERE id = \$5$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.ApplyCallbackUpdate(context.Background(), &domain.Transaction{
		ID:               "01HZX0000000000000000000AA",
		Status:           domain.StatusFailed,
		GatewayPaymentID: "pay_2",
	}, true)

	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTransactionByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transactions" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	_, err := repo.GetTransactionByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetTransactionByID_MapsRow(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "source_id", "total_amount", "amount", "payment_type", "driver", "gateway_order_id", "status", "client_id"}).
		AddRow("01HZX0000000000000000000AA", "order_abc", "500.00", "500.00", "store_order_payment", 1, "order_R1", "pending", nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "transactions" WHERE id = $1`)).WillReturnRows(rows)

	tx, err := repo.GetTransactionByID(context.Background(), "01HZX0000000000000000000AA")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", tx.SourceID)
	assert.Equal(t, "order_R1", tx.GatewayOrderID)
	assert.Equal(t, "", tx.ClientID)
	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Equal(t, "500", tx.Amount.String())
}

func TestCancelTransaction_NoopOnSuccess(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	mock.ExpectExec(`UPDATE "transactions" SET .* WHERE id = \$\d+ AND status <> \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cancelled, err := repo.CancelTransaction(context.Background(), "01HZX0000000000000000000AA")
	require.NoError(t, err)
	assert.False(t, cancelled)
}

func TestApplyRefundCallback_GuardsSuccess(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultRefundRepository(gormDB)

	mock.ExpectExec(`UPDATE "refund_transactions" SET .* WHERE id = \$\d+ AND status <> \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.ApplyRefundCallback(context.Background(), &domain.RefundTransaction{
		ID:       "01HZX0000000000000000000RF",
		RefundID: "rfnd_1",
		Status:   domain.RefundSuccess,
	}, false)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestAppendCallback_DeferredRowHasNullTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultCallbackRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "transaction_callbacks"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	cb := domain.NewTransactionCallback("", domain.CallbackPayment, "payment.captured", 1, []byte(`{"event":"payment.captured"}`))
	require.NoError(t, repo.AppendCallback(context.Background(), cb))
	assert.Equal(t, uint(7), cb.ID)
	assert.Equal(t, domain.CallbackDeferred, cb.Linkage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveClientGateway_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultClientRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "client_gateways"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	_, err := repo.GetActiveClientGateway(context.Background(), "client-1", 2)
	assert.ErrorIs(t, err, domain.ErrClientGatewayNotFound)
}

func TestCreateTransaction_DuplicatePaymentID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultTransactionRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "transactions"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_transactions_gateway_payment_id"})

	err := repo.CreateTransaction(context.Background(), &domain.Transaction{
		SourceID:         "qr_1",
		GatewayPaymentID: "pay_dup",
		Status:           domain.StatusSuccess,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicatePaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateQRCode_DuplicateQRID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewDefaultQRCodeRepository(gormDB)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "qr_codes"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.CreateQRCode(context.Background(), &domain.QRCode{QRID: "qr_1", Status: domain.QRActive})
	assert.ErrorIs(t, err, domain.ErrDuplicateQRCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
