package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/reconcile"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pollingDriver struct {
	base.Unsupported
	mu       sync.Mutex
	polled   []string
	sendCB   []bool
	retried  []string
	checked  []string
	failPoll string
}

func (d *pollingDriver) Name() string { return "razorpay" }

func (d *pollingDriver) MakePayment(context.Context, *domain.Transaction, domain.MakePaymentRequest, *domain.Client) (*domain.Transaction, error) {
	return nil, errors.New("not used")
}

func (d *pollingDriver) RefundPayment(context.Context, *domain.Transaction, *domain.RefundTransaction, domain.RefundRequest, *domain.Client) (*domain.RefundTransaction, error) {
	return nil, errors.New("not used")
}

func (d *pollingDriver) RetryRefund(_ context.Context, _ *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.retried = append(d.retried, refund.ID)
	return refund, nil
}

func (d *pollingDriver) GetPaymentStatus(_ context.Context, tx *domain.Transaction, sendCallback bool) (*domain.Transaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polled = append(d.polled, tx.ID)
	d.sendCB = append(d.sendCB, sendCallback)
	if tx.ID == d.failPoll {
		return nil, errors.New("gateway timeout")
	}
	return tx, nil
}

func (d *pollingDriver) GetRefundStatus(_ context.Context, _ *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checked = append(d.checked, refund.ID)
	return refund, nil
}

func (d *pollingDriver) ProcessCallback(context.Context, domain.Webhook) domain.WebhookAck {
	return domain.Ack()
}

type drivers struct{ driver domain.Driver }

func (s drivers) Driver(id int) (domain.Driver, error) {
	if id != 1 {
		return nil, domain.NotFound("gateway configuration not found")
	}
	return s.driver, nil
}

type deliveries struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (d *deliveries) Deliver(_ context.Context, n domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
}

var testConfig = config.Reconcile{
	PendingPaymentBatch:   200,
	RefundRetryBatch:      100,
	CommunicationBatch:    50,
	CommunicationMaxCount: 50,
	ResendSuccessBatch:    200,
	Concurrency:           2,
}

type fixture struct {
	uc     *reconcile.DefaultReconcileUsecase
	store  *memory.Store
	driver *pollingDriver
	sent   *deliveries
}

func newFixture() *fixture {
	store := memory.NewStore()
	driver := &pollingDriver{Unsupported: base.Unsupported{Driver: "razorpay"}}
	sent := &deliveries{}
	uc := reconcile.NewDefaultReconcileUsecase(drivers{driver: driver}, store, store, store, sent, testConfig, nil)
	return &fixture{uc: uc, store: store, driver: driver, sent: sent}
}

func (f *fixture) transaction(t *testing.T, orderID string, status domain.TransactionStatus) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		SourceID:       "S-" + orderID,
		Amount:         decimal.NewFromInt(100),
		TotalAmount:    decimal.NewFromInt(100),
		PaymentType:    domain.PaymentTypeStoreOrder,
		DriverID:       1,
		GatewayOrderID: orderID,
		Status:         status,
	}
	require.NoError(t, f.store.CreateTransaction(context.Background(), tx))
	return tx
}

func TestCheckPendingPayments_PollsUnsettledWithCallback(t *testing.T) {
	f := newFixture()
	pending := f.transaction(t, "order_1", domain.StatusPending)
	failed := f.transaction(t, "order_2", domain.StatusFailed)
	f.transaction(t, "order_3", domain.StatusSuccess)
	f.transaction(t, "", domain.StatusPending)
	f.driver.failPoll = failed.ID

	require.NoError(t, f.uc.CheckPendingPayments(context.Background()))

	assert.ElementsMatch(t, []string{pending.ID, failed.ID}, f.driver.polled)
	assert.Equal(t, []bool{true, true}, f.driver.sendCB)
}

func TestRetryPendingRefunds_PollsAssignedAndReplaysTheRest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tx := f.transaction(t, "order_1", domain.StatusSuccess)

	assigned := &domain.RefundTransaction{TransactionID: tx.ID, RefundID: "rfnd_1", Status: domain.RefundPending, Amount: decimal.NewFromInt(10)}
	unassigned := &domain.RefundTransaction{TransactionID: tx.ID, Status: domain.RefundPending, Amount: decimal.NewFromInt(20)}
	done := &domain.RefundTransaction{TransactionID: tx.ID, RefundID: "rfnd_2", Status: domain.RefundSuccess, Amount: decimal.NewFromInt(5)}
	for _, r := range []*domain.RefundTransaction{assigned, unassigned, done} {
		require.NoError(t, f.store.CreateRefund(ctx, r))
	}

	require.NoError(t, f.uc.RetryPendingRefunds(ctx))

	assert.Equal(t, []string{assigned.ID}, f.driver.checked)
	assert.Equal(t, []string{unassigned.ID}, f.driver.retried)
}

func TestRetryClientCommunications_ReusesRowsUnderTheCap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tx := f.transaction(t, "order_1", domain.StatusSuccess)
	other := f.transaction(t, "order_2", domain.StatusSuccess)

	failed, err := f.store.FindOrCreateCommunication(ctx, tx.ID, domain.EventRefund)
	require.NoError(t, err)
	failed.Status = domain.CommunicationFailed
	failed.CommunicationCount = 5
	require.NoError(t, f.store.SaveCommunication(ctx, failed))

	exhausted, err := f.store.FindOrCreateCommunication(ctx, other.ID, domain.EventTransaction)
	require.NoError(t, err)
	exhausted.Status = domain.CommunicationFailed
	exhausted.CommunicationCount = 55
	require.NoError(t, f.store.SaveCommunication(ctx, exhausted))

	require.NoError(t, f.uc.RetryClientCommunications(ctx))

	require.Len(t, f.sent.sent, 1)
	assert.Equal(t, domain.EventRefund, f.sent.sent[0].Event)
	assert.Equal(t, tx.ID, f.sent.sent[0].Transaction.ID)
	assert.Equal(t, "razorpay", f.sent.sent[0].DriverName)
}

func TestResendSuccessfulNotifications(t *testing.T) {
	f := newFixture()
	settled := f.transaction(t, "order_1", domain.StatusSuccess)
	f.transaction(t, "order_2", domain.StatusPending)

	require.NoError(t, f.uc.ResendSuccessfulNotifications(context.Background()))

	require.Len(t, f.sent.sent, 1)
	assert.Equal(t, settled.ID, f.sent.sent[0].Transaction.ID)
	assert.Equal(t, domain.EventTransaction, f.sent.sent[0].Event)
}

func TestSweep_StopsOnCancellation(t *testing.T) {
	f := newFixture()
	f.transaction(t, "order_1", domain.StatusPending)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.uc.CheckPendingPayments(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.driver.polled)
}
