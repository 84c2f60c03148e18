package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeDriver struct {
	base.Unsupported
	name     string
	store    *memory.Store
	fail     error
	calls    int
	refunds  int
	orderOf  map[string]string
	rechecks int
	// rejectRetry makes RetryRefund fail the refund the way a gateway
	// rejection does, without returning an error.
	rejectRetry bool
}

func (d *fakeDriver) Name() string { return d.name }

func (d *fakeDriver) MakePayment(ctx context.Context, tx *domain.Transaction, _ domain.MakePaymentRequest, _ *domain.Client) (*domain.Transaction, error) {
	d.calls++
	if d.fail != nil {
		tx.Status = domain.StatusFailed
		_ = d.store.SaveTransaction(ctx, tx)
		return nil, d.fail
	}
	tx.GatewayOrderID = "order_abc"
	tx.APIStatus = 200
	return tx, d.store.SaveTransaction(ctx, tx)
}

func (d *fakeDriver) RefundPayment(ctx context.Context, _ *domain.Transaction, refund *domain.RefundTransaction, _ domain.RefundRequest, _ *domain.Client) (*domain.RefundTransaction, error) {
	d.refunds++
	if d.fail != nil {
		refund.Status = domain.RefundFailed
		_ = d.store.SaveRefund(ctx, refund)
		return nil, d.fail
	}
	refund.RefundID = "rfnd_1"
	return refund, d.store.SaveRefund(ctx, refund)
}

func (d *fakeDriver) RetryRefund(ctx context.Context, _ *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	if d.rejectRetry {
		refund.Status = domain.RefundFailed
		return refund, d.store.SaveRefund(ctx, refund)
	}
	return refund, nil
}

func (d *fakeDriver) GetPaymentStatus(ctx context.Context, tx *domain.Transaction, _ bool) (*domain.Transaction, error) {
	d.rechecks++
	tx.Status = domain.StatusSuccess
	return tx, d.store.SaveTransaction(ctx, tx)
}

func (d *fakeDriver) GetRefundStatus(_ context.Context, _ *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	d.rechecks++
	updated := *refund
	updated.Status = domain.RefundSuccess
	return &updated, nil
}

func (d *fakeDriver) ProcessCallback(context.Context, domain.Webhook) domain.WebhookAck {
	d.calls++
	return domain.Ack()
}

func (d *fakeDriver) PaymentOrderID(_ context.Context, paymentID string) (string, error) {
	if order, ok := d.orderOf[paymentID]; ok {
		return order, nil
	}
	return "", domain.NotFound("payment not found")
}

type registry struct {
	drivers   map[int]domain.Driver
	defaultID int
}

func (r registry) Driver(id int) (domain.Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, domain.NotFound("gateway configuration not found")
	}
	return d, nil
}

func (r registry) DefaultID() int { return r.defaultID }

type env struct {
	uc      *payment.DefaultPaymentUsecase
	store   *memory.Store
	rzp     *fakeDriver
	ptm     *fakeDriver
	client  *domain.Client
	publish *events
}

type events struct{ names []string }

func (e *events) PublishTransaction(_ context.Context, event string, _ *domain.Transaction) {
	e.names = append(e.names, event)
}

func (e *events) PublishRefund(_ context.Context, event string, _ *domain.Transaction, _ *domain.RefundTransaction) {
	e.names = append(e.names, event)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	rzp := &fakeDriver{Unsupported: base.Unsupported{Driver: "razorpay"}, name: "razorpay", store: store, orderOf: map[string]string{}}
	ptm := &fakeDriver{Unsupported: base.Unsupported{Driver: "paytm"}, name: "paytm", store: store}
	reg := registry{drivers: map[int]domain.Driver{1: rzp, 2: ptm}, defaultID: 1}

	client := &domain.Client{Name: "pos", APIKeyHash: domain.HashAPIKey("secret-key"), Active: true}
	require.NoError(t, store.CreateClient(ctx, client))
	require.NoError(t, store.CreateClientGateway(ctx, &domain.ClientGateway{ClientID: client.ID, DriverID: 1, Default: true, Active: true}))
	require.NoError(t, store.CreateClientGateway(ctx, &domain.ClientGateway{ClientID: client.ID, DriverID: 2, Active: true}))

	pub := &events{}
	uc := payment.NewDefaultPaymentUsecase(reg, store, store, store, store, store, store, pub, nil)
	return &env{uc: uc, store: store, rzp: rzp, ptm: ptm, client: client, publish: pub}
}

func paymentRequest(driverID int) domain.MakePaymentRequest {
	return domain.MakePaymentRequest{
		DriverID:    driverID,
		TotalAmount: decimal.NewFromInt(100),
		AmountToPay: decimal.NewFromInt(100),
		PaymentType: "upi",
		SourceID:    "S1",
		StoreID:     "store-1",
	}
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)
	client, err := e.uc.Authenticate(context.Background(), "secret-key")
	require.NoError(t, err)
	assert.Equal(t, e.client.ID, client.ID)

	_, err = e.uc.Authenticate(context.Background(), "wrong")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	_, err = e.uc.Authenticate(context.Background(), "")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestMakePayment_UsesClientDefaultGateway(t *testing.T) {
	e := newEnv(t)
	res, err := e.uc.MakePayment(context.Background(), paymentRequest(0), e.client, "")
	require.NoError(t, err)

	assert.Equal(t, "razorpay", res.Driver)
	assert.Equal(t, "order_abc", res.Transaction.GatewayOrderID)
	assert.Equal(t, 1, res.Transaction.DriverID)
	assert.Equal(t, e.client.ID, res.Transaction.ClientID)
	assert.Equal(t, domain.StoreTypePOS, res.Transaction.StoreType)
	assert.Equal(t, domain.DefaultClientVersion, res.Transaction.ClientVersion)
	assert.Equal(t, []string{domain.EventPaymentCreated}, e.publish.names)
}

func TestMakePayment_AmountAboveTotalPersistsNothing(t *testing.T) {
	e := newEnv(t)
	req := paymentRequest(1)
	req.AmountToPay = decimal.NewFromInt(101)

	_, err := e.uc.MakePayment(context.Background(), req, e.client, "")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, total, err := e.store.ListTransactions(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, e.rzp.calls)
}

func TestMakePayment_UnmappedGatewayFallsBackToDefault(t *testing.T) {
	e := newEnv(t)
	res, err := e.uc.MakePayment(context.Background(), paymentRequest(7), e.client, "")
	require.NoError(t, err)
	assert.Equal(t, "razorpay", res.Driver)
}

func TestMakePayment_NoGatewayForClient(t *testing.T) {
	e := newEnv(t)
	other := &domain.Client{Name: "other", Active: true}
	require.NoError(t, e.store.CreateClient(context.Background(), other))

	_, err := e.uc.MakePayment(context.Background(), paymentRequest(0), other, "")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestMakePayment_PaytmReusesSourceID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first, err := e.uc.MakePayment(ctx, paymentRequest(2), e.client, "")
	require.NoError(t, err)

	second, err := e.uc.MakePayment(ctx, paymentRequest(2), e.client, "")
	require.NoError(t, err)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	assert.Equal(t, 1, e.ptm.calls)
}

func TestMakePayment_DriverFailureSurfaces(t *testing.T) {
	e := newEnv(t)
	e.rzp.fail = domain.Forbidden("gateway rejected")

	_, err := e.uc.MakePayment(context.Background(), paymentRequest(1), e.client, "")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	txs, _, err := e.store.ListTransactions(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusFailed, txs[0].Status)
}

func successTransaction(t *testing.T, e *env) *domain.Transaction {
	t.Helper()
	res, err := e.uc.MakePayment(context.Background(), paymentRequest(1), e.client, "")
	require.NoError(t, err)
	tx := res.Transaction
	tx.Status = domain.StatusSuccess
	tx.GatewayPaymentID = "pay_1"
	require.NoError(t, e.store.SaveTransaction(context.Background(), tx))
	return tx
}

func TestRefundPayment_DefaultsToFullAmount(t *testing.T) {
	e := newEnv(t)
	tx := successTransaction(t, e)

	_, refund, err := e.uc.RefundPayment(context.Background(), domain.RefundRequest{PaymentTransactionID: tx.ID}, e.client)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(refund.Amount))
	assert.Equal(t, "rfnd_1", refund.RefundID)
	assert.Contains(t, e.publish.names, domain.EventRefundCreated)
}

func TestRefundPayment_Bounds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.uc.RefundPayment(ctx, domain.RefundRequest{PaymentTransactionID: "missing"}, e.client)
	assert.Equal(t, codes.NotFound, status.Code(err))

	res, err := e.uc.MakePayment(ctx, paymentRequest(1), e.client, "")
	require.NoError(t, err)
	_, _, err = e.uc.RefundPayment(ctx, domain.RefundRequest{PaymentTransactionID: res.Transaction.ID}, e.client)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	tx := successTransaction(t, e)
	_, _, err = e.uc.RefundPayment(ctx, domain.RefundRequest{PaymentTransactionID: tx.ID, AmountToRefund: decimal.NewFromInt(101)}, e.client)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Zero(t, e.rzp.refunds)
}

func TestRefundPayment_DriverFailureLeavesFailedRefund(t *testing.T) {
	e := newEnv(t)
	tx := successTransaction(t, e)
	e.rzp.fail = errors.New("network down")

	_, _, err := e.uc.RefundPayment(context.Background(), domain.RefundRequest{PaymentTransactionID: tx.ID}, e.client)
	assert.Equal(t, codes.Internal, status.Code(err))

	refunds, _, err := e.store.ListRefunds(context.Background(), domain.RefundFilter{TransactionID: tx.ID})
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, domain.RefundFailed, refunds[0].Status)
}

func TestRetryRefund_PublishesStatusChange(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tx := successTransaction(t, e)
	_, refund, err := e.uc.RefundPayment(ctx, domain.RefundRequest{PaymentTransactionID: tx.ID}, e.client)
	require.NoError(t, err)

	e.publish.names = nil
	_, err = e.uc.RetryRefund(ctx, refund.ID)
	require.NoError(t, err)
	assert.Empty(t, e.publish.names)

	e.rzp.rejectRetry = true
	out, err := e.uc.RetryRefund(ctx, refund.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundFailed, out.Status)
	assert.Equal(t, []string{domain.EventRefundUpdated}, e.publish.names)
}

func TestGetPaymentStatus_Recheck(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res, err := e.uc.MakePayment(ctx, paymentRequest(1), e.client, "")
	require.NoError(t, err)

	out, err := e.uc.GetPaymentStatus(ctx, res.Transaction.ID, payment.EntityTransaction, false)
	require.NoError(t, err)
	assert.Equal(t, "pending", out.Transaction.Status)
	assert.Zero(t, e.rzp.rechecks)

	out, err = e.uc.GetPaymentStatus(ctx, res.Transaction.ID, payment.EntityTransaction, true)
	require.NoError(t, err)
	assert.Equal(t, "success", out.Transaction.Status)
	assert.Equal(t, "razorpay", out.Driver)
	assert.Equal(t, 1, e.rzp.rechecks)
}

func TestGetPaymentStatus_RefundEntity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tx := successTransaction(t, e)
	_, _, err := e.uc.RefundPayment(ctx, domain.RefundRequest{PaymentTransactionID: tx.ID, AmountToRefund: decimal.NewFromInt(30)}, e.client)
	require.NoError(t, err)

	out, err := e.uc.GetPaymentStatus(ctx, tx.ID, payment.EntityRefund, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"refund"}, out.Entity)
	require.Len(t, out.Refunds, 1)
	assert.Equal(t, "success", out.Refunds[0].Status)
	assert.Equal(t, "30.00", out.Refunds[0].Amount)
}

func TestGetPaymentStatusBySourceID_PrefersSettled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	settled := successTransaction(t, e)
	_, err := e.uc.MakePayment(ctx, paymentRequest(1), e.client, "")
	require.NoError(t, err)

	out, err := e.uc.GetPaymentStatusBySourceID(ctx, "S1", e.client)
	require.NoError(t, err)
	assert.Equal(t, settled.ID, out.Transaction.ID)

	_, err = e.uc.GetPaymentStatusBySourceID(ctx, "nope", e.client)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetTransactionByPaymentID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tx := successTransaction(t, e)

	res, err := e.uc.GetTransactionByPaymentID(ctx, "pay_1", 0, e.client)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, res.Transaction.ID)

	e.rzp.orderOf["pay_remote"] = "order_abc"
	res, err = e.uc.GetTransactionByPaymentID(ctx, "pay_remote", 1, e.client)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, res.Transaction.ID)

	_, err = e.uc.GetTransactionByPaymentID(ctx, "pay_unknown", 1, e.client)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestProcessCallback_RoutesByGatewayAndID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ack := e.uc.ProcessCallback(ctx, "razorpay", 1, domain.Webhook{RawBody: []byte(`{}`)})
	assert.True(t, ack.Success)
	assert.Equal(t, 1, e.rzp.calls)

	ack = e.uc.ProcessCallback(ctx, "paytm", 1, domain.Webhook{})
	assert.True(t, ack.Success)
	ack = e.uc.ProcessCallback(ctx, "razorpay", 9, domain.Webhook{})
	assert.True(t, ack.Success)
	assert.Equal(t, 1, e.rzp.calls)
	assert.Zero(t, e.ptm.calls)
}

func TestQRCodeLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.CreateQRCode(ctx, domain.CreateQRCodeRequest{FixedAmount: true}, e.client, "")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = e.uc.CloseQRCode(ctx, "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	qr := &domain.QRCode{QRID: "qr_1", Status: domain.QRClosed, DriverID: 1}
	require.NoError(t, e.store.CreateQRCode(ctx, qr))
	_, err = e.uc.CloseQRCode(ctx, qr.ID)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.ErrorContains(t, err, "Already closed!")
}

func TestUnsupportedCapabilities(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.uc.PaymentMethods(ctx, 2, e.client)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = e.uc.ResendPaymentLink(ctx, "any", "fax")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}
