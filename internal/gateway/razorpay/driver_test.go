package razorpay_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/razorpay"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/memory"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	apiBase = "https://api.razorpay.test"
	secret  = "whsec"
)

// fakeEvents records what the driver hands to the callback handler.
type fakeEvents struct {
	mu       sync.Mutex
	payments []domain.PaymentEvent
	forced   []bool
	refunds  []domain.RefundEvent
	qrs      []domain.QREvent
	cancels  []domain.PaymentLinkEvent
	disputes []domain.DisputeEvent
	unknown  []string
	changed  bool
	tx       *domain.Transaction
	refund   *domain.RefundTransaction
}

func (f *fakeEvents) HandlePayment(_ context.Context, ev domain.PaymentEvent, force bool) (*domain.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, ev)
	f.forced = append(f.forced, force)
	return f.tx, f.changed, nil
}

func (f *fakeEvents) HandleRefund(_ context.Context, ev domain.RefundEvent, _ bool) (*domain.Transaction, *domain.RefundTransaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, ev)
	return f.tx, f.refund, f.changed, nil
}

func (f *fakeEvents) HandleQR(_ context.Context, ev domain.QREvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.qrs = append(f.qrs, ev)
	return nil
}

func (f *fakeEvents) HandlePaymentLinkCancelled(_ context.Context, ev domain.PaymentLinkEvent) (*domain.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, ev)
	return f.tx, f.changed, nil
}

func (f *fakeEvents) HandleDispute(_ context.Context, ev domain.DisputeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disputes = append(f.disputes, ev)
	return nil
}

func (f *fakeEvents) RecordUnknown(_ context.Context, _ int, event string, _ json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unknown = append(f.unknown, event)
	return nil
}

type fakeNotifier struct {
	got []domain.Notification
}

func (f *fakeNotifier) Dispatch(n domain.Notification) { f.got = append(f.got, n) }

type fixture struct {
	driver   *razorpay.Driver
	store    *memory.Store
	events   *fakeEvents
	notifier *fakeNotifier
	mock     *httpmock.MockTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := httpmock.NewMockTransport()
	store := memory.NewStore()
	events := &fakeEvents{}
	notifier := &fakeNotifier{}
	driver := razorpay.NewDriver(config.Gateway{
		ID:            1,
		Driver:        "razorpay",
		KeyID:         "rzp_test",
		KeySecret:     "key_secret",
		WebhookSecret: secret,
		BaseURL:       apiBase,
	}, base.Deps{
		Transactions: store,
		Refunds:      store,
		QRCodes:      store,
		Links:        store,
		Disputes:     store,
		Events:       events,
		Notifier:     notifier,
		HTTPClient:   &http.Client{Transport: mock},
	})
	return &fixture{driver: driver, store: store, events: events, notifier: notifier, mock: mock}
}

func (f *fixture) pendingTransaction(t *testing.T) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		SourceID:    "S1",
		TotalAmount: decimal.NewFromInt(100),
		Amount:      decimal.NewFromInt(100),
		PaymentType: "upi",
		StoreType:   domain.StoreTypePOS,
		StoreID:     "store-1",
		DriverID:    1,
		Status:      domain.StatusPending,
	}
	require.NoError(t, f.store.CreateTransaction(context.Background(), tx))
	return tx
}

func TestMakePayment_StoresOrder(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)

	var sent map[string]any
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/orders", func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(body, &sent)
		user, _, ok := req.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test", user)
		return httpmock.NewStringResponse(200, `{"id":"order_abc","status":"created"}`), nil
	})

	got, err := f.driver.MakePayment(context.Background(), tx, domain.MakePaymentRequest{
		PaymentType:    "upi",
		StoreID:        "store-1",
		AdditionalInfo: map[string]any{"note": "x"},
	}, &domain.Client{ID: "c1", Name: "shop"})
	require.NoError(t, err)

	assert.Equal(t, "order_abc", got.GatewayOrderID)
	assert.Equal(t, 200, got.APIStatus)
	assert.EqualValues(t, 10000, sent["amount"])
	assert.Equal(t, "INR", sent["currency"])
	assert.Equal(t, "S1", sent["receipt"])
	assert.Equal(t, true, sent["payment_capture"])
	notes := sent["notes"].(map[string]any)
	assert.Equal(t, "shop", notes["client"])
	assert.Equal(t, tx.ID, notes["transaction_id"])
	assert.Equal(t, "x", notes["note"])

	stored, err := f.store.GetTransactionByGatewayOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.NotEmpty(t, stored.APIRequest)
}

func TestMakePayment_GatewayRejection(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/orders",
		httpmock.NewStringResponder(400, `{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too small"}}`))

	_, err := f.driver.MakePayment(context.Background(), tx, domain.MakePaymentRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	stored, err := f.store.GetTransactionByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, http.StatusBadGateway, stored.APIStatus)
	assert.Contains(t, string(stored.APIResponse), "amount too small")
}

func TestMakePayment_GatewayServerError(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/orders", httpmock.NewStringResponder(503, `unavailable`))

	_, err := f.driver.MakePayment(context.Background(), tx, domain.MakePaymentRequest{}, nil)
	require.Error(t, err)

	stored, _ := f.store.GetTransactionByID(context.Background(), tx.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, http.StatusInternalServerError, stored.APIStatus)
}

func newRefund(t *testing.T, f *fixture, tx *domain.Transaction, amount int64) *domain.RefundTransaction {
	t.Helper()
	refund := &domain.RefundTransaction{TransactionID: tx.ID, Amount: decimal.NewFromInt(amount)}
	require.NoError(t, f.store.CreateRefund(context.Background(), refund))
	return refund
}

func TestRefundPayment_InvalidPaymentID(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	tx.GatewayPaymentID = "order_abc"
	refund := newRefund(t, f, tx, 50)

	_, err := f.driver.RefundPayment(context.Background(), tx, refund, domain.RefundRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Contains(t, err.Error(), "invalid payment id!")

	stored, _ := f.store.GetRefundByID(context.Background(), refund.ID)
	assert.Equal(t, domain.RefundFailed, stored.Status)
}

func TestRefundPayment_Success(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	tx.GatewayPaymentID = "pay_1"
	refund := newRefund(t, f, tx, 50)

	var sent map[string]any
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/payments/pay_1/refund", func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		_ = json.Unmarshal(body, &sent)
		return httpmock.NewStringResponse(200, `{"id":"rfnd_1","amount":5000,"status":"pending"}`), nil
	})

	got, err := f.driver.RefundPayment(context.Background(), tx, refund, domain.RefundRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", got.RefundID)
	assert.True(t, decimal.NewFromInt(50).Equal(got.Amount))
	assert.EqualValues(t, 5000, sent["amount"])
	assert.Equal(t, "S1", sent["receipt"])
	notes := sent["notes"].(map[string]any)
	assert.Equal(t, refund.ID, notes["refund_transaction_id"])
	assert.Equal(t, tx.ID, notes["transaction_id"])
}

func TestRefundPayment_GatewayError(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	tx.GatewayPaymentID = "pay_1"
	refund := newRefund(t, f, tx, 50)
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/payments/pay_1/refund",
		httpmock.NewStringResponder(400, `{"error":{"description":"fully refunded"}}`))

	_, err := f.driver.RefundPayment(context.Background(), tx, refund, domain.RefundRequest{}, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	stored, _ := f.store.GetRefundByID(context.Background(), refund.ID)
	assert.Equal(t, domain.RefundFailed, stored.Status)
	assert.Equal(t, http.StatusBadGateway, stored.APIStatus)
}

func TestRetryRefund_ReplaysStoredRequest(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	refund := newRefund(t, f, tx, 50)
	refund.APIRequest = json.RawMessage(`{"payment_id":"pay_9","amount":5000,"notes":{},"receipt":"S1"}`)

	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/payments/pay_9/refund",
		httpmock.NewStringResponder(200, `{"id":"rfnd_9","amount":5000}`))

	got, err := f.driver.RetryRefund(context.Background(), tx, refund)
	require.NoError(t, err)
	assert.Equal(t, "rfnd_9", got.RefundID)
}

func TestRetryRefund_SwallowsErrors(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	refund := newRefund(t, f, tx, 50)
	refund.APIRequest = json.RawMessage(`{"payment_id":"pay_9","amount":5000}`)
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v1/payments/pay_9/refund", httpmock.NewStringResponder(500, `oops`))

	got, err := f.driver.RetryRefund(context.Background(), tx, refund)
	require.NoError(t, err)
	assert.Empty(t, got.RefundID)
}

func TestGetPaymentStatus_FoldsEarliestSettledAttempt(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	tx.GatewayOrderID = "order_abc"
	f.events.tx = tx
	f.events.changed = true

	f.mock.RegisterResponder(http.MethodGet, apiBase+"/v1/orders/order_abc/payments", httpmock.NewStringResponder(200, `{"items":[
		{"id":"pay_2","status":"captured","captured":true},
		{"id":"pay_1","status":"failed","captured":false},
		{"id":"pay_0","status":"created"}
	]}`))

	_, err := f.driver.GetPaymentStatus(context.Background(), tx, true)
	require.NoError(t, err)

	require.Len(t, f.events.payments, 1)
	assert.Equal(t, "pay_1", f.events.payments[0].GatewayPaymentID)
	assert.True(t, f.events.forced[0])
	require.Len(t, f.notifier.got, 1)
	assert.Equal(t, domain.EventTransaction, f.notifier.got[0].Event)
}

func TestGetPaymentStatus_Errors(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)

	_, err := f.driver.GetPaymentStatus(context.Background(), tx, false)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	tx.GatewayOrderID = "order_x"
	f.mock.RegisterResponder(http.MethodGet, apiBase+"/v1/orders/order_x/payments", httpmock.NewStringResponder(500, `down`))

	got, err := f.driver.GetPaymentStatus(context.Background(), tx, true)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	_, err = f.driver.GetPaymentStatus(context.Background(), tx, false)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestGetRefundStatus_ForceApplies(t *testing.T) {
	f := newFixture(t)
	tx := f.pendingTransaction(t)
	refund := newRefund(t, f, tx, 50)
	refund.RefundID = "rfnd_1"
	f.events.refund = refund

	f.mock.RegisterResponder(http.MethodGet, apiBase+"/v1/refunds/rfnd_1",
		httpmock.NewStringResponder(200, `{"id":"rfnd_1","amount":5000,"status":"processed"}`))

	_, err := f.driver.GetRefundStatus(context.Background(), tx, refund)
	require.NoError(t, err)
	require.Len(t, f.events.refunds, 1)
	ev := f.events.refunds[0]
	assert.Equal(t, refund.ID, ev.RefundTransactionID)
	assert.Equal(t, "processed", ev.Status)
	assert.EqualValues(t, 5000, *ev.AmountMinor)
}

func TestPaymentOrderID(t *testing.T) {
	f := newFixture(t)
	f.mock.RegisterResponder(http.MethodGet, apiBase+"/v1/payments/pay_1",
		httpmock.NewStringResponder(200, `{"id":"pay_1","order_id":"order_abc"}`))

	orderID, err := f.driver.PaymentOrderID(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "order_abc", orderID)
}

func TestPaymentDowntime_MapsGatewayError(t *testing.T) {
	f := newFixture(t)
	f.mock.RegisterResponder(http.MethodGet, apiBase+"/v1/payments/downtimes",
		httpmock.NewStringResponder(401, `{"error":{"description":"auth failed"}}`))

	_, err := f.driver.PaymentDowntime(context.Background())
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
	assert.Contains(t, err.Error(), "auth failed")
}
