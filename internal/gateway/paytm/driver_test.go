package paytm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/paytm"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/memory"
	"github.com/jarcoal/httpmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	apiBase = "https://securegw.paytm.test"
	key     = "0123456789abcdef"
)

type recorder struct {
	payments []domain.PaymentEvent
	refunds  []domain.RefundEvent
	unknown  []string
	tx       *domain.Transaction
	changed  bool
}

func (r *recorder) HandlePayment(_ context.Context, ev domain.PaymentEvent, _ bool) (*domain.Transaction, bool, error) {
	r.payments = append(r.payments, ev)
	return r.tx, r.changed, nil
}

func (r *recorder) HandleRefund(_ context.Context, ev domain.RefundEvent, _ bool) (*domain.Transaction, *domain.RefundTransaction, bool, error) {
	r.refunds = append(r.refunds, ev)
	return r.tx, nil, r.changed, nil
}

func (r *recorder) HandleQR(context.Context, domain.QREvent) error { return nil }

func (r *recorder) HandlePaymentLinkCancelled(context.Context, domain.PaymentLinkEvent) (*domain.Transaction, bool, error) {
	return nil, false, nil
}

func (r *recorder) HandleDispute(context.Context, domain.DisputeEvent) error { return nil }

func (r *recorder) RecordUnknown(_ context.Context, _ int, event string, _ json.RawMessage) error {
	r.unknown = append(r.unknown, event)
	return nil
}

type notifications struct{ got []domain.Notification }

func (n *notifications) Dispatch(x domain.Notification) { n.got = append(n.got, x) }

type fixture struct {
	driver *paytm.Driver
	store  *memory.Store
	events *recorder
	sent   *notifications
	mock   *httpmock.MockTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := httpmock.NewMockTransport()
	store := memory.NewStore()
	events := &recorder{}
	sent := &notifications{}
	driver := paytm.NewDriver(config.Gateway{
		ID:          2,
		Driver:      "paytm",
		MID:         "MID001",
		Key:         key,
		Website:     "WEBSTAGING",
		CallbackURL: "https://pay.example.com/callback/paytm/2",
		BaseURL:     apiBase,
	}, base.Deps{
		Transactions: store,
		Refunds:      store,
		Events:       events,
		Notifier:     sent,
		HTTPClient:   &http.Client{Transport: mock},
	})
	return &fixture{driver: driver, store: store, events: events, sent: sent, mock: mock}
}

func (f *fixture) transaction(t *testing.T) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		SourceID:    "S1",
		TotalAmount: decimal.NewFromInt(100),
		Amount:      decimal.NewFromInt(100),
		PaymentType: "PAYMENT",
		DriverID:    2,
		Status:      domain.StatusPending,
	}
	require.NoError(t, f.store.CreateTransaction(context.Background(), tx))
	return tx
}

func readEnvelope(t *testing.T, req *http.Request) (map[string]any, string) {
	t.Helper()
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var env struct {
		Head struct {
			Signature string `json:"signature"`
		} `json:"head"`
		Body json.RawMessage `json:"body"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.True(t, paytm.VerifySignature(string(env.Body), key, env.Head.Signature))
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Body, &body))
	return body, env.Head.Signature
}

func TestMakePayment_Success(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)

	var body map[string]any
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/theia/api/v1/initiateTransaction", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "S1", req.URL.Query().Get("orderId"))
		body, _ = readEnvelope(t, req)
		return httpmock.NewStringResponse(200, `{"body":{"resultInfo":{"resultStatus":"S"},"txnToken":"tok_1"}}`), nil
	})

	got, err := f.driver.MakePayment(context.Background(), tx, domain.MakePaymentRequest{PaymentType: "PAYMENT", CustomerID: "cust"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "tok_1", got.GatewayOrderID)
	assert.Equal(t, 200, got.APIStatus)
	assert.Equal(t, "https://pay.example.com/callback/paytm/2/payment", body["callbackUrl"])
	assert.Equal(t, "100.00", body["txnAmount"].(map[string]any)["value"])
}

func TestMakePayment_ResultFailure(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/theia/api/v1/initiateTransaction",
		httpmock.NewStringResponder(200, `{"body":{"resultInfo":{"resultStatus":"F","resultMsg":"invalid mid"}}}`))

	_, err := f.driver.MakePayment(context.Background(), tx, domain.MakePaymentRequest{}, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	stored, _ := f.store.GetTransactionByID(context.Background(), tx.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, http.StatusForbidden, stored.APIStatus)
}

func TestRefundPayment_Pending(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)
	tx.GatewayPaymentID = "TXN1"
	refund := &domain.RefundTransaction{TransactionID: tx.ID, Amount: decimal.NewFromInt(40)}
	require.NoError(t, f.store.CreateRefund(context.Background(), refund))

	var body map[string]any
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/refund/apply", func(req *http.Request) (*http.Response, error) {
		body, _ = readEnvelope(t, req)
		return httpmock.NewStringResponse(200, `{"body":{"resultInfo":{"resultStatus":"PENDING"},"refundId":"PREF1"}}`), nil
	})

	got, err := f.driver.RefundPayment(context.Background(), tx, refund, domain.RefundRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "PREF1", got.RefundID)
	assert.Equal(t, refund.ID, body["refId"])
	assert.Equal(t, "TXN1", body["txnId"])
	assert.Equal(t, "40.00", body["refundAmount"])
}

func TestRefundPayment_TxnFailure(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)
	tx.GatewayPaymentID = "TXN1"
	refund := &domain.RefundTransaction{TransactionID: tx.ID, Amount: decimal.NewFromInt(40)}
	require.NoError(t, f.store.CreateRefund(context.Background(), refund))
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/refund/apply",
		httpmock.NewStringResponder(200, `{"body":{"resultInfo":{"resultStatus":"TXN_FAILURE","resultMsg":"balance"}}}`))

	_, err := f.driver.RefundPayment(context.Background(), tx, refund, domain.RefundRequest{}, nil)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	stored, _ := f.store.GetRefundByID(context.Background(), refund.ID)
	assert.Equal(t, domain.RefundFailed, stored.Status)
}

func TestGetPaymentStatus_Success(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)
	tx.GatewayOrderID = "tok_1"
	f.events.tx = tx
	f.mock.RegisterResponder(http.MethodPost, apiBase+"/v3/order/status",
		httpmock.NewStringResponder(200, `{"body":{"resultInfo":{"resultStatus":"TXN_SUCCESS"},"txnId":"TXN9","orderId":"S1"}}`))

	_, err := f.driver.GetPaymentStatus(context.Background(), tx, true)
	require.NoError(t, err)
	require.Len(t, f.events.payments, 1)
	assert.Equal(t, "TXN9", f.events.payments[0].GatewayPaymentID)
	assert.True(t, *f.events.payments[0].Captured)
	assert.Len(t, f.sent.got, 1)
}

func formBody(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	sig, err := paytm.GenerateSignature(paytm.StringByParams(fields), key)
	require.NoError(t, err)
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("CHECKSUMHASH", sig)
	return []byte(values.Encode())
}

func TestProcessCallback_PaymentForm(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)
	tx.GatewayOrderID = "tok_1"
	require.NoError(t, f.store.SaveTransaction(context.Background(), tx))
	f.events.tx = tx
	f.events.changed = true

	body := formBody(t, map[string]string{"ORDERID": "S1", "STATUS": "TXN_SUCCESS", "TXNID": "TXN1", "MID": "MID001"})
	ack := f.driver.ProcessCallback(context.Background(), domain.Webhook{Gateway: "paytm", CallbackType: "payment", RawBody: body})
	assert.True(t, ack.Success)

	require.Len(t, f.events.payments, 1)
	ev := f.events.payments[0]
	assert.Equal(t, "tok_1", ev.GatewayOrderID)
	assert.Equal(t, "TXN1", ev.GatewayPaymentID)
	assert.True(t, *ev.Captured)
	assert.Len(t, f.sent.got, 1)
}

func TestProcessCallback_PaymentBadChecksum(t *testing.T) {
	f := newFixture(t)
	f.transaction(t)
	values := url.Values{"ORDERID": {"S1"}, "STATUS": {"TXN_SUCCESS"}, "CHECKSUMHASH": {"forged"}}

	ack := f.driver.ProcessCallback(context.Background(), domain.Webhook{CallbackType: "payment", RawBody: []byte(values.Encode())})
	assert.True(t, ack.Success)
	assert.Empty(t, f.events.payments)
}

func TestProcessCallback_RefundJSON(t *testing.T) {
	f := newFixture(t)
	tx := f.transaction(t)
	tx.GatewayPaymentID = "TXN1"
	require.NoError(t, f.store.SaveTransaction(context.Background(), tx))
	f.events.tx = tx
	f.events.changed = true

	inner := `{"txnId":"TXN1","refundId":"PREF1","refId":"r-local","refundAmount":"40.00"}`
	sig, err := paytm.GenerateSignature(inner, key)
	require.NoError(t, err)
	raw := []byte(`{"head":{"signature":"` + sig + `"},"body":` + inner + `}`)

	f.driver.ProcessCallback(context.Background(), domain.Webhook{RawBody: raw})

	require.Len(t, f.events.refunds, 1)
	ev := f.events.refunds[0]
	assert.Equal(t, tx.ID, ev.TransactionID)
	assert.Equal(t, "r-local", ev.RefundTransactionID)
	assert.Equal(t, domain.GatewayRefundProcessed, ev.Status)
	assert.EqualValues(t, 4000, *ev.AmountMinor)
	require.Len(t, f.sent.got, 1)
	assert.Equal(t, domain.EventRefund, f.sent.got[0].Event)
}

func TestProcessCallback_Unrecognized(t *testing.T) {
	f := newFixture(t)
	f.driver.ProcessCallback(context.Background(), domain.Webhook{CallbackType: "settlement", RawBody: []byte(`{}`)})
	assert.Equal(t, []string{"settlement"}, f.events.unknown)
}

func TestUnsupportedOperations(t *testing.T) {
	f := newFixture(t)
	_, err := f.driver.CreatePaymentLink(context.Background(), domain.CreatePaymentLinkRequest{}, nil, "")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	_, err = f.driver.PaymentMethods(context.Background())
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}
