package callback_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func credited(paymentID string) domain.QREvent {
	return domain.QREvent{
		Event:              domain.EventQRCredited,
		DriverID:           1,
		QRID:               "qr_1",
		Usage:              domain.QRSingleUse,
		Type:               domain.QRTypeUPI,
		Notes:              map[string]any{"store_id": "store-9", "client_id": "client-1"},
		Status:             domain.QRActive,
		GatewayPaymentID:   paymentID,
		PaymentAmountMinor: 12500,
		Body:               json.RawMessage(`{"event":"qr_code.credited"}`),
	}
}

func TestHandleQR_CreditAdoptsTransaction(t *testing.T) {
	h, store, pub := newHandler()
	ctx := context.Background()

	require.NoError(t, h.HandleQR(ctx, credited("pay_qr")))

	tx, err := store.GetTransactionByGatewayPaymentID(ctx, "pay_qr")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, tx.Status)
	assert.Equal(t, "qr_1", tx.SourceID)
	assert.Equal(t, "store-9", tx.StoreID)
	assert.Equal(t, "client-1", tx.ClientID)
	assert.Equal(t, 1, tx.DriverID)
	assert.Equal(t, domain.PaymentTypeStoreOrder, tx.PaymentType)
	assert.Equal(t, domain.DefaultClientVersion, tx.ClientVersion)
	assert.Equal(t, "125", tx.Amount.String())

	qr, err := store.GetQRCodeByQRID(ctx, "qr_1")
	require.NoError(t, err)
	assert.Equal(t, tx.StoreID, qr.StoreID)

	rows := store.Callbacks()
	require.Len(t, rows, 1)
	assert.Equal(t, tx.ID, rows[0].TransactionID)
	assert.Equal(t, domain.CallbackLinked, rows[0].Linkage)
	assert.Equal(t, []string{domain.EventPaymentCreated}, pub.events)
}

func TestHandleQR_CreditReusesExisting(t *testing.T) {
	h, store, _ := newHandler()
	ctx := context.Background()
	require.NoError(t, store.CreateQRCode(ctx, &domain.QRCode{QRID: "qr_1", Status: domain.QRActive}))

	require.NoError(t, h.HandleQR(ctx, credited("pay_qr")))
	require.NoError(t, h.HandleQR(ctx, credited("pay_qr")))

	txs, total, err := store.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, txs, 1)

	_, qrTotal, err := store.ListQRCodes(ctx, domain.QRCodeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, qrTotal)
	assert.Len(t, store.Callbacks(), 2)
}

func TestHandleQR_Closed(t *testing.T) {
	h, store, _ := newHandler()
	ctx := context.Background()
	require.NoError(t, store.CreateQRCode(ctx, &domain.QRCode{QRID: "qr_1", Status: domain.QRActive}))

	require.NoError(t, h.HandleQR(ctx, domain.QREvent{Event: domain.EventQRClosed, QRID: "qr_1", CloseReason: "paid", Body: json.RawMessage(`{}`)}))
	qr, err := store.GetQRCodeByQRID(ctx, "qr_1")
	require.NoError(t, err)
	assert.Equal(t, domain.QRClosed, qr.Status)
	assert.Equal(t, "paid", qr.CloseReason)
	assert.NotNil(t, qr.ClosedAt)

	require.NoError(t, h.HandleQR(ctx, domain.QREvent{Event: domain.EventQRClosed, QRID: "qr_unknown", Body: json.RawMessage(`{}`)}))
	assert.Len(t, store.Callbacks(), 2)
}

func TestHandleQR_CreatedAndUnknown(t *testing.T) {
	h, store, _ := newHandler()
	ctx := context.Background()

	require.NoError(t, h.HandleQR(ctx, domain.QREvent{Event: domain.EventQRCreated, QRID: "qr_1", Body: json.RawMessage(`{}`)}))
	require.NoError(t, h.HandleQR(ctx, domain.QREvent{Event: "qr_code.expired", Body: json.RawMessage(`{}`)}))

	rows := store.Callbacks()
	require.Len(t, rows, 2)
	assert.Equal(t, domain.CallbackQRCode, rows[0].Type)
	assert.Equal(t, domain.CallbackUnknown, rows[1].Type)
}

func TestHandleDispute_Upserts(t *testing.T) {
	h, store, _ := newHandler()
	ctx := context.Background()
	ev := domain.DisputeEvent{
		Event:    "payment.dispute.created",
		DriverID: 1,
		Dispute:  domain.Dispute{DisputeID: "disp_1", PaymentID: "pay_1", Status: domain.DisputeOpen, Amount: 10000},
		Body:     json.RawMessage(`{}`),
	}
	require.NoError(t, h.HandleDispute(ctx, ev))

	ev.Event = "payment.dispute.won"
	ev.Dispute.Status = domain.DisputeWon
	require.NoError(t, h.HandleDispute(ctx, ev))

	d, err := store.GetDisputeByDisputeID(ctx, "disp_1")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeWon, d.Status)
	assert.Equal(t, 1, d.DriverID)

	_, total, err := store.ListDisputes(ctx, domain.DisputeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
