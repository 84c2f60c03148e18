package callback_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/callback"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type published struct {
	mu     sync.Mutex
	events []string
}

func (p *published) PublishTransaction(_ context.Context, event string, _ *domain.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *published) PublishRefund(_ context.Context, event string, _ *domain.Transaction, _ *domain.RefundTransaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func newHandler() (*callback.DefaultCallbackHandler, *memory.Store, *published) {
	store := memory.NewStore()
	pub := &published{}
	h := callback.NewDefaultCallbackHandler(store, store, store, store, store, store, pub, nil)
	return h, store, pub
}

func pendingTransaction(t *testing.T, store *memory.Store, orderID string) *domain.Transaction {
	t.Helper()
	tx := &domain.Transaction{
		SourceID:       "S1",
		TotalAmount:    decimal.NewFromInt(100),
		Amount:         decimal.NewFromInt(100),
		PaymentType:    "upi",
		DriverID:       1,
		GatewayOrderID: orderID,
		Status:         domain.StatusPending,
	}
	require.NoError(t, store.CreateTransaction(context.Background(), tx))
	return tx
}

func captured(orderID, paymentID string, ok bool, body string) domain.PaymentEvent {
	return domain.PaymentEvent{
		Event:            domain.EventPaymentCaptured,
		DriverID:         1,
		GatewayOrderID:   orderID,
		GatewayPaymentID: paymentID,
		Captured:         &ok,
		Entity:           json.RawMessage(`{"id":"` + paymentID + `"}`),
		Body:             json.RawMessage(body),
	}
}

func TestHandlePayment_CapturesOnce(t *testing.T) {
	h, store, pub := newHandler()
	tx := pendingTransaction(t, store, "order_abc")
	ctx := context.Background()

	updated, changed, err := h.HandlePayment(ctx, captured("order_abc", "pay_1", true, `{"n":1}`), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.StatusSuccess, updated.Status)
	assert.Equal(t, "pay_1", updated.GatewayPaymentID)

	again, changed, err := h.HandlePayment(ctx, captured("order_abc", "pay_2", true, `{"n":2}`), false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "pay_1", again.GatewayPaymentID)

	stored, err := store.GetTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_1", stored.GatewayPaymentID)
	assert.JSONEq(t, `{"n":1}`, string(stored.CallbackResponse))
	assert.Equal(t, []string{domain.EventPaymentUpdated}, pub.events)
	assert.Len(t, store.Callbacks(), 2)
}

func TestHandlePayment_ConcurrentDuplicatesApplyOnce(t *testing.T) {
	h, store, _ := newHandler()
	pendingTransaction(t, store, "order_abc")

	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, changed, err := h.HandlePayment(context.Background(), captured("order_abc", "pay_1", true, `{}`), false)
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, applied)
}

func TestHandleQR_ConcurrentCreditsAdoptOnce(t *testing.T) {
	for round := 0; round < 50; round++ {
		h, store, pub := newHandler()
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, h.HandleQR(ctx, credited("pay_dup")))
			}()
		}
		wg.Wait()

		_, total, err := store.ListTransactions(ctx, domain.TransactionFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 1, total, "round %d", round)
		_, qrTotal, err := store.ListQRCodes(ctx, domain.QRCodeFilter{})
		require.NoError(t, err)
		require.EqualValues(t, 1, qrTotal, "round %d", round)
		require.Len(t, store.Callbacks(), 8)
		require.Equal(t, []string{domain.EventPaymentCreated}, pub.events)
	}
}

func TestHandlePayment_FailedFlag(t *testing.T) {
	h, store, _ := newHandler()
	pendingTransaction(t, store, "order_abc")

	updated, changed, err := h.HandlePayment(context.Background(), captured("order_abc", "pay_1", false, `{}`), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.StatusFailed, updated.Status)
}

func TestHandlePayment_ForceOverridesSuccess(t *testing.T) {
	h, store, _ := newHandler()
	pendingTransaction(t, store, "order_abc")
	ctx := context.Background()
	_, _, err := h.HandlePayment(ctx, captured("order_abc", "pay_1", true, `{}`), false)
	require.NoError(t, err)

	updated, changed, err := h.HandlePayment(ctx, captured("order_abc", "pay_1", false, ""), true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.StatusFailed, updated.Status)
}

func TestHandlePayment_UnknownOrderFailsClosed(t *testing.T) {
	h, store, _ := newHandler()
	pendingTransaction(t, store, "")

	_, _, err := h.HandlePayment(context.Background(), captured("order_missing", "pay_1", true, `{"x":1}`), false)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, _, err = h.HandlePayment(context.Background(), captured("", "pay_1", true, `{"x":1}`), false)
	assert.Equal(t, codes.NotFound, status.Code(err))

	rows := store.Callbacks()
	require.Len(t, rows, 2)
	assert.Equal(t, domain.CallbackDeferred, rows[0].Linkage)
	assert.Empty(t, rows[0].TransactionID)
}

func TestHandlePayment_PollLeavesNoAuditRow(t *testing.T) {
	h, store, _ := newHandler()
	pendingTransaction(t, store, "order_abc")

	_, changed, err := h.HandlePayment(context.Background(), captured("order_abc", "pay_1", true, ""), true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, store.Callbacks())
}

func TestHandlePaymentLinkCancelled(t *testing.T) {
	h, store, pub := newHandler()
	tx := pendingTransaction(t, store, "order_link")
	ctx := context.Background()
	require.NoError(t, store.CreatePaymentLink(ctx, &domain.PaymentLink{TransactionID: tx.ID, PlinkID: "plink_1", Status: domain.LinkCreated}))

	updated, changed, err := h.HandlePaymentLinkCancelled(ctx, domain.PaymentLinkEvent{
		Event:          domain.EventPaymentLinkCancelled,
		GatewayOrderID: "order_link",
		Body:           json.RawMessage(`{"event":"payment_link.cancelled"}`),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, domain.StatusCancelled, updated.Status)

	link, err := store.GetPaymentLinkByTransactionID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkCancelled, link.Status)
	assert.Equal(t, []string{domain.EventPaymentUpdated}, pub.events)
}

func TestHandlePaymentLinkCancelled_KeepsSuccess(t *testing.T) {
	h, store, _ := newHandler()
	pendingTransaction(t, store, "order_link")
	ctx := context.Background()
	_, _, err := h.HandlePayment(ctx, captured("order_link", "pay_1", true, `{}`), false)
	require.NoError(t, err)

	tx, changed, err := h.HandlePaymentLinkCancelled(ctx, domain.PaymentLinkEvent{GatewayOrderID: "order_link"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, domain.StatusSuccess, tx.Status)
}

func TestRecordUnknown(t *testing.T) {
	h, store, _ := newHandler()
	require.NoError(t, h.RecordUnknown(context.Background(), 1, "settlement.processed", json.RawMessage(`{"a":1}`)))

	rows := store.Callbacks()
	require.Len(t, rows, 1)
	assert.Equal(t, domain.CallbackUnknown, rows[0].Type)
	assert.Equal(t, domain.CallbackDeferred, rows[0].Linkage)
}
