package paytm

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	callbackPayment = "payment"
	callbackRefund  = "refund"
)

func minorUnits(amount string) (int64, bool) {
	if amount == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, false
	}
	return domain.ToMinorUnits(d), true
}

// formOf returns the posted form fields, parsing the raw body when the
// transport did not.
func formOf(wh domain.Webhook) map[string]string {
	if len(wh.Form) > 0 {
		out := make(map[string]string, len(wh.Form))
		for k, v := range wh.Form {
			out[k] = v
		}
		return out
	}
	values, err := url.ParseQuery(string(wh.RawBody))
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out
}

// classify settles the callback type before dispatch: payment callbacks are
// signed form posts, refund callbacks are signed JSON envelopes.
func classify(wh domain.Webhook) (string, domain.WebhookKind) {
	switch wh.CallbackType {
	case callbackPayment, callbackRefund:
		return wh.CallbackType, domain.WebhookPayment
	case "":
	default:
		return wh.CallbackType, domain.WebhookMalformed
	}
	if form := formOf(wh); form[checksumHashName] != "" {
		return callbackPayment, domain.WebhookPayment
	}
	var env envelope
	if json.Unmarshal(wh.RawBody, &env) == nil && env.Head.Signature != "" {
		return callbackRefund, domain.WebhookPayment
	}
	return "", domain.WebhookMalformed
}

func (d *Driver) ProcessCallback(ctx context.Context, wh domain.Webhook) domain.WebhookAck {
	start := time.Now()
	callbackType, kind := classify(wh)

	switch {
	case kind == domain.WebhookMalformed:
		slog.Warn("unrecognized paytm callback", "callback_type", wh.CallbackType, "driver_id", d.id)
		if err := d.Events.RecordUnknown(ctx, d.id, wh.CallbackType, json.RawMessage(mustBody(wh))); err != nil {
			slog.Error("failed to record unknown webhook", "error", err)
		}
	case callbackType == callbackPayment:
		d.processPayment(ctx, wh)
	case callbackType == callbackRefund:
		d.processRefund(ctx, wh)
	}

	d.Metrics.RecordWebhook(driverName, kind.String(), time.Since(start))
	return domain.Ack()
}

// mustBody returns the raw body when it is JSON, else a JSON string of it.
func mustBody(wh domain.Webhook) []byte {
	if json.Valid(wh.RawBody) {
		return wh.RawBody
	}
	raw, _ := json.Marshal(string(wh.RawBody))
	return raw
}

func (d *Driver) processPayment(ctx context.Context, wh domain.Webhook) {
	form := formOf(wh)
	signature := form[checksumHashName]
	delete(form, checksumHashName)
	if signature == "" || !VerifySignature(StringByParams(form), d.key, signature) {
		slog.Warn("paytm payment checksum mismatch", "driver_id", d.id)
		d.Metrics.RecordSignatureFailure(driverName)
		return
	}

	tx, err := d.Transactions.GetTransactionBySourceID(ctx, form["ORDERID"])
	if err != nil {
		slog.Info("transaction not found for paytm callback", "order_id", form["ORDERID"], "error", err)
		return
	}

	body, _ := json.Marshal(form)
	captured := form["STATUS"] == txnSuccess
	updated, changed, err := d.Events.HandlePayment(ctx, domain.PaymentEvent{
		Event:            "payment.paid",
		DriverID:         d.id,
		GatewayOrderID:   tx.GatewayOrderID,
		GatewayPaymentID: form["TXNID"],
		Captured:         &captured,
		Entity:           body,
		Body:             body,
	}, false)
	if err != nil {
		slog.Error("failed to apply paytm payment callback", "transaction_id", tx.ID, "error", err)
		return
	}
	if changed {
		d.Notify(domain.EventTransaction, updated, driverName)
	}
}

func (d *Driver) processRefund(ctx context.Context, wh domain.Webhook) {
	var env envelope
	if err := json.Unmarshal(wh.RawBody, &env); err != nil {
		slog.Warn("malformed paytm refund callback", "error", err)
		d.Metrics.RecordSignatureFailure(driverName)
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, env.Body); err != nil || !VerifySignature(compact.String(), d.key, env.Head.Signature) {
		slog.Warn("paytm refund checksum mismatch", "driver_id", d.id)
		d.Metrics.RecordSignatureFailure(driverName)
		return
	}

	var notice refundNotice
	if err := json.Unmarshal(env.Body, &notice); err != nil {
		slog.Warn("malformed paytm refund body", "error", err)
		return
	}
	tx, err := d.Transactions.GetTransactionByGatewayPaymentID(ctx, notice.TxnID)
	if err != nil {
		slog.Info("transaction not found for paytm refund", "txn_id", notice.TxnID, "error", err)
		return
	}

	gatewayStatus := domain.GatewayRefundProcessed
	if notice.Status != nil {
		slog.Error("paytm refund failed", "refund_id", notice.RefundID, "status", *notice.Status)
		gatewayStatus = domain.GatewayRefundFailed
	}
	ev := domain.RefundEvent{
		Event:               "payment.refunded",
		DriverID:            d.id,
		TransactionID:       tx.ID,
		GatewayRefundID:     notice.RefundID,
		RefundTransactionID: notice.RefID,
		Status:              gatewayStatus,
		Entity:              env.Body,
		Body:                wh.RawBody,
	}
	if minor, ok := minorUnits(notice.RefundAmount); ok {
		ev.AmountMinor = &minor
	}
	updated, _, changed, err := d.Events.HandleRefund(ctx, ev, false)
	if err != nil {
		slog.Error("failed to apply paytm refund callback", "transaction_id", tx.ID, "error", err)
		return
	}
	if changed {
		d.Notify(domain.EventRefund, updated, driverName)
	}
}
