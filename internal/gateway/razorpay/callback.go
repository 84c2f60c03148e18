package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

const SignatureHeader = "X-Razorpay-Signature"

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (d *Driver) verify(body []byte, signature string) bool {
	if d.webhookSecret == "" || signature == "" {
		return false
	}
	expected := Sign(body, d.webhookSecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// classified is a webhook sorted into its sub-protocol before dispatch.
type classified struct {
	kind    domain.WebhookKind
	event   string
	orderID string
	hook    webhook
}

func classify(body []byte) classified {
	var hook webhook
	if err := json.Unmarshal(body, &hook); err != nil || hook.Event == "" {
		return classified{kind: domain.WebhookMalformed, hook: hook, event: hook.Event}
	}
	c := classified{event: hook.Event, hook: hook}

	if strings.HasPrefix(hook.Event, "qr_code.") {
		c.kind = domain.WebhookQR
		return c
	}

	var ref struct {
		OrderID string `json:"order_id"`
	}
	if p := hook.Payload.Payment; p != nil && json.Unmarshal(p.Entity, &ref) == nil && ref.OrderID != "" {
		c.orderID = ref.OrderID
	} else if l := hook.Payload.PaymentLink; l != nil && json.Unmarshal(l.Entity, &ref) == nil && ref.OrderID != "" {
		c.orderID = ref.OrderID
	}

	if c.orderID != "" || strings.HasPrefix(hook.Event, domain.DisputeEventPrefix) {
		c.kind = domain.WebhookPayment
		return c
	}
	c.kind = domain.WebhookMalformed
	return c
}

// ProcessCallback verifies, classifies and applies one webhook. The gateway
// is always acknowledged.
func (d *Driver) ProcessCallback(ctx context.Context, wh domain.Webhook) domain.WebhookAck {
	start := time.Now()

	if !d.verify(wh.RawBody, wh.Header(SignatureHeader)) {
		slog.Warn("razorpay webhook signature mismatch", "driver_id", d.id)
		d.Metrics.RecordSignatureFailure(driverName)
		return domain.Ack()
	}

	c := classify(wh.RawBody)
	body := json.RawMessage(wh.RawBody)
	switch c.kind {
	case domain.WebhookPayment:
		d.dispatchPayment(ctx, c, body)
	case domain.WebhookQR:
		d.dispatchQR(ctx, c, body)
	default:
		slog.Warn("unrecognized razorpay webhook", "event", c.event, "driver_id", d.id)
		if err := d.Events.RecordUnknown(ctx, d.id, c.event, body); err != nil {
			slog.Error("failed to record unknown webhook", "error", err)
		}
	}

	d.Metrics.RecordWebhook(driverName, c.kind.String(), time.Since(start))
	return domain.Ack()
}

func (d *Driver) paymentEvent(c classified, body json.RawMessage) (domain.PaymentEvent, bool) {
	ev := domain.PaymentEvent{
		Event:          c.event,
		DriverID:       d.id,
		GatewayOrderID: c.orderID,
		Body:           body,
	}
	if c.hook.Payload.Payment == nil {
		return ev, false
	}
	var p paymentEntity
	if err := json.Unmarshal(c.hook.Payload.Payment.Entity, &p); err != nil {
		return ev, false
	}
	ev.GatewayPaymentID = p.ID
	ev.Captured = p.Captured
	ev.Entity = c.hook.Payload.Payment.Entity
	return ev, true
}

func (d *Driver) dispatchPayment(ctx context.Context, c classified, body json.RawMessage) {
	switch {
	case c.event == domain.EventPaymentCaptured,
		c.event == domain.EventPaymentFailed,
		c.event == domain.EventPaymentAuthorized,
		c.event == domain.EventPaymentLinkPaid:
		ev, _ := d.paymentEvent(c, body)
		tx, changed, err := d.Events.HandlePayment(ctx, ev, false)
		if err != nil {
			slog.Error("failed to apply payment webhook", "event", c.event, "order_id", c.orderID, "error", err)
			return
		}
		if changed {
			d.Notify(domain.EventTransaction, tx, driverName)
		}

	case strings.HasPrefix(c.event, "refund."):
		d.dispatchRefund(ctx, c, body)

	case c.event == domain.EventPaymentLinkCancelled:
		var link paymentLinkEntity
		if c.hook.Payload.PaymentLink != nil {
			_ = json.Unmarshal(c.hook.Payload.PaymentLink.Entity, &link)
		}
		tx, changed, err := d.Events.HandlePaymentLinkCancelled(ctx, domain.PaymentLinkEvent{
			Event:          c.event,
			DriverID:       d.id,
			GatewayOrderID: c.orderID,
			PlinkID:        link.ID,
			Status:         link.Status,
			Body:           body,
		})
		if err != nil {
			slog.Error("failed to apply payment link cancellation", "order_id", c.orderID, "error", err)
			return
		}
		if changed {
			d.Notify(domain.EventTransaction, tx, driverName)
		}

	case strings.HasPrefix(c.event, domain.DisputeEventPrefix):
		d.dispatchDispute(ctx, c, body)

	default:
		slog.Info("unhandled razorpay event", "event", c.event)
		if err := d.Events.RecordUnknown(ctx, d.id, c.event, body); err != nil {
			slog.Error("failed to record unknown webhook", "error", err)
		}
	}
}

func (d *Driver) dispatchRefund(ctx context.Context, c classified, body json.RawMessage) {
	ev := domain.RefundEvent{Event: c.event, DriverID: d.id, Body: body}
	if pe, ok := d.paymentEvent(c, nil); ok {
		ev.Payment = &pe
	}
	if r := c.hook.Payload.Refund; r != nil {
		var entity refundEntity
		if err := json.Unmarshal(r.Entity, &entity); err == nil {
			amount := entity.Amount
			ev.GatewayRefundID = entity.ID
			ev.RefundTransactionID = entity.Notes.str("refund_transaction_id")
			ev.TransactionID = entity.Notes.str("transaction_id")
			ev.Status = entity.Status
			ev.AmountMinor = &amount
			ev.Entity = r.Entity
		}
	}
	tx, _, changed, err := d.Events.HandleRefund(ctx, ev, false)
	if err != nil {
		slog.Error("failed to apply refund webhook", "event", c.event, "refund_id", ev.GatewayRefundID, "error", err)
		return
	}
	if changed {
		d.Notify(domain.EventRefund, tx, driverName)
	}
}

func (d *Driver) dispatchDispute(ctx context.Context, c classified, body json.RawMessage) {
	ev := domain.DisputeEvent{Event: c.event, DriverID: d.id, Body: body}
	if c.hook.Payload.Dispute != nil {
		var entity disputeEntity
		if err := json.Unmarshal(c.hook.Payload.Dispute.Entity, &entity); err == nil {
			ev.Dispute = toDispute(entity, d.id)
		}
	}
	if err := d.Events.HandleDispute(ctx, ev); err != nil {
		slog.Error("failed to apply dispute webhook", "event", c.event, "error", err)
	}
}

func (d *Driver) dispatchQR(ctx context.Context, c classified, body json.RawMessage) {
	ev := domain.QREvent{Event: c.event, DriverID: d.id, Body: body}
	if q := c.hook.Payload.QRCode; q != nil {
		var entity qrEntity
		if err := json.Unmarshal(q.Entity, &entity); err == nil {
			ev.QRID = entity.ID
			ev.Usage = domain.QRUsage(entity.Usage)
			ev.Type = domain.QRType(entity.Type)
			ev.FixedAmount = entity.FixedAmount
			ev.Notes = entity.Notes
			ev.ImageURL = entity.ImageURL
			ev.CloseBy = unixTime(entity.CloseBy)
			ev.ClosedAt = unixTime(entity.ClosedAt)
			ev.CloseReason = entity.CloseReason
			ev.Status = domain.QRStatus(entity.Status)
		}
	}
	if p := c.hook.Payload.Payment; p != nil {
		var entity paymentEntity
		if err := json.Unmarshal(p.Entity, &entity); err == nil {
			ev.GatewayPaymentID = entity.ID
			ev.PaymentAmountMinor = entity.Amount
		}
	}
	if err := d.Events.HandleQR(ctx, ev); err != nil {
		slog.Error("failed to apply qr webhook", "event", c.event, "qr_id", ev.QRID, "error", err)
	}
}

func toDispute(e disputeEntity, driverID int) domain.Dispute {
	return domain.Dispute{
		DisputeID:        e.ID,
		Entity:           e.Entity,
		PaymentID:        e.PaymentID,
		Amount:           e.Amount,
		Currency:         e.Currency,
		Comments:         e.Comments,
		GatewayDisputeID: e.GatewayDisputeID,
		AmountDeducted:   e.AmountDeducted,
		ReasonCode:       e.ReasonCode,
		RespondBy:        unixTime(e.RespondBy),
		Status:           domain.DisputeStatus(e.Status),
		Phase:            e.Phase,
		DriverCreatedAt:  unixTime(e.CreatedAt),
		DriverID:         driverID,
	}
}
