package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Gateway event names understood by the callback handler.
const (
	EventPaymentCaptured      = "payment.captured"
	EventPaymentFailed        = "payment.failed"
	EventPaymentAuthorized    = "payment.authorized"
	EventPaymentLinkPaid      = "payment_link.paid"
	EventPaymentLinkCancelled = "payment_link.cancelled"
	EventRefundCreatedHook    = "refund.created"
	EventRefundProcessed      = "refund.processed"
	EventRefundFailed         = "refund.failed"
	EventQRCreated            = "qr_code.created"
	EventQRCredited           = "qr_code.credited"
	EventQRClosed             = "qr_code.closed"
	DisputeEventPrefix        = "payment.dispute."
)

// Gateway refund statuses.
const (
	GatewayRefundFailed    = "failed"
	GatewayRefundProcessed = "processed"
)

// PaymentEvent is a decoded payment notification, either from a webhook or
// from a status poll (Body empty).
type PaymentEvent struct {
	Event            string
	DriverID         int
	GatewayOrderID   string
	GatewayPaymentID string
	// Captured is nil when the gateway did not report the flag.
	Captured *bool
	Entity   json.RawMessage
	Body     json.RawMessage
}

// TargetStatus maps the captured flag: true is success, false is failed and
// an absent flag leaves the status unchanged.
func (e PaymentEvent) TargetStatus() (TransactionStatus, bool) {
	if e.Captured == nil {
		return "", false
	}
	if *e.Captured {
		return StatusSuccess, true
	}
	return StatusFailed, true
}

// RefundEvent is a decoded refund notification. The parent transaction is
// resolved through Payment when present, else through TransactionID.
type RefundEvent struct {
	Event               string
	DriverID            int
	Payment             *PaymentEvent
	TransactionID       string
	GatewayRefundID     string
	RefundTransactionID string
	Status              string
	AmountMinor         *int64
	Entity              json.RawMessage
	Body                json.RawMessage
}

func (e RefundEvent) TargetStatus() (RefundStatus, bool) {
	switch e.Status {
	case GatewayRefundFailed:
		return RefundFailed, true
	case GatewayRefundProcessed:
		return RefundSuccess, true
	}
	return "", false
}

// QREvent is a decoded qr_code.* notification.
type QREvent struct {
	Event              string
	DriverID           int
	QRID               string
	Usage              QRUsage
	Type               QRType
	FixedAmount        bool
	Notes              map[string]any
	ImageURL           string
	CloseBy            *time.Time
	ClosedAt           *time.Time
	CloseReason        string
	Status             QRStatus
	GatewayPaymentID   string
	PaymentAmountMinor int64
	Body               json.RawMessage
}

type PaymentLinkEvent struct {
	Event          string
	DriverID       int
	GatewayOrderID string
	PlinkID        string
	Status         string
	Body           json.RawMessage
}

type DisputeEvent struct {
	Event    string
	DriverID int
	Dispute  Dispute
	Body     json.RawMessage
}

// CallbackEventHandler applies decoded gateway notifications to local state.
// The bool results report whether state actually changed.
type CallbackEventHandler interface {
	HandlePayment(ctx context.Context, ev PaymentEvent, force bool) (*Transaction, bool, error)
	HandleRefund(ctx context.Context, ev RefundEvent, force bool) (*Transaction, *RefundTransaction, bool, error)
	HandleQR(ctx context.Context, ev QREvent) error
	HandlePaymentLinkCancelled(ctx context.Context, ev PaymentLinkEvent) (*Transaction, bool, error)
	HandleDispute(ctx context.Context, ev DisputeEvent) error
	RecordUnknown(ctx context.Context, driverID int, event string, body json.RawMessage) error
}
