package callback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
)

// DefaultCallbackHandler is the protocol state machine behind every driver's
// webhook and status-poll path. Status writes go through conditional updates
// so concurrent deliveries of the same event apply at most once.
type DefaultCallbackHandler struct {
	Transactions domain.TransactionRepository
	Refunds      domain.RefundRepository
	QRCodes      domain.QRCodeRepository
	Links        domain.PaymentLinkRepository
	Callbacks    domain.CallbackRepository
	Disputes     domain.DisputeRepository
	Publisher    domain.EventPublisher
	Metrics      *metrics.PaymentMetrics
}

var _ domain.CallbackEventHandler = (*DefaultCallbackHandler)(nil)

func NewDefaultCallbackHandler(
	transactions domain.TransactionRepository,
	refunds domain.RefundRepository,
	qrCodes domain.QRCodeRepository,
	links domain.PaymentLinkRepository,
	callbacks domain.CallbackRepository,
	disputes domain.DisputeRepository,
	publisher domain.EventPublisher,
	paymentMetrics *metrics.PaymentMetrics) *DefaultCallbackHandler {

	return &DefaultCallbackHandler{
		Transactions: transactions,
		Refunds:      refunds,
		QRCodes:      qrCodes,
		Links:        links,
		Callbacks:    callbacks,
		Disputes:     disputes,
		Publisher:    publisher,
		Metrics:      paymentMetrics,
	}
}

// audit appends the raw webhook to the callback log. Polls carry no body and
// leave no row.
func (h *DefaultCallbackHandler) audit(ctx context.Context, transactionID string, typ domain.CallbackType, event string, driverID int, body json.RawMessage) {
	if len(body) == 0 {
		return
	}
	cb := domain.NewTransactionCallback(transactionID, typ, event, driverID, body)
	if err := h.Callbacks.AppendCallback(ctx, cb); err != nil {
		slog.Error("failed to append transaction callback", "transaction_id", transactionID, "event", event, "error", err)
		h.Metrics.RecordError("append_callback", "repository")
	}
}

func (h *DefaultCallbackHandler) publishTransaction(ctx context.Context, event string, tx *domain.Transaction) {
	if h.Publisher == nil {
		return
	}
	h.Publisher.PublishTransaction(ctx, event, tx)
}

func (h *DefaultCallbackHandler) publishRefund(ctx context.Context, event string, tx *domain.Transaction, refund *domain.RefundTransaction) {
	if h.Publisher == nil {
		return
	}
	h.Publisher.PublishRefund(ctx, event, tx, refund)
}

// RecordUnknown keeps a webhook nobody understood.
func (h *DefaultCallbackHandler) RecordUnknown(ctx context.Context, driverID int, event string, body json.RawMessage) error {
	if len(body) == 0 {
		body = json.RawMessage(`null`)
	}
	cb := domain.NewTransactionCallback("", domain.CallbackUnknown, event, driverID, body)
	if err := h.Callbacks.AppendCallback(ctx, cb); err != nil {
		return fmt.Errorf("failed to record unknown callback: %w", err)
	}
	return nil
}

func driverLabel(driverID int) string {
	return strconv.Itoa(driverID)
}

func notFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// payload prefers the webhook body and falls back to the polled entity.
func payload(body, entity json.RawMessage) json.RawMessage {
	if len(body) > 0 {
		return body
	}
	return entity
}
