package callback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// HandleRefund refreshes the parent transaction first, then resolves the
// refund row: by the refund_transaction_id note, else by the gateway refund
// id under that transaction, else by adopting a refund started outside this
// service.
func (h *DefaultCallbackHandler) HandleRefund(ctx context.Context, ev domain.RefundEvent, force bool) (*domain.Transaction, *domain.RefundTransaction, bool, error) {
	tx, err := h.refundParent(ctx, ev, force)
	if err != nil {
		h.audit(ctx, "", domain.CallbackRefund, ev.Event, ev.DriverID, ev.Body)
		return nil, nil, false, err
	}
	h.audit(ctx, tx.ID, domain.CallbackRefund, ev.Event, ev.DriverID, ev.Body)

	refund, adopted, err := h.resolveRefund(ctx, tx, ev)
	if err != nil {
		return tx, nil, false, err
	}
	if refund.Status == domain.RefundSuccess && !force {
		return tx, refund, adopted, nil
	}

	updated := *refund
	if ev.GatewayRefundID != "" {
		updated.RefundID = ev.GatewayRefundID
	}
	if ev.AmountMinor != nil {
		updated.Amount = domain.FromMinorUnits(*ev.AmountMinor)
	}
	updated.CallbackResponse = payload(ev.Body, ev.Entity)
	if target, ok := ev.TargetStatus(); ok {
		updated.Status = target
	}

	applied, err := h.Refunds.ApplyRefundCallback(ctx, &updated, force)
	if err != nil {
		return tx, nil, false, fmt.Errorf("failed to apply refund callback: %w", err)
	}
	if !applied {
		return tx, refund, adopted, nil
	}
	if updated.Status != refund.Status {
		h.Metrics.RecordRefundStatus(driverLabel(tx.DriverID), string(updated.Status))
	}
	h.publishRefund(ctx, domain.EventRefundUpdated, tx, &updated)
	return tx, &updated, true, nil
}

func (h *DefaultCallbackHandler) refundParent(ctx context.Context, ev domain.RefundEvent, force bool) (*domain.Transaction, error) {
	if ev.Payment != nil && ev.Payment.GatewayOrderID != "" {
		tx, _, err := h.HandlePayment(ctx, *ev.Payment, force)
		if err == nil {
			return tx, nil
		}
		if ev.TransactionID == "" {
			return nil, err
		}
		slog.Warn("refund parent not found by order, trying transaction id", "order_id", ev.Payment.GatewayOrderID, "transaction_id", ev.TransactionID)
	}
	if ev.TransactionID == "" {
		return nil, domain.NotFound("refund event references no transaction")
	}
	tx, err := h.Transactions.GetTransactionByID(ctx, ev.TransactionID)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return tx, nil
}

func (h *DefaultCallbackHandler) resolveRefund(ctx context.Context, tx *domain.Transaction, ev domain.RefundEvent) (*domain.RefundTransaction, bool, error) {
	if ev.RefundTransactionID != "" {
		refund, err := h.Refunds.GetRefundByID(ctx, ev.RefundTransactionID)
		switch {
		case err == nil && refund.TransactionID == tx.ID:
			return refund, false, nil
		case err == nil:
			slog.Warn("refund note points at another transaction", "refund_transaction_id", ev.RefundTransactionID, "transaction_id", tx.ID)
		case !notFound(err):
			return nil, false, fmt.Errorf("failed to load refund: %w", err)
		}
	}

	if ev.GatewayRefundID != "" {
		refund, err := h.Refunds.GetRefundByGatewayRefundID(ctx, tx.ID, ev.GatewayRefundID)
		if err == nil {
			return refund, false, nil
		}
		if !notFound(err) {
			return nil, false, fmt.Errorf("failed to load refund: %w", err)
		}
	} else {
		return nil, false, domain.NotFound("refund event carries neither a local nor a gateway refund id")
	}

	adopted := &domain.RefundTransaction{
		TransactionID:  tx.ID,
		RefundID:       ev.GatewayRefundID,
		Status:         domain.RefundPending,
		Amount:         tx.Amount,
		APIResponse:    ev.Entity,
		AdditionalInfo: map[string]any{"origin": "gateway"},
	}
	if ev.AmountMinor != nil {
		adopted.Amount = domain.FromMinorUnits(*ev.AmountMinor)
	}
	if err := h.Refunds.CreateRefund(ctx, adopted); err != nil {
		return nil, false, fmt.Errorf("failed to adopt refund: %w", err)
	}
	slog.Info("adopted refund started outside the service", "transaction_id", tx.ID, "refund_id", ev.GatewayRefundID)
	h.Metrics.RecordRefundRequested(driverLabel(tx.DriverID))
	h.publishRefund(ctx, domain.EventRefundCreated, tx, adopted)
	return adopted, true, nil
}
