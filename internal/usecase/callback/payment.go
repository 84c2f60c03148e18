package callback

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// HandlePayment applies a payment notification to the transaction that owns
// the gateway order. A missing transaction is never created from a payment
// event. Without force a transaction already in success is left untouched.
func (h *DefaultCallbackHandler) HandlePayment(ctx context.Context, ev domain.PaymentEvent, force bool) (*domain.Transaction, bool, error) {
	if ev.GatewayOrderID == "" {
		h.audit(ctx, "", domain.CallbackPayment, ev.Event, ev.DriverID, ev.Body)
		return nil, false, domain.NotFound("payment event carries no gateway order id")
	}

	tx, err := h.Transactions.GetTransactionByGatewayOrderID(ctx, ev.GatewayOrderID)
	if err != nil {
		if notFound(err) {
			h.audit(ctx, "", domain.CallbackPayment, ev.Event, ev.DriverID, ev.Body)
			return nil, false, domain.NotFound(fmt.Sprintf("transaction not found for order %s", ev.GatewayOrderID))
		}
		return nil, false, fmt.Errorf("failed to load transaction: %w", err)
	}
	h.audit(ctx, tx.ID, domain.CallbackPayment, ev.Event, ev.DriverID, ev.Body)

	if tx.Status == domain.StatusSuccess && !force {
		return tx, false, nil
	}

	updated := *tx
	if ev.GatewayPaymentID != "" {
		updated.GatewayPaymentID = ev.GatewayPaymentID
	}
	updated.CallbackResponse = payload(ev.Body, ev.Entity)
	if target, ok := ev.TargetStatus(); ok {
		updated.Status = target
	}

	applied, err := h.Transactions.ApplyCallbackUpdate(ctx, &updated, force)
	if err != nil {
		return nil, false, fmt.Errorf("failed to apply payment callback: %w", err)
	}
	if !applied {
		// Lost the race against a concurrent success.
		current, err := h.Transactions.GetTransactionByID(ctx, tx.ID)
		if err != nil {
			return tx, false, nil
		}
		return current, false, nil
	}

	if updated.Status != tx.Status {
		h.Metrics.RecordPaymentStatus(driverLabel(updated.DriverID), string(updated.Status))
	}
	h.publishTransaction(ctx, domain.EventPaymentUpdated, &updated)
	return &updated, true, nil
}

// HandlePaymentLinkCancelled cancels the transaction behind a link unless it
// already succeeded and mirrors the state onto the link row.
func (h *DefaultCallbackHandler) HandlePaymentLinkCancelled(ctx context.Context, ev domain.PaymentLinkEvent) (*domain.Transaction, bool, error) {
	tx, err := h.Transactions.GetTransactionByGatewayOrderID(ctx, ev.GatewayOrderID)
	if err != nil {
		h.audit(ctx, "", domain.CallbackPayment, ev.Event, ev.DriverID, ev.Body)
		if notFound(err) {
			return nil, false, domain.NotFound(fmt.Sprintf("transaction not found for order %s", ev.GatewayOrderID))
		}
		return nil, false, fmt.Errorf("failed to load transaction: %w", err)
	}
	h.audit(ctx, tx.ID, domain.CallbackPayment, ev.Event, ev.DriverID, ev.Body)

	changed, err := h.Transactions.CancelTransaction(ctx, tx.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to cancel transaction: %w", err)
	}

	if link, err := h.Links.GetPaymentLinkByTransactionID(ctx, tx.ID); err == nil {
		link.Status = domain.LinkCancelled
		if len(ev.Body) > 0 {
			link.APIResponse = ev.Body
		}
		if err := h.Links.SavePaymentLink(ctx, link); err != nil {
			return nil, false, fmt.Errorf("failed to update payment link: %w", err)
		}
	} else if !notFound(err) {
		return nil, false, fmt.Errorf("failed to load payment link: %w", err)
	}

	if !changed {
		return tx, false, nil
	}
	current, err := h.Transactions.GetTransactionByID(ctx, tx.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reload transaction: %w", err)
	}
	h.Metrics.RecordPaymentStatus(driverLabel(current.DriverID), string(current.Status))
	h.publishTransaction(ctx, domain.EventPaymentUpdated, current)
	return current, true, nil
}
