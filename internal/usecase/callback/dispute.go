package callback

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// HandleDispute upserts the dispute keyed by the gateway dispute id.
func (h *DefaultCallbackHandler) HandleDispute(ctx context.Context, ev domain.DisputeEvent) error {
	var transactionID string
	if ev.Dispute.PaymentID != "" {
		if tx, err := h.Transactions.GetTransactionByGatewayPaymentID(ctx, ev.Dispute.PaymentID); err == nil {
			transactionID = tx.ID
		}
	}
	h.audit(ctx, transactionID, domain.CallbackDispute, ev.Event, ev.DriverID, ev.Body)

	if ev.Dispute.DisputeID == "" {
		return domain.Unprocessable("dispute event carries no dispute id")
	}
	dispute := ev.Dispute
	dispute.DriverID = ev.DriverID
	if existing, err := h.Disputes.GetDisputeByDisputeID(ctx, dispute.DisputeID); err == nil {
		dispute.ID = existing.ID
		dispute.DisputeEvidenceID = existing.DisputeEvidenceID
	} else if !notFound(err) {
		return fmt.Errorf("failed to load dispute: %w", err)
	}
	if err := h.Disputes.UpsertDispute(ctx, &dispute); err != nil {
		return fmt.Errorf("failed to upsert dispute: %w", err)
	}
	return nil
}
