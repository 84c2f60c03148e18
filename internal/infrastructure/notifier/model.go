package notifier

import (
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payment-gateway/internal/usecase/dto/payment"
)

const (
	entityTransaction = "transaction"
	entityRefunds     = "refunds"
)

// NewCallbackPayload builds the body posted to the client. Refunds are
// attached only for refund events.
func NewCallbackPayload(n domain.Notification, refunds []*domain.RefundTransaction) paymentdto.ClientCallbackPayload {
	payload := paymentdto.ClientCallbackPayload{
		Event:       string(n.Event),
		Transaction: paymentdto.FromTransaction(n.Transaction),
		Entity:      []string{entityTransaction},
		Driver:      n.DriverName,
	}
	if n.Event == domain.EventRefund {
		payload.Refunds = paymentdto.FromRefunds(refunds)
		payload.Entity = append(payload.Entity, entityRefunds)
	}
	return payload
}
