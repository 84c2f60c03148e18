package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

// Published event names.
const (
	EventPaymentCreated = "payment.created"
	EventPaymentUpdated = "payment.updated"
	EventRefundCreated  = "refund.created"
	EventRefundUpdated  = "refund.updated"
)

// EventPublisher announces persisted state changes to downstream consumers.
// Implementations must not block the caller on broker failures.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, event string, tx *Transaction)
	PublishRefund(ctx context.Context, event string, tx *Transaction, refund *RefundTransaction)
}
