package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// PaymentEventPublisher turns persisted transaction and refund changes into
// PaymentEvent messages. Broker failures are logged and never returned.
type PaymentEventPublisher struct {
	port  domain.PublisherPort
	topic string
	now   func() time.Time
}

func NewPaymentEventPublisher(port domain.PublisherPort, topic string) *PaymentEventPublisher {
	return &PaymentEventPublisher{port: port, topic: topic, now: time.Now}
}

func (p *PaymentEventPublisher) PublishTransaction(ctx context.Context, event string, tx *domain.Transaction) {
	p.publish(ctx, tx.ID, p.transactionEvent(event, tx))
}

func (p *PaymentEventPublisher) PublishRefund(ctx context.Context, event string, tx *domain.Transaction, refund *domain.RefundTransaction) {
	ev := p.transactionEvent(event, tx)
	ev.RefundID = refund.ID
	ev.RefundStatus = string(refund.Status)
	ev.RefundAmount = refund.Amount.StringFixed(2)
	p.publish(ctx, tx.ID, ev)
}

func (p *PaymentEventPublisher) transactionEvent(event string, tx *domain.Transaction) PaymentEvent {
	return PaymentEvent{
		Event:         event,
		TransactionID: tx.ID,
		SourceID:      tx.SourceID,
		ClientID:      tx.ClientID,
		Driver:        tx.DriverID,
		Status:        string(tx.Status),
		Amount:        tx.Amount.StringFixed(2),
		OccurredAt:    p.now().UTC(),
	}
}

func (p *PaymentEventPublisher) publish(ctx context.Context, key string, ev PaymentEvent) {
	value, err := json.Marshal(ev)
	if err != nil {
		slog.Error("failed to marshal payment event", "event", ev.Event, "transaction_id", ev.TransactionID, "error", err)
		return
	}
	if err := p.port.Publish(ctx, p.topic, domain.Message{Key: []byte(key), Value: value}); err != nil {
		slog.Error("failed to publish payment event", "event", ev.Event, "transaction_id", ev.TransactionID, "error", err)
	}
}

// NoopEventPublisher is used when kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishTransaction(context.Context, string, *domain.Transaction) {}

func (NoopEventPublisher) PublishRefund(context.Context, string, *domain.Transaction, *domain.RefundTransaction) {
}

var (
	_ domain.EventPublisher = (*PaymentEventPublisher)(nil)
	_ domain.EventPublisher = NoopEventPublisher{}
	_ domain.PublisherPort  = (*DefaultKafkaPublisher)(nil)
)
