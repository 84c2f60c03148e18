package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePort struct {
	topic string
	msgs  []domain.Message
	err   error
}

func (c *capturePort) Publish(_ context.Context, topic string, msgs ...domain.Message) error {
	c.topic = topic
	c.msgs = append(c.msgs, msgs...)
	return c.err
}

func TestPublishRefund_EncodesEvent(t *testing.T) {
	port := &capturePort{}
	pub := NewPaymentEventPublisher(port, "payment-events")
	pub.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	tx := &domain.Transaction{
		ID:       "01HZX0000000000000000000AA",
		SourceID: "order_abc",
		DriverID: 1,
		Status:   domain.StatusSuccess,
		Amount:   decimal.NewFromInt(500),
	}
	refund := &domain.RefundTransaction{ID: "01HZX0000000000000000000RF", Status: domain.RefundSuccess, Amount: decimal.NewFromInt(200)}

	pub.PublishRefund(context.Background(), domain.EventRefundUpdated, tx, refund)

	require.Len(t, port.msgs, 1)
	assert.Equal(t, "payment-events", port.topic)
	assert.Equal(t, tx.ID, string(port.msgs[0].Key))

	var ev PaymentEvent
	require.NoError(t, json.Unmarshal(port.msgs[0].Value, &ev))
	assert.Equal(t, "refund.updated", ev.Event)
	assert.Equal(t, "500.00", ev.Amount)
	assert.Equal(t, "200.00", ev.RefundAmount)
	assert.Equal(t, "success", ev.RefundStatus)
}

func TestPublish_SwallowsBrokerErrors(t *testing.T) {
	port := &capturePort{err: errors.New("broker down")}
	pub := NewPaymentEventPublisher(port, "payment-events")

	assert.NotPanics(t, func() {
		pub.PublishTransaction(context.Background(), domain.EventPaymentCreated, &domain.Transaction{ID: "x"})
	})
	assert.Len(t, port.msgs, 1)
}
