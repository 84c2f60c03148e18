package kafka

import "time"

// PaymentEvent is the message value published to the payment events topic.
type PaymentEvent struct {
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id"`
	SourceID      string    `json:"source_id"`
	ClientID      string    `json:"client_id,omitempty"`
	Driver        int       `json:"driver"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	RefundID      string    `json:"refund_id,omitempty"`
	RefundStatus  string    `json:"refund_status,omitempty"`
	RefundAmount  string    `json:"refund_amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
