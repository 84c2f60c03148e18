package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Gateway-side payment link statuses mirrored onto PaymentLink.Status.
const (
	LinkIssued    = "issued"
	LinkCreated   = "created"
	LinkPending   = "pending"
	LinkPaid      = "paid"
	LinkCancelled = "cancelled"
	LinkExpired   = "expired"
	LinkFailed    = "failed"
)

type NotifyMedium string

const (
	NotifySMS   NotifyMedium = "sms"
	NotifyEmail NotifyMedium = "email"
)

func (m NotifyMedium) Valid() bool {
	return m == NotifySMS || m == NotifyEmail
}

// PaymentLink tracks a hosted payment link, one per Transaction of payment
// type "link".
type PaymentLink struct {
	ID               string
	TransactionID    string
	PlinkID          string
	Status           string
	APIResponse      json.RawMessage
	UpdateCount      int
	NotifySMSCount   int
	NotifyEmailCount int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LinkTransactionStatus maps a gateway link status onto a transaction status.
func LinkTransactionStatus(linkStatus string) TransactionStatus {
	switch linkStatus {
	case LinkCreated:
		return StatusPending
	case LinkCancelled:
		return StatusCancelled
	case LinkPaid:
		return StatusSuccess
	default:
		return StatusFailed
	}
}

type PaymentLinkRepository interface {
	CreatePaymentLink(ctx context.Context, link *PaymentLink) error
	SavePaymentLink(ctx context.Context, link *PaymentLink) error
	GetPaymentLinkByTransactionID(ctx context.Context, transactionID string) (*PaymentLink, error)
}

// PaymentLinkResult is returned by every payment link operation.
type PaymentLinkResult struct {
	Transaction     *Transaction
	PaymentLink     *PaymentLink
	GatewayResponse json.RawMessage
}
