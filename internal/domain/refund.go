package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundPending RefundStatus = "pending"
	RefundSuccess RefundStatus = "success"
	RefundFailed  RefundStatus = "failed"
)

// RefundTransaction is a refund intent against a Transaction. RefundID is the
// gateway refund reference, unique once assigned.
type RefundTransaction struct {
	ID               string
	TransactionID    string
	RefundID         string
	Status           RefundStatus
	Amount           decimal.Decimal
	APIRequest       json.RawMessage
	APIResponse      json.RawMessage
	CallbackResponse json.RawMessage
	APIStatus        int
	AdditionalInfo   map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type RefundFilter struct {
	TransactionID string
	Status        *RefundStatus
	Page          int
	Limit         int
}

type RefundRepository interface {
	CreateRefund(ctx context.Context, refund *RefundTransaction) error
	SaveRefund(ctx context.Context, refund *RefundTransaction) error
	// ApplyRefundCallback writes refund_id, status, amount and the raw
	// responses. Unless force is set it only touches a refund that is not
	// already success.
	ApplyRefundCallback(ctx context.Context, refund *RefundTransaction, force bool) (bool, error)
	GetRefundByID(ctx context.Context, id string) (*RefundTransaction, error)
	GetRefundByGatewayRefundID(ctx context.Context, transactionID, refundID string) (*RefundTransaction, error)
	// ListAssignedRefunds returns refunds of a transaction that already carry a gateway refund id.
	ListAssignedRefunds(ctx context.Context, transactionID string) ([]*RefundTransaction, error)
	ListPendingRefunds(ctx context.Context, limit int) ([]*RefundTransaction, error)
	ListRefunds(ctx context.Context, filter RefundFilter) ([]*RefundTransaction, int64, error)
}
