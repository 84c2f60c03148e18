package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusSuccess   TransactionStatus = "success"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Final reports whether no further callback-driven transition is expected.
func (s TransactionStatus) Final() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

const (
	PaymentTypeLink       = "link"
	PaymentTypeStoreOrder = "store_order_payment"
	DefaultAPIVersion     = "1"
	DefaultClientVersion  = "1.0"
	CurrencyINR           = "INR"
	CountryCodeIndia      = "+91"
)

type StoreType string

const (
	StoreTypeNT  StoreType = "nt_store_id"
	StoreTypePOS StoreType = "pos_store_id"
	StoreTypeBD  StoreType = "bd_store_id"
)

func (s StoreType) Valid() bool {
	switch s {
	case StoreTypeNT, StoreTypePOS, StoreTypeBD:
		return true
	}
	return false
}

// Transaction is a payment intent. Empty GatewayOrderID and ClientID are
// stored as NULL.
type Transaction struct {
	ID               string
	SourceID         string
	TotalAmount      decimal.Decimal
	Amount           decimal.Decimal
	PaymentType      string
	StoreType        StoreType
	StoreID          string
	DriverID         int
	GatewayOrderID   string
	GatewayPaymentID string
	Status           TransactionStatus
	APIRequest       json.RawMessage
	APIResponse      json.RawMessage
	CallbackResponse json.RawMessage
	APIStatus        int
	ClientID         string
	AdditionalInfo   map[string]any
	APIVersion       string
	ClientVersion    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TransactionKey is the natural "already initiated" key of a transaction.
type TransactionKey struct {
	SourceID    string
	PaymentType string
	StoreID     string
	ClientID    string
}

type TransactionFilter struct {
	ClientID string
	Status   *TransactionStatus
	DriverID *int
	SourceID string
	Page     int
	Limit    int
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	SaveTransaction(ctx context.Context, tx *Transaction) error
	// ApplyCallbackUpdate writes status, gateway_payment_id and callback_response.
	// Unless force is set the write only happens while the stored status is not
	// success; the returned flag reports whether a row was changed.
	ApplyCallbackUpdate(ctx context.Context, tx *Transaction, force bool) (bool, error)
	// CancelTransaction moves a non-success transaction to cancelled.
	CancelTransaction(ctx context.Context, id string) (bool, error)
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	GetTransactionByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Transaction, error)
	GetTransactionByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Transaction, error)
	GetTransactionBySourceID(ctx context.Context, sourceID string) (*Transaction, error)
	FindTransactionsByKey(ctx context.Context, key TransactionKey) ([]*Transaction, error)
	ListUnsettledTransactions(ctx context.Context, limit int) ([]*Transaction, error)
	ListTransactionsByStatus(ctx context.Context, status TransactionStatus, limit int) ([]*Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, int64, error)
}
