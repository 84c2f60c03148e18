package domain

import (
	"context"
	"encoding/json"
	"time"
)

type CallbackType string

const (
	CallbackPayment CallbackType = "payment"
	CallbackRefund  CallbackType = "refund"
	CallbackQRCode  CallbackType = "qr_code"
	CallbackDispute CallbackType = "dispute"
	CallbackUnknown CallbackType = "unknown"
)

// CallbackLinkage records whether an audit row is attached to a transaction.
// Deferred rows were received before (or without) a matching transaction.
type CallbackLinkage string

const (
	CallbackLinked   CallbackLinkage = "linked"
	CallbackDeferred CallbackLinkage = "deferred"
)

// TransactionCallback is an append-only audit row for one inbound webhook.
type TransactionCallback struct {
	ID            uint
	TransactionID string
	Linkage       CallbackLinkage
	Callback      json.RawMessage
	Event         string
	Type          CallbackType
	DriverID      int
	CreatedAt     time.Time
}

// NewTransactionCallback builds an audit row; an empty transactionID yields a
// deferred row.
func NewTransactionCallback(transactionID string, typ CallbackType, event string, driverID int, body json.RawMessage) *TransactionCallback {
	linkage := CallbackLinked
	if transactionID == "" {
		linkage = CallbackDeferred
	}
	return &TransactionCallback{
		TransactionID: transactionID,
		Linkage:       linkage,
		Callback:      body,
		Event:         event,
		Type:          typ,
		DriverID:      driverID,
	}
}

type CallbackRepository interface {
	AppendCallback(ctx context.Context, cb *TransactionCallback) error
	ListCallbacksByTransaction(ctx context.Context, transactionID string) ([]*TransactionCallback, error)
}
