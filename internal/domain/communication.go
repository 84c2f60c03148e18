package domain

import (
	"context"
	"time"
)

type NotificationEvent string

const (
	EventTransaction NotificationEvent = "transaction"
	EventRefund      NotificationEvent = "refund"
)

type CommunicationStatus string

const (
	CommunicationPending CommunicationStatus = "pending"
	CommunicationSuccess CommunicationStatus = "success"
	CommunicationFailed  CommunicationStatus = "failed"
)

// TransactionCommunication tracks delivery of one (transaction, event)
// notification to the owning client across all attempts.
type TransactionCommunication struct {
	ID                 string
	TransactionID      string
	CommunicationCount int
	Event              NotificationEvent
	Status             CommunicationStatus
	Error              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type CommunicationRepository interface {
	// FindOrCreateCommunication returns the row for (transactionID, event),
	// creating it as pending with a zero count when absent.
	FindOrCreateCommunication(ctx context.Context, transactionID string, event NotificationEvent) (*TransactionCommunication, error)
	SaveCommunication(ctx context.Context, c *TransactionCommunication) error
	// ListUndelivered returns rows not yet delivered whose count is at most maxCount, newest first.
	ListUndelivered(ctx context.Context, maxCount, limit int) ([]*TransactionCommunication, error)
}

// Notification is one client-facing state change.
type Notification struct {
	Event       NotificationEvent
	Transaction *Transaction
	DriverName  string
}

// ClientNotifier hands notifications to the Client Callback Handler without
// blocking the caller.
type ClientNotifier interface {
	Dispatch(n Notification)
}
