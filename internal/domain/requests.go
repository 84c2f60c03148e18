package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MakePaymentRequest struct {
	DriverID       int
	TotalAmount    decimal.Decimal
	AmountToPay    decimal.Decimal
	PaymentType    string
	SourceID       string
	StoreID        string
	StoreType      StoreType
	CustomerID     string
	AdditionalInfo map[string]any
}

// Validate enforces amount <= total_amount before anything is persisted.
func (r MakePaymentRequest) Validate() error {
	if !r.AmountToPay.IsPositive() {
		return Unprocessable("amount_to_pay must be positive")
	}
	if r.TotalAmount.LessThan(r.AmountToPay) {
		return Unprocessable("total amount should be greater than or equal to amount to pay")
	}
	if r.SourceID == "" {
		return Unprocessable("source_id is required")
	}
	if len(r.SourceID) > 64 {
		return Unprocessable("source_id is too long")
	}
	return nil
}

type RefundRequest struct {
	PaymentTransactionID string
	// AmountToRefund zero means the full transaction amount.
	AmountToRefund decimal.Decimal
	Notes          map[string]any
	Receipt        string
}

type CreatePaymentLinkRequest struct {
	DriverID       int
	Amount         decimal.Decimal
	Description    string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	SourceID       string
	StoreID        string
	StoreType      StoreType
	NotifyEmail    bool
	AdditionalInfo map[string]any
}

type CreateQRCodeRequest struct {
	DriverID      int
	Type          QRType
	Usage         QRUsage
	FixedAmount   bool
	PaymentAmount decimal.Decimal
	Description   string
	StoreID       string
	StoreType     StoreType
	SourceID      string
	CloseBy       *time.Time
}

// PaymentResult is returned to the client for payment operations.
type PaymentResult struct {
	Entity      string
	Transaction *Transaction
	Driver      string
}
