package domain

import (
	"context"
	"encoding/json"
)

// Driver is the capability set of one payment gateway. Implementations
// persist every local state change before returning, including failures.
type Driver interface {
	Name() string

	MakePayment(ctx context.Context, tx *Transaction, req MakePaymentRequest, client *Client) (*Transaction, error)
	RefundPayment(ctx context.Context, tx *Transaction, refund *RefundTransaction, req RefundRequest, client *Client) (*RefundTransaction, error)
	RetryRefund(ctx context.Context, tx *Transaction, refund *RefundTransaction) (*RefundTransaction, error)
	GetPaymentStatus(ctx context.Context, tx *Transaction, sendCallback bool) (*Transaction, error)
	GetRefundStatus(ctx context.Context, tx *Transaction, refund *RefundTransaction) (*RefundTransaction, error)
	// ProcessCallback never fails towards the gateway.
	ProcessCallback(ctx context.Context, wh Webhook) WebhookAck

	CreatePaymentLink(ctx context.Context, req CreatePaymentLinkRequest, client *Client, clientVersion string) (*PaymentLinkResult, error)
	CancelPaymentLink(ctx context.Context, tx *Transaction) (*PaymentLinkResult, error)
	ResendPaymentLink(ctx context.Context, tx *Transaction, medium NotifyMedium) (*PaymentLinkResult, error)
	GetPaymentLinkStatus(ctx context.Context, tx *Transaction) (*PaymentLinkResult, error)

	CreateQRCode(ctx context.Context, qr *QRCode, req CreateQRCodeRequest, client *Client, clientVersion string) (*QRCode, error)
	CloseQRCode(ctx context.Context, qr *QRCode) (*QRCode, error)
	GetQRCodeStatus(ctx context.Context, qr *QRCode) (json.RawMessage, error)

	AcceptDispute(ctx context.Context, disputeID string) (*DisputeResult, error)
	ContestDispute(ctx context.Context, disputeID string, req ContestDisputeRequest) (*DisputeResult, error)
	UploadDocument(ctx context.Context, upload DocumentUpload) (*DisputeDocument, error)
	GetDocument(ctx context.Context, documentID string) (json.RawMessage, error)

	PaymentMethods(ctx context.Context) (json.RawMessage, error)
	PaymentDowntime(ctx context.Context) (json.RawMessage, error)
	// PaymentOrderID asks the gateway which order a payment id belongs to.
	PaymentOrderID(ctx context.Context, paymentID string) (string, error)
}
