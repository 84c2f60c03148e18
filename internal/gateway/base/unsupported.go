package base

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// Unsupported answers every optional driver capability with Unprocessable.
// Drivers embed it and override what their gateway offers.
type Unsupported struct {
	Driver string
}

func (u Unsupported) err() error {
	return domain.Unprocessable(fmt.Sprintf("operation not supported by %s", u.Driver))
}

func (u Unsupported) CreatePaymentLink(context.Context, domain.CreatePaymentLinkRequest, *domain.Client, string) (*domain.PaymentLinkResult, error) {
	return nil, u.err()
}

func (u Unsupported) CancelPaymentLink(context.Context, *domain.Transaction) (*domain.PaymentLinkResult, error) {
	return nil, u.err()
}

func (u Unsupported) ResendPaymentLink(context.Context, *domain.Transaction, domain.NotifyMedium) (*domain.PaymentLinkResult, error) {
	return nil, u.err()
}

func (u Unsupported) GetPaymentLinkStatus(context.Context, *domain.Transaction) (*domain.PaymentLinkResult, error) {
	return nil, u.err()
}

func (u Unsupported) CreateQRCode(context.Context, *domain.QRCode, domain.CreateQRCodeRequest, *domain.Client, string) (*domain.QRCode, error) {
	return nil, u.err()
}

func (u Unsupported) CloseQRCode(context.Context, *domain.QRCode) (*domain.QRCode, error) {
	return nil, u.err()
}

func (u Unsupported) GetQRCodeStatus(context.Context, *domain.QRCode) (json.RawMessage, error) {
	return nil, u.err()
}

func (u Unsupported) AcceptDispute(context.Context, string) (*domain.DisputeResult, error) {
	return nil, u.err()
}

func (u Unsupported) ContestDispute(context.Context, string, domain.ContestDisputeRequest) (*domain.DisputeResult, error) {
	return nil, u.err()
}

func (u Unsupported) UploadDocument(context.Context, domain.DocumentUpload) (*domain.DisputeDocument, error) {
	return nil, u.err()
}

func (u Unsupported) GetDocument(context.Context, string) (json.RawMessage, error) {
	return nil, u.err()
}

func (u Unsupported) PaymentMethods(context.Context) (json.RawMessage, error) {
	return nil, u.err()
}

func (u Unsupported) PaymentDowntime(context.Context) (json.RawMessage, error) {
	return nil, u.err()
}

func (u Unsupported) PaymentOrderID(context.Context, string) (string, error) {
	return "", u.err()
}
