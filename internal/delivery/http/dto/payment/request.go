package payment

import (
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/shopspring/decimal"
)

type MakePaymentRequest struct {
	DriverID       int             `json:"driver_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountToPay    decimal.Decimal `json:"amount_to_pay"`
	PaymentType    string          `json:"payment_type" binding:"required"`
	SourceID       string          `json:"source_id" binding:"required"`
	StoreID        string          `json:"store_id"`
	StoreType      string          `json:"store_type"`
	CustomerID     string          `json:"customer_id"`
	AdditionalInfo map[string]any  `json:"additional_info"`
}

func (r MakePaymentRequest) ToDomain() domain.MakePaymentRequest {
	return domain.MakePaymentRequest{
		DriverID:       r.DriverID,
		TotalAmount:    r.TotalAmount,
		AmountToPay:    r.AmountToPay,
		PaymentType:    r.PaymentType,
		SourceID:       r.SourceID,
		StoreID:        r.StoreID,
		StoreType:      domain.StoreType(r.StoreType),
		CustomerID:     r.CustomerID,
		AdditionalInfo: r.AdditionalInfo,
	}
}

type RefundPaymentRequest struct {
	PaymentTransactionID string          `json:"payment_transaction_id" binding:"required"`
	AmountToRefund       decimal.Decimal `json:"amount_to_refund"`
	Notes                map[string]any  `json:"notes"`
	Receipt              string          `json:"receipt"`
}

func (r RefundPaymentRequest) ToDomain() domain.RefundRequest {
	return domain.RefundRequest{
		PaymentTransactionID: r.PaymentTransactionID,
		AmountToRefund:       r.AmountToRefund,
		Notes:                r.Notes,
		Receipt:              r.Receipt,
	}
}

type CreatePaymentLinkRequest struct {
	DriverID       int             `json:"driver_id"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	CustomerName   string          `json:"customer_name"`
	CustomerEmail  string          `json:"customer_email"`
	CustomerPhone  string          `json:"customer_phone"`
	SourceID       string          `json:"source_id" binding:"required"`
	StoreID        string          `json:"store_id"`
	StoreType      string          `json:"store_type"`
	NotifyEmail    bool            `json:"notify_email"`
	AdditionalInfo map[string]any  `json:"additional_info"`
}

func (r CreatePaymentLinkRequest) ToDomain() domain.CreatePaymentLinkRequest {
	return domain.CreatePaymentLinkRequest{
		DriverID:       r.DriverID,
		Amount:         r.Amount,
		Description:    r.Description,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		CustomerPhone:  r.CustomerPhone,
		SourceID:       r.SourceID,
		StoreID:        r.StoreID,
		StoreType:      domain.StoreType(r.StoreType),
		NotifyEmail:    r.NotifyEmail,
		AdditionalInfo: r.AdditionalInfo,
	}
}

type ResendPaymentLinkRequest struct {
	Medium string `json:"medium" binding:"required"`
}

type CreateQRCodeRequest struct {
	DriverID      int             `json:"driver_id"`
	Type          string          `json:"type"`
	Usage         string          `json:"usage"`
	FixedAmount   bool            `json:"fixed_amount"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Description   string          `json:"description"`
	StoreID       string          `json:"store_id"`
	StoreType     string          `json:"store_type"`
	SourceID      string          `json:"source_id"`
	CloseBy       *time.Time      `json:"close_by"`
}

func (r CreateQRCodeRequest) ToDomain() domain.CreateQRCodeRequest {
	return domain.CreateQRCodeRequest{
		DriverID:      r.DriverID,
		Type:          domain.QRType(r.Type),
		Usage:         domain.QRUsage(r.Usage),
		FixedAmount:   r.FixedAmount,
		PaymentAmount: r.PaymentAmount,
		Description:   r.Description,
		StoreID:       r.StoreID,
		StoreType:     domain.StoreType(r.StoreType),
		SourceID:      r.SourceID,
		CloseBy:       r.CloseBy,
	}
}

// ContestDisputeRequest carries evidence document ids grouped by proof type.
type ContestDisputeRequest struct {
	Amount                   int64                  `json:"amount"`
	Summary                  string                 `json:"summary"`
	ShippingProof            []string               `json:"shipping_proof"`
	BillingProof             []string               `json:"billing_proof"`
	CancellationProof        []string               `json:"cancellation_proof"`
	CustomerCommunication    []string               `json:"customer_communication"`
	ProofOfService           []string               `json:"proof_of_service"`
	ExplanationLetter        []string               `json:"explanation_letter"`
	RefundConfirmation       []string               `json:"refund_confirmation"`
	AccessActivityLog        []string               `json:"access_activity_log"`
	RefundCancellationPolicy []string               `json:"refund_cancellation_policy"`
	TermAndConditions        []string               `json:"term_and_conditions"`
	Others                   []domain.EvidenceOther `json:"others"`
	Action                   string                 `json:"action"`
}

func (r ContestDisputeRequest) ToDomain() domain.ContestDisputeRequest {
	return domain.ContestDisputeRequest{
		Amount:                   r.Amount,
		Summary:                  r.Summary,
		ShippingProof:            r.ShippingProof,
		BillingProof:             r.BillingProof,
		CancellationProof:        r.CancellationProof,
		CustomerCommunication:    r.CustomerCommunication,
		ProofOfService:           r.ProofOfService,
		ExplanationLetter:        r.ExplanationLetter,
		RefundConfirmation:       r.RefundConfirmation,
		AccessActivityLog:        r.AccessActivityLog,
		RefundCancellationPolicy: r.RefundCancellationPolicy,
		TermAndConditions:        r.TermAndConditions,
		Others:                   r.Others,
		Action:                   domain.ContestAction(r.Action),
	}
}

// Envelope wraps every /v1 answer.
type Envelope struct {
	ClientVersion string `json:"client_version"`
	Response      any    `json:"response"`
}

type ListResponse struct {
	Items      any `json:"items"`
	Pagination any `json:"pagination"`
}
