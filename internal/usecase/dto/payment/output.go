package paymentdto

import (
	"encoding/json"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// Amounts are rendered as fixed two-decimal strings.

type TransactionView struct {
	ID               string          `json:"id"`
	SourceID         string          `json:"source_id"`
	TotalAmount      string          `json:"total_amount"`
	Amount           string          `json:"amount"`
	PaymentType      string          `json:"payment_type"`
	StoreType        string          `json:"store_type,omitempty"`
	StoreID          string          `json:"store_id"`
	Driver           int             `json:"driver"`
	GatewayOrderID   string          `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	Status           string          `json:"status"`
	APIRequest       json.RawMessage `json:"api_request,omitempty"`
	APIResponse      json.RawMessage `json:"api_response,omitempty"`
	CallbackResponse json.RawMessage `json:"callback_response,omitempty"`
	APIStatus        int             `json:"api_status,omitempty"`
	ClientID         string          `json:"client_id,omitempty"`
	AdditionalInfo   map[string]any  `json:"additional_info,omitempty"`
	APIVersion       string          `json:"api_version"`
	ClientVersion    string          `json:"client_version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func FromTransaction(tx *domain.Transaction) *TransactionView {
	if tx == nil {
		return nil
	}
	return &TransactionView{
		ID:               tx.ID,
		SourceID:         tx.SourceID,
		TotalAmount:      tx.TotalAmount.StringFixed(2),
		Amount:           tx.Amount.StringFixed(2),
		PaymentType:      tx.PaymentType,
		StoreType:        string(tx.StoreType),
		StoreID:          tx.StoreID,
		Driver:           tx.DriverID,
		GatewayOrderID:   tx.GatewayOrderID,
		GatewayPaymentID: tx.GatewayPaymentID,
		Status:           string(tx.Status),
		APIRequest:       tx.APIRequest,
		APIResponse:      tx.APIResponse,
		CallbackResponse: tx.CallbackResponse,
		APIStatus:        tx.APIStatus,
		ClientID:         tx.ClientID,
		AdditionalInfo:   tx.AdditionalInfo,
		APIVersion:       tx.APIVersion,
		ClientVersion:    tx.ClientVersion,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

type RefundView struct {
	ID               string          `json:"id"`
	TransactionID    string          `json:"transaction_id"`
	RefundID         string          `json:"refund_id,omitempty"`
	Status           string          `json:"status"`
	Amount           string          `json:"amount"`
	APIRequest       json.RawMessage `json:"api_request,omitempty"`
	APIResponse      json.RawMessage `json:"api_response,omitempty"`
	CallbackResponse json.RawMessage `json:"callback_response,omitempty"`
	APIStatus        int             `json:"api_status,omitempty"`
	AdditionalInfo   map[string]any  `json:"additional_info,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func FromRefund(refund *domain.RefundTransaction) *RefundView {
	if refund == nil {
		return nil
	}
	return &RefundView{
		ID:               refund.ID,
		TransactionID:    refund.TransactionID,
		RefundID:         refund.RefundID,
		Status:           string(refund.Status),
		Amount:           refund.Amount.StringFixed(2),
		APIRequest:       refund.APIRequest,
		APIResponse:      refund.APIResponse,
		CallbackResponse: refund.CallbackResponse,
		APIStatus:        refund.APIStatus,
		AdditionalInfo:   refund.AdditionalInfo,
		CreatedAt:        refund.CreatedAt,
		UpdatedAt:        refund.UpdatedAt,
	}
}

func FromRefunds(refunds []*domain.RefundTransaction) []*RefundView {
	out := make([]*RefundView, len(refunds))
	for i, r := range refunds {
		out[i] = FromRefund(r)
	}
	return out
}

type QRCodeView struct {
	ID            string          `json:"id"`
	QRID          string          `json:"qr_id,omitempty"`
	Usage         string          `json:"usage"`
	Type          string          `json:"type"`
	PaymentAmount string          `json:"payment_amount"`
	IsFixedAmount bool            `json:"is_fixed_amount"`
	APIResponse   json.RawMessage `json:"api_response,omitempty"`
	Notes         map[string]any  `json:"notes,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	CloseBy       *time.Time      `json:"close_by,omitempty"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
	CloseReason   string          `json:"close_reason,omitempty"`
	Status        string          `json:"status"`
	Driver        int             `json:"driver"`
	StoreID       string          `json:"store_id"`
	SourceID      string          `json:"source_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func FromQRCode(qr *domain.QRCode) *QRCodeView {
	if qr == nil {
		return nil
	}
	return &QRCodeView{
		ID:            qr.ID,
		QRID:          qr.QRID,
		Usage:         string(qr.Usage),
		Type:          string(qr.Type),
		PaymentAmount: qr.PaymentAmount.StringFixed(2),
		IsFixedAmount: qr.IsFixedAmount,
		APIResponse:   qr.APIResponse,
		Notes:         qr.Notes,
		ImageURL:      qr.ImageURL,
		CloseBy:       qr.CloseBy,
		ClosedAt:      qr.ClosedAt,
		CloseReason:   qr.CloseReason,
		Status:        string(qr.Status),
		Driver:        qr.DriverID,
		StoreID:       qr.StoreID,
		SourceID:      qr.SourceID,
		CreatedAt:     qr.CreatedAt,
		UpdatedAt:     qr.UpdatedAt,
	}
}

type PaymentLinkView struct {
	ID               string    `json:"id"`
	TransactionID    string    `json:"transaction_id"`
	PlinkID          string    `json:"plink_id"`
	Status           string    `json:"status"`
	UpdateCount      int       `json:"update_count"`
	NotifySMSCount   int       `json:"notify_sms_count"`
	NotifyEmailCount int       `json:"notify_email_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func FromPaymentLink(link *domain.PaymentLink) *PaymentLinkView {
	if link == nil {
		return nil
	}
	return &PaymentLinkView{
		ID:               link.ID,
		TransactionID:    link.TransactionID,
		PlinkID:          link.PlinkID,
		Status:           link.Status,
		UpdateCount:      link.UpdateCount,
		NotifySMSCount:   link.NotifySMSCount,
		NotifyEmailCount: link.NotifyEmailCount,
		CreatedAt:        link.CreatedAt,
		UpdatedAt:        link.UpdatedAt,
	}
}

// PaymentLinkOutput is the body returned by every payment link operation.
type PaymentLinkOutput struct {
	Transaction     *TransactionView `json:"transaction"`
	PaymentLink     *PaymentLinkView `json:"payment_link"`
	GatewayResponse json.RawMessage  `json:"gateway_response,omitempty"`
}

func FromPaymentLinkResult(res *domain.PaymentLinkResult) *PaymentLinkOutput {
	return &PaymentLinkOutput{
		Transaction:     FromTransaction(res.Transaction),
		PaymentLink:     FromPaymentLink(res.PaymentLink),
		GatewayResponse: res.GatewayResponse,
	}
}

type DisputeView struct {
	ID                string     `json:"id"`
	DisputeID         string     `json:"dispute_id"`
	Entity            string     `json:"entity"`
	PaymentID         string     `json:"payment_id"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	Comments          string     `json:"comments,omitempty"`
	GatewayDisputeID  string     `json:"gateway_dispute_id,omitempty"`
	AmountDeducted    int64      `json:"amount_deducted"`
	ReasonCode        string     `json:"reason_code"`
	RespondBy         *time.Time `json:"respond_by,omitempty"`
	Status            string     `json:"status"`
	Phase             string     `json:"phase"`
	Driver            int        `json:"driver"`
	DisputeEvidenceID string     `json:"dispute_evidence_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func FromDispute(d *domain.Dispute) *DisputeView {
	if d == nil {
		return nil
	}
	return &DisputeView{
		ID:                d.ID,
		DisputeID:         d.DisputeID,
		Entity:            d.Entity,
		PaymentID:         d.PaymentID,
		Amount:            d.Amount,
		Currency:          d.Currency,
		Comments:          d.Comments,
		GatewayDisputeID:  d.GatewayDisputeID,
		AmountDeducted:    d.AmountDeducted,
		ReasonCode:        d.ReasonCode,
		RespondBy:         d.RespondBy,
		Status:            string(d.Status),
		Phase:             d.Phase,
		Driver:            d.DriverID,
		DisputeEvidenceID: d.DisputeEvidenceID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type EvidenceView struct {
	ID                       string                 `json:"id"`
	DisputeID                string                 `json:"dispute_id"`
	Amount                   int64                  `json:"amount"`
	Summary                  string                 `json:"summary"`
	ShippingProof            []string               `json:"shipping_proof,omitempty"`
	BillingProof             []string               `json:"billing_proof,omitempty"`
	CancellationProof        []string               `json:"cancellation_proof,omitempty"`
	CustomerCommunication    []string               `json:"customer_communication,omitempty"`
	ProofOfService           []string               `json:"proof_of_service,omitempty"`
	ExplanationLetter        []string               `json:"explanation_letter,omitempty"`
	RefundConfirmation       []string               `json:"refund_confirmation,omitempty"`
	AccessActivityLog        []string               `json:"access_activity_log,omitempty"`
	RefundCancellationPolicy []string               `json:"refund_cancellation_policy,omitempty"`
	TermAndConditions        []string               `json:"term_and_conditions,omitempty"`
	Others                   []domain.EvidenceOther `json:"others,omitempty"`
	SubmittedAt              *time.Time             `json:"submitted_at,omitempty"`
}

func FromEvidence(e *domain.DisputeEvidence) *EvidenceView {
	if e == nil {
		return nil
	}
	return &EvidenceView{
		ID:                       e.ID,
		DisputeID:                e.DisputeID,
		Amount:                   e.Amount,
		Summary:                  e.Summary,
		ShippingProof:            e.ShippingProof,
		BillingProof:             e.BillingProof,
		CancellationProof:        e.CancellationProof,
		CustomerCommunication:    e.CustomerCommunication,
		ProofOfService:           e.ProofOfService,
		ExplanationLetter:        e.ExplanationLetter,
		RefundConfirmation:       e.RefundConfirmation,
		AccessActivityLog:        e.AccessActivityLog,
		RefundCancellationPolicy: e.RefundCancellationPolicy,
		TermAndConditions:        e.TermAndConditions,
		Others:                   e.Others,
		SubmittedAt:              e.SubmittedAt,
	}
}

type DisputeOutput struct {
	Dispute         *DisputeView    `json:"dispute"`
	Evidence        *EvidenceView   `json:"evidence,omitempty"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"`
}

func FromDisputeResult(res *domain.DisputeResult) *DisputeOutput {
	return &DisputeOutput{
		Dispute:         FromDispute(res.Dispute),
		Evidence:        FromEvidence(res.Evidence),
		GatewayResponse: res.GatewayResponse,
	}
}

type DocumentView struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"document_id"`
	DisplayName string     `json:"display_name"`
	Entity      string     `json:"entity"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	URL         string     `json:"url,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

func FromDocument(doc *domain.DisputeDocument) *DocumentView {
	if doc == nil {
		return nil
	}
	return &DocumentView{
		ID:          doc.ID,
		DocumentID:  doc.DocumentID,
		DisplayName: doc.DisplayName,
		Entity:      doc.Entity,
		MimeType:    doc.MimeType,
		Size:        doc.Size,
		URL:         doc.URL,
		CreatedAt:   doc.GatewayCreatedAt,
	}
}

type CallbackView struct {
	ID        uint            `json:"id"`
	Linkage   string          `json:"linkage"`
	Event     string          `json:"event"`
	Type      string          `json:"type"`
	Driver    int             `json:"driver"`
	Callback  json.RawMessage `json:"callback,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func FromCallback(cb *domain.TransactionCallback) *CallbackView {
	return &CallbackView{
		ID:        cb.ID,
		Linkage:   string(cb.Linkage),
		Event:     cb.Event,
		Type:      string(cb.Type),
		Driver:    cb.DriverID,
		Callback:  cb.Callback,
		CreatedAt: cb.CreatedAt,
	}
}

type Pagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
}

func NewPagination(page, limit int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// StatusOutput answers the payment status query. Refunds is set only when
// the refund entity was requested.
type StatusOutput struct {
	Entity      []string         `json:"entity"`
	Transaction *TransactionView `json:"transaction,omitempty"`
	Refunds     []*RefundView    `json:"refunds,omitempty"`
	Driver      string           `json:"driver"`
}

// ClientCallbackPayload is posted to the client's callback url.
type ClientCallbackPayload struct {
	Event       string           `json:"event"`
	Transaction *TransactionView `json:"transaction"`
	Refunds     []*RefundView    `json:"refunds,omitempty"`
	Entity      []string         `json:"entity"`
	Driver      string           `json:"driver"`
}
