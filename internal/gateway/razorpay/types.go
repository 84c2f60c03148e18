package razorpay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const driverName = "razorpay"

// notes tolerates razorpay's habit of sending [] for empty notes.
type notes map[string]any

func (n *notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '[' || bytes.Equal(trimmed, []byte("null")) {
		*n = notes{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

func (n notes) str(key string) string {
	v, ok := n[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprint(t)
	}
}

func unixTime(sec *int64) *time.Time {
	if sec == nil || *sec == 0 {
		return nil
	}
	t := time.Unix(*sec, 0).UTC()
	return &t
}

type orderRequest struct {
	Amount         int64          `json:"amount"`
	Currency       string         `json:"currency"`
	Receipt        string         `json:"receipt"`
	Notes          map[string]any `json:"notes"`
	PaymentCapture bool           `json:"payment_capture"`
}

type order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type refundRequest struct {
	PaymentID string         `json:"payment_id"`
	Amount    int64          `json:"amount"`
	Notes     map[string]any `json:"notes"`
	Receipt   string         `json:"receipt"`
}

// body is what goes on the wire; the payment id travels in the path.
func (r refundRequest) body() map[string]any {
	return map[string]any{"amount": r.Amount, "notes": r.Notes, "receipt": r.Receipt}
}

type refundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Notes     notes  `json:"notes"`
}

type paymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Captured *bool  `json:"captured"`
}

type paymentList struct {
	Items []json.RawMessage `json:"items"`
}

type customer struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact"`
}

type linkNotify struct {
	SMS   bool `json:"sms"`
	Email bool `json:"email"`
}

type linkRequest struct {
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description"`
	Customer    customer       `json:"customer"`
	Notify      linkNotify     `json:"notify"`
	Notes       map[string]any `json:"notes,omitempty"`
}

type paymentLinkEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	ShortURL string `json:"short_url"`
}

type qrRequest struct {
	Type          string         `json:"type"`
	Usage         string         `json:"usage"`
	FixedAmount   bool           `json:"fixed_amount"`
	PaymentAmount int64          `json:"payment_amount,omitempty"`
	Description   string         `json:"description,omitempty"`
	CloseBy       int64          `json:"close_by,omitempty"`
	Notes         map[string]any `json:"notes"`
}

type qrEntity struct {
	ID          string `json:"id"`
	Usage       string `json:"usage"`
	Type        string `json:"type"`
	FixedAmount bool   `json:"fixed_amount"`
	Notes       notes  `json:"notes"`
	ImageURL    string `json:"image_url"`
	CloseBy     *int64 `json:"close_by"`
	ClosedAt    *int64 `json:"closed_at"`
	CloseReason string `json:"close_reason"`
	Status      string `json:"status"`
}

type disputeEntity struct {
	ID               string `json:"id"`
	Entity           string `json:"entity"`
	PaymentID        string `json:"payment_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	AmountDeducted   int64  `json:"amount_deducted"`
	GatewayDisputeID string `json:"gateway_dispute_id"`
	ReasonCode       string `json:"reason_code"`
	RespondBy        *int64 `json:"respond_by"`
	Status           string `json:"status"`
	Phase            string `json:"phase"`
	Comments         string `json:"comments"`
	CreatedAt        *int64 `json:"created_at"`
}

type evidenceOther struct {
	Type        string   `json:"type"`
	DocumentIDs []string `json:"document_ids"`
}

type contestRequest struct {
	Amount                   int64           `json:"amount,omitempty"`
	Summary                  string          `json:"summary,omitempty"`
	ShippingProof            []string        `json:"shipping_proof,omitempty"`
	BillingProof             []string        `json:"billing_proof,omitempty"`
	CancellationProof        []string        `json:"cancellation_proof,omitempty"`
	CustomerCommunication    []string        `json:"customer_communication,omitempty"`
	ProofOfService           []string        `json:"proof_of_service,omitempty"`
	ExplanationLetter        []string        `json:"explanation_letter,omitempty"`
	RefundConfirmation       []string        `json:"refund_confirmation,omitempty"`
	AccessActivityLog        []string        `json:"access_activity_log,omitempty"`
	RefundCancellationPolicy []string        `json:"refund_cancellation_policy,omitempty"`
	TermAndConditions        []string        `json:"term_and_conditions,omitempty"`
	Others                   []evidenceOther `json:"others,omitempty"`
	Action                   string          `json:"action"`
}

type documentEntity struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Purpose   string `json:"purpose"`
	Name      string `json:"display_name"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	URL       string `json:"url"`
	CreatedAt *int64 `json:"created_at"`
}

type container struct {
	Entity json.RawMessage `json:"entity"`
}

// webhook is the envelope razorpay posts to the callback endpoint.
type webhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment     *container `json:"payment"`
		PaymentLink *container `json:"payment_link"`
		Refund      *container `json:"refund"`
		QRCode      *container `json:"qr_code"`
		Dispute     *container `json:"dispute"`
	} `json:"payload"`
}
