package domain

import (
	"context"
	"encoding/json"
	"time"
)

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeWon         DisputeStatus = "won"
	DisputeLost        DisputeStatus = "lost"
	DisputeClosed      DisputeStatus = "closed"
)

// Dispute is a chargeback raised by the gateway against a captured payment.
// Amounts are kept in minor units as reported by the gateway.
type Dispute struct {
	ID                string
	DisputeID         string
	Entity            string
	PaymentID         string
	Amount            int64
	Currency          string
	Comments          string
	GatewayDisputeID  string
	AmountDeducted    int64
	ReasonCode        string
	RespondBy         *time.Time
	Status            DisputeStatus
	Phase             string
	DriverCreatedAt   *time.Time
	DriverID          int
	DisputeEvidenceID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EvidenceOther is the open-ended proof bucket keyed by a caller-supplied type.
type EvidenceOther struct {
	Type        string   `json:"type"`
	DocumentIDs []string `json:"document_ids"`
}

// DisputeEvidence holds the documents submitted to contest a dispute, sorted
// into the gateway's fixed proof slots.
type DisputeEvidence struct {
	ID                       string
	DisputeID                string
	Amount                   int64
	Summary                  string
	ShippingProof            []string
	BillingProof             []string
	CancellationProof        []string
	CustomerCommunication    []string
	ProofOfService           []string
	ExplanationLetter        []string
	RefundConfirmation       []string
	AccessActivityLog        []string
	RefundCancellationPolicy []string
	TermAndConditions        []string
	Others                   []EvidenceOther
	SubmittedAt              *time.Time
	CreatedAt                time.Time
}

type DisputeDocument struct {
	ID                string
	DisputeEvidenceID string
	GatewayCreatedAt  *time.Time
	DisplayName       string
	Entity            string
	DocumentID        string
	MimeType          string
	Size              int64
	URL               string
	CreatedAt         time.Time
}

type DisputeFilter struct {
	PaymentID string
	Status    *DisputeStatus
	Page      int
	Limit     int
}

type DisputeRepository interface {
	// UpsertDispute inserts or updates the dispute keyed by DisputeID.
	UpsertDispute(ctx context.Context, dispute *Dispute) error
	GetDisputeByDisputeID(ctx context.Context, disputeID string) (*Dispute, error)
	SaveEvidence(ctx context.Context, evidence *DisputeEvidence) error
	SaveDocument(ctx context.Context, doc *DisputeDocument) error
	ListDisputes(ctx context.Context, filter DisputeFilter) ([]*Dispute, int64, error)
}

// ContestAction is either a saved draft or a final submission.
type ContestAction string

const (
	ContestDraft  ContestAction = "draft"
	ContestSubmit ContestAction = "submit"
)

type ContestDisputeRequest struct {
	Amount                   int64
	Summary                  string
	ShippingProof            []string
	BillingProof             []string
	CancellationProof        []string
	CustomerCommunication    []string
	ProofOfService           []string
	ExplanationLetter        []string
	RefundConfirmation       []string
	AccessActivityLog        []string
	RefundCancellationPolicy []string
	TermAndConditions        []string
	Others                   []EvidenceOther
	Action                   ContestAction
}

type DocumentUpload struct {
	FileName string
	MimeType string
	Content  []byte
}

// DisputeResult pairs the gateway answer with the locally persisted state.
type DisputeResult struct {
	Dispute         *Dispute
	Evidence        *DisputeEvidence
	GatewayResponse json.RawMessage
}
