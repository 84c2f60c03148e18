package razorpay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

func (d *Driver) dispute(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	dispute, err := d.Disputes.GetDisputeByDisputeID(ctx, disputeID)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return dispute, nil
}

func (d *Driver) AcceptDispute(ctx context.Context, disputeID string) (*domain.DisputeResult, error) {
	dispute, err := d.dispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	var entity disputeEntity
	raw, err := d.api.post(ctx, "accept_dispute", "/v1/disputes/"+url.PathEscape(disputeID)+"/accept", nil, &entity)
	if err != nil {
		return nil, forbiddenf("Error while accept dispute", err)
	}

	dispute.Status = domain.DisputeStatus(entity.Status)
	if err := d.Disputes.UpsertDispute(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to save dispute: %w", err)
	}
	return &domain.DisputeResult{Dispute: dispute, GatewayResponse: raw}, nil
}

// ContestDispute saves a draft or submits evidence for a dispute and keeps
// a local copy of what was sent.
func (d *Driver) ContestDispute(ctx context.Context, disputeID string, req domain.ContestDisputeRequest) (*domain.DisputeResult, error) {
	dispute, err := d.dispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	action := req.Action
	if action == "" {
		action = domain.ContestDraft
	}
	body := contestRequest{
		Amount:                   req.Amount,
		Summary:                  req.Summary,
		ShippingProof:            req.ShippingProof,
		BillingProof:             req.BillingProof,
		CancellationProof:        req.CancellationProof,
		CustomerCommunication:    req.CustomerCommunication,
		ProofOfService:           req.ProofOfService,
		ExplanationLetter:        req.ExplanationLetter,
		RefundConfirmation:       req.RefundConfirmation,
		AccessActivityLog:        req.AccessActivityLog,
		RefundCancellationPolicy: req.RefundCancellationPolicy,
		TermAndConditions:        req.TermAndConditions,
		Action:                   string(action),
	}
	for _, o := range req.Others {
		body.Others = append(body.Others, evidenceOther{Type: o.Type, DocumentIDs: o.DocumentIDs})
	}

	var entity disputeEntity
	raw, err := d.api.patch(ctx, "contest_dispute", "/v1/disputes/"+url.PathEscape(disputeID)+"/contest", body, &entity)
	if err != nil {
		return nil, forbiddenf("Error while contest dispute", err)
	}

	evidence := &domain.DisputeEvidence{
		DisputeID:                disputeID,
		Amount:                   req.Amount,
		Summary:                  req.Summary,
		ShippingProof:            req.ShippingProof,
		BillingProof:             req.BillingProof,
		CancellationProof:        req.CancellationProof,
		CustomerCommunication:    req.CustomerCommunication,
		ProofOfService:           req.ProofOfService,
		ExplanationLetter:        req.ExplanationLetter,
		RefundConfirmation:       req.RefundConfirmation,
		AccessActivityLog:        req.AccessActivityLog,
		RefundCancellationPolicy: req.RefundCancellationPolicy,
		TermAndConditions:        req.TermAndConditions,
		Others:                   req.Others,
	}
	if action == domain.ContestSubmit {
		now := time.Now().UTC()
		evidence.SubmittedAt = &now
	}
	if err := d.Disputes.SaveEvidence(ctx, evidence); err != nil {
		return nil, fmt.Errorf("failed to save dispute evidence: %w", err)
	}

	dispute.DisputeEvidenceID = evidence.ID
	if entity.Status != "" {
		dispute.Status = domain.DisputeStatus(entity.Status)
	}
	if err := d.Disputes.UpsertDispute(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to save dispute: %w", err)
	}
	return &domain.DisputeResult{Dispute: dispute, Evidence: evidence, GatewayResponse: raw}, nil
}

func (d *Driver) UploadDocument(ctx context.Context, upload domain.DocumentUpload) (*domain.DisputeDocument, error) {
	var entity documentEntity
	_, err := d.api.upload(ctx, "upload_document", "/v1/documents",
		map[string]string{"purpose": "dispute_evidence"}, "file", upload.FileName, upload.Content, &entity)
	if err != nil {
		return nil, forbiddenf("Error while upload dispute document", err)
	}

	doc := &domain.DisputeDocument{
		GatewayCreatedAt: unixTime(entity.CreatedAt),
		DisplayName:      entity.Name,
		Entity:           entity.Entity,
		DocumentID:       entity.ID,
		MimeType:         entity.MimeType,
		Size:             entity.Size,
		URL:              entity.URL,
	}
	if doc.DisplayName == "" {
		doc.DisplayName = upload.FileName
	}
	if doc.MimeType == "" {
		doc.MimeType = upload.MimeType
	}
	if err := d.Disputes.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save dispute document: %w", err)
	}
	return doc, nil
}

func (d *Driver) GetDocument(ctx context.Context, documentID string) (json.RawMessage, error) {
	raw, err := d.api.get(ctx, "get_document", "/v1/documents/"+url.PathEscape(documentID), nil)
	if err != nil {
		return nil, forbiddenf("Error while get dispute document", err)
	}
	return raw, nil
}
