package mappers

import (
	"encoding/json"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"gorm.io/datatypes"
)

func ToDomainDispute(model *models.DisputeModel) *domain.Dispute {
	return &domain.Dispute{
		ID:                model.ID,
		DisputeID:         model.DisputeID,
		Entity:            model.Entity,
		PaymentID:         model.PaymentID,
		Amount:            model.Amount,
		Currency:          model.Currency,
		Comments:          model.Comments,
		GatewayDisputeID:  model.GatewayDisputeID,
		AmountDeducted:    model.AmountDeducted,
		ReasonCode:        model.ReasonCode,
		RespondBy:         model.RespondBy,
		Status:            domain.DisputeStatus(model.Status),
		Phase:             model.Phase,
		DriverCreatedAt:   model.DriverCreatedAt,
		DriverID:          model.Driver,
		DisputeEvidenceID: deref(model.DisputeEvidenceID),
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func ToGORMDispute(dispute *domain.Dispute) *models.DisputeModel {
	return &models.DisputeModel{
		ID:                dispute.ID,
		DisputeID:         dispute.DisputeID,
		Entity:            dispute.Entity,
		PaymentID:         dispute.PaymentID,
		Amount:            dispute.Amount,
		Currency:          dispute.Currency,
		Comments:          dispute.Comments,
		GatewayDisputeID:  dispute.GatewayDisputeID,
		AmountDeducted:    dispute.AmountDeducted,
		ReasonCode:        dispute.ReasonCode,
		RespondBy:         dispute.RespondBy,
		Status:            string(dispute.Status),
		Phase:             dispute.Phase,
		DriverCreatedAt:   dispute.DriverCreatedAt,
		Driver:            dispute.DriverID,
		DisputeEvidenceID: nullable(dispute.DisputeEvidenceID),
		CreatedAt:         dispute.CreatedAt,
		UpdatedAt:         dispute.UpdatedAt,
	}
}

// Proof slot names as stored in dispute_evidences.proofs.
const (
	slotShipping           = "shipping_proof"
	slotBilling            = "billing_proof"
	slotCancellation       = "cancellation_proof"
	slotCustomerComm       = "customer_communication"
	slotProofOfService     = "proof_of_service"
	slotExplanationLetter  = "explanation_letter"
	slotRefundConfirmation = "refund_confirmation"
	slotAccessActivityLog  = "access_activity_log"
	slotRefundPolicy       = "refund_cancellation_policy"
	slotTerms              = "term_and_conditions"
)

func ToDomainEvidence(model *models.DisputeEvidenceModel) *domain.DisputeEvidence {
	proofs := model.Proofs.Data()
	evidence := &domain.DisputeEvidence{
		ID:                       model.ID,
		DisputeID:                model.DisputeID,
		Amount:                   model.Amount,
		Summary:                  model.Summary,
		ShippingProof:            proofs[slotShipping],
		BillingProof:             proofs[slotBilling],
		CancellationProof:        proofs[slotCancellation],
		CustomerCommunication:    proofs[slotCustomerComm],
		ProofOfService:           proofs[slotProofOfService],
		ExplanationLetter:        proofs[slotExplanationLetter],
		RefundConfirmation:       proofs[slotRefundConfirmation],
		AccessActivityLog:        proofs[slotAccessActivityLog],
		RefundCancellationPolicy: proofs[slotRefundPolicy],
		TermAndConditions:        proofs[slotTerms],
		SubmittedAt:              model.SubmittedAt,
		CreatedAt:                model.CreatedAt,
	}
	if len(model.Others) > 0 {
		_ = json.Unmarshal(model.Others, &evidence.Others)
	}
	return evidence
}

func ToGORMEvidence(evidence *domain.DisputeEvidence) *models.DisputeEvidenceModel {
	proofs := map[string][]string{}
	put := func(slot string, ids []string) {
		if len(ids) > 0 {
			proofs[slot] = ids
		}
	}
	put(slotShipping, evidence.ShippingProof)
	put(slotBilling, evidence.BillingProof)
	put(slotCancellation, evidence.CancellationProof)
	put(slotCustomerComm, evidence.CustomerCommunication)
	put(slotProofOfService, evidence.ProofOfService)
	put(slotExplanationLetter, evidence.ExplanationLetter)
	put(slotRefundConfirmation, evidence.RefundConfirmation)
	put(slotAccessActivityLog, evidence.AccessActivityLog)
	put(slotRefundPolicy, evidence.RefundCancellationPolicy)
	put(slotTerms, evidence.TermAndConditions)

	model := &models.DisputeEvidenceModel{
		ID:          evidence.ID,
		DisputeID:   evidence.DisputeID,
		Amount:      evidence.Amount,
		Summary:     evidence.Summary,
		Proofs:      datatypes.NewJSONType(proofs),
		SubmittedAt: evidence.SubmittedAt,
		CreatedAt:   evidence.CreatedAt,
	}
	if len(evidence.Others) > 0 {
		if raw, err := json.Marshal(evidence.Others); err == nil {
			model.Others = datatypes.JSON(raw)
		}
	}
	return model
}

func ToDomainDocument(model *models.DisputeDocumentModel) *domain.DisputeDocument {
	return &domain.DisputeDocument{
		ID:                model.ID,
		DisputeEvidenceID: deref(model.DisputeEvidenceID),
		GatewayCreatedAt:  model.RzpCreatedAt,
		DisplayName:       model.DisplayName,
		Entity:            model.Entity,
		DocumentID:        model.DocumentID,
		MimeType:          model.MimeType,
		Size:              model.Size,
		URL:               model.URL,
		CreatedAt:         model.CreatedAt,
	}
}

func ToGORMDocument(doc *domain.DisputeDocument) *models.DisputeDocumentModel {
	return &models.DisputeDocumentModel{
		ID:                doc.ID,
		DisputeEvidenceID: nullable(doc.DisputeEvidenceID),
		RzpCreatedAt:      doc.GatewayCreatedAt,
		DisplayName:       doc.DisplayName,
		Entity:            doc.Entity,
		DocumentID:        doc.DocumentID,
		MimeType:          doc.MimeType,
		Size:              doc.Size,
		URL:               doc.URL,
		CreatedAt:         doc.CreatedAt,
	}
}
