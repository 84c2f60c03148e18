package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/idgen"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultDisputeRepository struct {
	db *gorm.DB
}

func NewDefaultDisputeRepository(db *gorm.DB) *DefaultDisputeRepository {
	return &DefaultDisputeRepository{db: db}
}

func (r *DefaultDisputeRepository) UpsertDispute(ctx context.Context, dispute *domain.Dispute) error {
	if dispute.ID == "" {
		dispute.ID = idgen.NewULID()
	}
	model := mappers.ToGORMDispute(dispute)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dispute_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "amount_deducted", "status", "phase", "respond_by",
			"reason_code", "comments", "dispute_evidence_id", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert dispute %s: %w", dispute.DisputeID, err)
	}
	return nil
}

func (r *DefaultDisputeRepository) GetDisputeByDisputeID(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	var model models.DisputeModel
	if err := r.db.WithContext(ctx).Where("dispute_id = ?", disputeID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDisputeNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDispute(&model), nil
}

func (r *DefaultDisputeRepository) SaveEvidence(ctx context.Context, evidence *domain.DisputeEvidence) error {
	if evidence.ID == "" {
		evidence.ID = idgen.NewULID()
	}
	model := mappers.ToGORMEvidence(evidence)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return fmt.Errorf("failed to save evidence: %w", err)
		}
		return tx.Model(&models.DisputeModel{}).
			Where("dispute_id = ?", evidence.DisputeID).
			Update("dispute_evidence_id", evidence.ID).Error
	})
}

func (r *DefaultDisputeRepository) SaveDocument(ctx context.Context, doc *domain.DisputeDocument) error {
	if doc.ID == "" {
		doc.ID = idgen.NewULID()
	}
	model := mappers.ToGORMDocument(doc)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save document %s: %w", doc.DocumentID, err)
	}
	doc.CreatedAt = model.CreatedAt
	return nil
}

func (r *DefaultDisputeRepository) ListDisputes(ctx context.Context, filter domain.DisputeFilter) ([]*domain.Dispute, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DisputeModel{})
	if filter.PaymentID != "" {
		query = query.Where("payment_id = ?", filter.PaymentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var rows []models.DisputeModel
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find disputes: %w", err)
	}
	out := make([]*domain.Dispute, len(rows))
	for i := range rows {
		out[i] = mappers.ToDomainDispute(&rows[i])
	}
	return out, total, nil
}
