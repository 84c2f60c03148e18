package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/idgen"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultRefundRepository struct {
	db *gorm.DB
}

func NewDefaultRefundRepository(db *gorm.DB) *DefaultRefundRepository {
	return &DefaultRefundRepository{db: db}
}

func (r *DefaultRefundRepository) CreateRefund(ctx context.Context, refund *domain.RefundTransaction) error {
	if refund.ID == "" {
		refund.ID = idgen.NewULID()
	}
	model := mappers.ToGORMRefund(refund)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	refund.CreatedAt = model.CreatedAt
	refund.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultRefundRepository) SaveRefund(ctx context.Context, refund *domain.RefundTransaction) error {
	model := mappers.ToGORMRefund(refund)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save refund %s: %w", refund.ID, err)
	}
	refund.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultRefundRepository) ApplyRefundCallback(ctx context.Context, refund *domain.RefundTransaction, force bool) (bool, error) {
	model := mappers.ToGORMRefund(refund)
	updates := map[string]any{
		"status":            model.Status,
		"amount":            model.Amount,
		"callback_response": model.CallbackResponse,
		"updated_at":        time.Now(),
	}
	if model.RefundID != nil {
		updates["refund_id"] = *model.RefundID
	}
	if model.APIResponse != nil {
		updates["api_response"] = model.APIResponse
	}

	query := r.db.WithContext(ctx).Model(&models.RefundTransactionModel{}).Where("id = ?", refund.ID)
	if !force {
		query = query.Where("status <> ?", string(domain.RefundSuccess))
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to apply callback to refund %s: %w", refund.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *DefaultRefundRepository) GetRefundByID(ctx context.Context, id string) (*domain.RefundTransaction, error) {
	var model models.RefundTransactionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRefundNotFound
		}
		return nil, err
	}
	return mappers.ToDomainRefund(&model), nil
}

func (r *DefaultRefundRepository) GetRefundByGatewayRefundID(ctx context.Context, transactionID, refundID string) (*domain.RefundTransaction, error) {
	var model models.RefundTransactionModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ? AND refund_id = ?", transactionID, refundID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRefundNotFound
		}
		return nil, err
	}
	return mappers.ToDomainRefund(&model), nil
}

func (r *DefaultRefundRepository) ListAssignedRefunds(ctx context.Context, transactionID string) ([]*domain.RefundTransaction, error) {
	var rows []models.RefundTransactionModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ? AND refund_id IS NOT NULL", transactionID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRefunds(rows), nil
}

func (r *DefaultRefundRepository) ListPendingRefunds(ctx context.Context, limit int) ([]*domain.RefundTransaction, error) {
	var rows []models.RefundTransactionModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.RefundPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainRefunds(rows), nil
}

func (r *DefaultRefundRepository) ListRefunds(ctx context.Context, filter domain.RefundFilter) ([]*domain.RefundTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RefundTransactionModel{})
	if filter.TransactionID != "" {
		query = query.Where("transaction_id = ?", filter.TransactionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var rows []models.RefundTransactionModel
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find refunds: %w", err)
	}
	return toDomainRefunds(rows), total, nil
}

func toDomainRefunds(rows []models.RefundTransactionModel) []*domain.RefundTransaction {
	out := make([]*domain.RefundTransaction, len(rows))
	for i := range rows {
		out[i] = mappers.ToDomainRefund(&rows[i])
	}
	return out
}
