package repository

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCallbackRepository struct {
	db *gorm.DB
}

func NewDefaultCallbackRepository(db *gorm.DB) *DefaultCallbackRepository {
	return &DefaultCallbackRepository{db: db}
}

func (r *DefaultCallbackRepository) AppendCallback(ctx context.Context, cb *domain.TransactionCallback) error {
	model := mappers.ToGORMCallback(cb)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to append callback: %w", err)
	}
	cb.ID = model.ID
	cb.CreatedAt = model.CreatedAt
	return nil
}

func (r *DefaultCallbackRepository) ListCallbacksByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionCallback, error) {
	var rows []models.TransactionCallbackModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.TransactionCallback, len(rows))
	for i := range rows {
		out[i] = mappers.ToDomainCallback(&rows[i])
	}
	return out, nil
}
