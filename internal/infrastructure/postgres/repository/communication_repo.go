package repository

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/idgen"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultCommunicationRepository struct {
	db *gorm.DB
}

func NewDefaultCommunicationRepository(db *gorm.DB) *DefaultCommunicationRepository {
	return &DefaultCommunicationRepository{db: db}
}

func (r *DefaultCommunicationRepository) FindOrCreateCommunication(ctx context.Context, transactionID string, event domain.NotificationEvent) (*domain.TransactionCommunication, error) {
	model := models.TransactionCommunicationModel{
		ID:            idgen.NewULID(),
		TransactionID: transactionID,
		Event:         string(event),
		Status:        string(domain.CommunicationPending),
	}
	err := r.db.WithContext(ctx).
		Where(models.TransactionCommunicationModel{TransactionID: transactionID, Event: string(event)}).
		FirstOrCreate(&model).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load communication for %s/%s: %w", transactionID, event, err)
	}
	return mappers.ToDomainCommunication(&model), nil
}

func (r *DefaultCommunicationRepository) SaveCommunication(ctx context.Context, c *domain.TransactionCommunication) error {
	model := mappers.ToGORMCommunication(c)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save communication %s: %w", c.ID, err)
	}
	c.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultCommunicationRepository) ListUndelivered(ctx context.Context, maxCount, limit int) ([]*domain.TransactionCommunication, error) {
	var rows []models.TransactionCommunicationModel
	err := r.db.WithContext(ctx).
		Where("communication_count <= ? AND status <> ?", maxCount, string(domain.CommunicationSuccess)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.TransactionCommunication, len(rows))
	for i := range rows {
		out[i] = mappers.ToDomainCommunication(&rows[i])
	}
	return out, nil
}
