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
)

type DefaultPaymentLinkRepository struct {
	db *gorm.DB
}

func NewDefaultPaymentLinkRepository(db *gorm.DB) *DefaultPaymentLinkRepository {
	return &DefaultPaymentLinkRepository{db: db}
}

func (r *DefaultPaymentLinkRepository) CreatePaymentLink(ctx context.Context, link *domain.PaymentLink) error {
	if link.ID == "" {
		link.ID = idgen.NewULID()
	}
	model := mappers.ToGORMPaymentLink(link)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment link: %w", err)
	}
	link.CreatedAt = model.CreatedAt
	link.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultPaymentLinkRepository) SavePaymentLink(ctx context.Context, link *domain.PaymentLink) error {
	model := mappers.ToGORMPaymentLink(link)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save payment link %s: %w", link.ID, err)
	}
	link.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultPaymentLinkRepository) GetPaymentLinkByTransactionID(ctx context.Context, transactionID string) (*domain.PaymentLink, error) {
	var model models.PaymentLinkModel
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPaymentLinkNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPaymentLink(&model), nil
}
