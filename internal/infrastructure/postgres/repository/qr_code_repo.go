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

type DefaultQRCodeRepository struct {
	db *gorm.DB
}

func NewDefaultQRCodeRepository(db *gorm.DB) *DefaultQRCodeRepository {
	return &DefaultQRCodeRepository{db: db}
}

func (r *DefaultQRCodeRepository) CreateQRCode(ctx context.Context, qr *domain.QRCode) error {
	if qr.ID == "" {
		qr.ID = idgen.NewULID()
	}
	model := mappers.ToGORMQRCode(qr)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateQRCode
		}
		return fmt.Errorf("failed to create qr code: %w", err)
	}
	qr.CreatedAt = model.CreatedAt
	qr.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultQRCodeRepository) SaveQRCode(ctx context.Context, qr *domain.QRCode) error {
	model := mappers.ToGORMQRCode(qr)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save qr code %s: %w", qr.ID, err)
	}
	qr.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultQRCodeRepository) GetQRCodeByID(ctx context.Context, id string) (*domain.QRCode, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *DefaultQRCodeRepository) GetQRCodeByQRID(ctx context.Context, qrID string) (*domain.QRCode, error) {
	return r.first(ctx, "qr_id = ?", qrID)
}

func (r *DefaultQRCodeRepository) first(ctx context.Context, query string, args ...any) (*domain.QRCode, error) {
	var model models.QRCodeModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQRCodeNotFound
		}
		return nil, err
	}
	return mappers.ToDomainQRCode(&model), nil
}

func (r *DefaultQRCodeRepository) ListQRCodes(ctx context.Context, filter domain.QRCodeFilter) ([]*domain.QRCode, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QRCodeModel{})
	if filter.StoreID != "" {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var rows []models.QRCodeModel
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find qr codes: %w", err)
	}
	out := make([]*domain.QRCode, len(rows))
	for i := range rows {
		out[i] = mappers.ToDomainQRCode(&rows[i])
	}
	return out, total, nil
}
