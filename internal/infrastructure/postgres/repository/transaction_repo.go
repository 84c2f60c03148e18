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

type DefaultTransactionRepository struct {
	db *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{db: db}
}

func (r *DefaultTransactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	if tx.ID == "" {
		tx.ID = idgen.NewULID()
	}
	model := mappers.ToGORMTransaction(tx)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePaymentID
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	tx.CreatedAt = model.CreatedAt
	tx.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultTransactionRepository) SaveTransaction(ctx context.Context, tx *domain.Transaction) error {
	model := mappers.ToGORMTransaction(tx)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", tx.ID, err)
	}
	tx.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DefaultTransactionRepository) ApplyCallbackUpdate(ctx context.Context, tx *domain.Transaction, force bool) (bool, error) {
	model := mappers.ToGORMTransaction(tx)
	updates := map[string]any{
		"status":            model.Status,
		"callback_response": model.CallbackResponse,
		"updated_at":        time.Now(),
	}
	if model.GatewayPaymentID != nil {
		updates["gateway_payment_id"] = *model.GatewayPaymentID
	}

	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Where("id = ?", tx.ID)
	if !force {
		query = query.Where("status <> ?", string(domain.StatusSuccess))
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to apply callback to transaction %s: %w", tx.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *DefaultTransactionRepository) CancelTransaction(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("id = ? AND status <> ?", id, string(domain.StatusSuccess)).
		Updates(map[string]any{"status": string(domain.StatusCancelled), "updated_at": time.Now()})
	if res.Error != nil {
		return false, fmt.Errorf("failed to cancel transaction %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *DefaultTransactionRepository) first(ctx context.Context, query string, args ...any) (*domain.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&model), nil
}

func (r *DefaultTransactionRepository) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *DefaultTransactionRepository) GetTransactionByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Transaction, error) {
	return r.first(ctx, "gateway_order_id = ?", gatewayOrderID)
}

func (r *DefaultTransactionRepository) GetTransactionByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*domain.Transaction, error) {
	return r.first(ctx, "gateway_payment_id = ?", gatewayPaymentID)
}

func (r *DefaultTransactionRepository) GetTransactionBySourceID(ctx context.Context, sourceID string) (*domain.Transaction, error) {
	var model models.TransactionModel
	err := r.db.WithContext(ctx).Where("source_id = ?", sourceID).Order("created_at DESC").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTransaction(&model), nil
}

func (r *DefaultTransactionRepository) FindTransactionsByKey(ctx context.Context, key domain.TransactionKey) ([]*domain.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("source_id = ? AND payment_type = ? AND store_id = ?", key.SourceID, key.PaymentType, key.StoreID)
	if key.ClientID == "" {
		query = query.Where("client_id IS NULL")
	} else {
		query = query.Where("client_id = ?", key.ClientID)
	}
	var rows []models.TransactionModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

func (r *DefaultTransactionRepository) ListUnsettledTransactions(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	var rows []models.TransactionModel
	err := r.db.WithContext(ctx).
		Where("status <> ?", string(domain.StatusSuccess)).
		Where("gateway_order_id IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

func (r *DefaultTransactionRepository) ListTransactionsByStatus(ctx context.Context, status domain.TransactionStatus, limit int) ([]*domain.Transaction, error) {
	var rows []models.TransactionModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainTransactions(rows), nil
}

func (r *DefaultTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DriverID != nil {
		query = query.Where("driver = ?", *filter.DriverID)
	}
	if filter.SourceID != "" {
		query = query.Where("source_id = ?", filter.SourceID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	var rows []models.TransactionModel
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find transactions: %w", err)
	}
	return toDomainTransactions(rows), total, nil
}

func toDomainTransactions(rows []models.TransactionModel) []*domain.Transaction {
	out := make([]*domain.Transaction, len(rows))
	for i := range rows {
		out[i] = mappers.ToDomainTransaction(&rows[i])
	}
	return out
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	return page, limit
}
