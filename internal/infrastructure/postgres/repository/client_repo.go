package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultClientRepository struct {
	db *gorm.DB
}

func NewDefaultClientRepository(db *gorm.DB) *DefaultClientRepository {
	return &DefaultClientRepository{db: db}
}

func (r *DefaultClientRepository) CreateClient(ctx context.Context, client *domain.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	model := mappers.ToGORMClient(client)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	client.CreatedAt = model.CreatedAt
	return nil
}

func (r *DefaultClientRepository) CreateClientGateway(ctx context.Context, gw *domain.ClientGateway) error {
	if gw.ID == "" {
		gw.ID = uuid.NewString()
	}
	model := mappers.ToGORMClientGateway(gw)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create client gateway: %w", err)
	}
	gw.CreatedAt = model.CreatedAt
	return nil
}

func (r *DefaultClientRepository) GetClientByID(ctx context.Context, id string) (*domain.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return mappers.ToDomainClient(&model), nil
}

func (r *DefaultClientRepository) GetActiveClientByAPIKeyHash(ctx context.Context, hash string) (*domain.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).Where("api_key = ? AND active = ?", hash, true).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return mappers.ToDomainClient(&model), nil
}

func (r *DefaultClientRepository) GetActiveClientGateway(ctx context.Context, clientID string, driverID int) (*domain.ClientGateway, error) {
	return r.firstGateway(ctx, "client_id = ? AND driver_id = ? AND active = ?", clientID, driverID, true)
}

func (r *DefaultClientRepository) GetDefaultClientGateway(ctx context.Context, clientID string) (*domain.ClientGateway, error) {
	return r.firstGateway(ctx, "client_id = ? AND \"default\" = ? AND active = ?", clientID, true, true)
}

func (r *DefaultClientRepository) firstGateway(ctx context.Context, query string, args ...any) (*domain.ClientGateway, error) {
	var model models.ClientGatewayModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClientGatewayNotFound
		}
		return nil, err
	}
	return mappers.ToDomainClientGateway(&model), nil
}
