package mappers

import (
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
)

func ToDomainClient(model *models.ClientModel) *domain.Client {
	return &domain.Client{
		ID:          model.ID,
		Name:        model.Name,
		CallbackURL: model.CallbackURL,
		APIKeyHash:  model.APIKey,
		Active:      model.Active,
		CreatedAt:   model.CreatedAt,
	}
}

func ToGORMClient(client *domain.Client) *models.ClientModel {
	return &models.ClientModel{
		ID:          client.ID,
		Name:        client.Name,
		CallbackURL: client.CallbackURL,
		APIKey:      client.APIKeyHash,
		Active:      client.Active,
		CreatedAt:   client.CreatedAt,
	}
}

func ToDomainClientGateway(model *models.ClientGatewayModel) *domain.ClientGateway {
	return &domain.ClientGateway{
		ID:        model.ID,
		ClientID:  model.ClientID,
		DriverID:  model.DriverID,
		Default:   model.Default,
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
	}
}

func ToGORMClientGateway(gw *domain.ClientGateway) *models.ClientGatewayModel {
	return &models.ClientGatewayModel{
		ID:        gw.ID,
		ClientID:  gw.ClientID,
		DriverID:  gw.DriverID,
		Default:   gw.Default,
		Active:    gw.Active,
		CreatedAt: gw.CreatedAt,
	}
}
