package mappers

import (
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
)

func ToDomainCallback(model *models.TransactionCallbackModel) *domain.TransactionCallback {
	return &domain.TransactionCallback{
		ID:            model.ID,
		TransactionID: deref(model.TransactionID),
		Linkage:       domain.CallbackLinkage(model.Linkage),
		Callback:      fromJSON(model.Callback),
		Event:         model.Event,
		Type:          domain.CallbackType(model.Type),
		DriverID:      model.Driver,
		CreatedAt:     model.CreatedAt,
	}
}

func ToGORMCallback(cb *domain.TransactionCallback) *models.TransactionCallbackModel {
	return &models.TransactionCallbackModel{
		ID:            cb.ID,
		TransactionID: nullable(cb.TransactionID),
		Linkage:       string(cb.Linkage),
		Callback:      toJSON(cb.Callback),
		Event:         cb.Event,
		Type:          string(cb.Type),
		Driver:        cb.DriverID,
		CreatedAt:     cb.CreatedAt,
	}
}

func ToDomainCommunication(model *models.TransactionCommunicationModel) *domain.TransactionCommunication {
	return &domain.TransactionCommunication{
		ID:                 model.ID,
		TransactionID:      model.TransactionID,
		CommunicationCount: model.CommunicationCount,
		Event:              domain.NotificationEvent(model.Event),
		Status:             domain.CommunicationStatus(model.Status),
		Error:              model.Error,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMCommunication(c *domain.TransactionCommunication) *models.TransactionCommunicationModel {
	return &models.TransactionCommunicationModel{
		ID:                 c.ID,
		TransactionID:      c.TransactionID,
		CommunicationCount: c.CommunicationCount,
		Event:              string(c.Event),
		Status:             string(c.Status),
		Error:              c.Error,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
