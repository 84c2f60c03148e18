package mappers

import (
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
)

func ToDomainQRCode(model *models.QRCodeModel) *domain.QRCode {
	return &domain.QRCode{
		ID:            model.ID,
		QRID:          deref(model.QRID),
		Usage:         domain.QRUsage(model.Usage),
		Type:          domain.QRType(model.Type),
		PaymentAmount: model.PaymentAmount,
		IsFixedAmount: model.IsFixedAmount,
		APIRequest:    fromJSON(model.APIRequest),
		APIResponse:   fromJSON(model.APIResponse),
		Notes:         fromJSONMap(model.Notes),
		ImageURL:      model.ImageURL,
		CloseBy:       model.CloseBy,
		ClosedAt:      model.ClosedAt,
		CloseReason:   model.CloseReason,
		Status:        domain.QRStatus(model.Status),
		DriverID:      model.Driver,
		StoreID:       model.StoreID,
		SourceID:      model.SourceID,
		ClientID:      deref(model.ClientID),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMQRCode(qr *domain.QRCode) *models.QRCodeModel {
	return &models.QRCodeModel{
		ID:            qr.ID,
		QRID:          nullable(qr.QRID),
		Usage:         string(qr.Usage),
		Type:          string(qr.Type),
		PaymentAmount: qr.PaymentAmount,
		IsFixedAmount: qr.IsFixedAmount,
		APIRequest:    toJSON(qr.APIRequest),
		APIResponse:   toJSON(qr.APIResponse),
		Notes:         toJSONMap(qr.Notes),
		ImageURL:      qr.ImageURL,
		CloseBy:       qr.CloseBy,
		ClosedAt:      qr.ClosedAt,
		CloseReason:   qr.CloseReason,
		Status:        string(qr.Status),
		Driver:        qr.DriverID,
		StoreID:       qr.StoreID,
		SourceID:      qr.SourceID,
		ClientID:      nullable(qr.ClientID),
		CreatedAt:     qr.CreatedAt,
		UpdatedAt:     qr.UpdatedAt,
	}
}

func ToDomainPaymentLink(model *models.PaymentLinkModel) *domain.PaymentLink {
	return &domain.PaymentLink{
		ID:               model.ID,
		TransactionID:    model.TransactionID,
		PlinkID:          model.PlinkID,
		Status:           model.Status,
		APIResponse:      fromJSON(model.APIResponse),
		UpdateCount:      model.UpdateCount,
		NotifySMSCount:   model.NotifySMSCount,
		NotifyEmailCount: model.NotifyEmailCount,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMPaymentLink(link *domain.PaymentLink) *models.PaymentLinkModel {
	return &models.PaymentLinkModel{
		ID:               link.ID,
		TransactionID:    link.TransactionID,
		PlinkID:          link.PlinkID,
		Status:           link.Status,
		APIResponse:      toJSON(link.APIResponse),
		UpdateCount:      link.UpdateCount,
		NotifySMSCount:   link.NotifySMSCount,
		NotifyEmailCount: link.NotifyEmailCount,
		CreatedAt:        link.CreatedAt,
		UpdatedAt:        link.UpdatedAt,
	}
}
