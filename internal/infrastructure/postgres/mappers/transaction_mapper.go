package mappers

import (
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/postgres/models"
)

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:               model.ID,
		SourceID:         model.SourceID,
		TotalAmount:      model.TotalAmount,
		Amount:           model.Amount,
		PaymentType:      model.PaymentType,
		StoreType:        domain.StoreType(deref(model.StoreType)),
		StoreID:          model.StoreID,
		DriverID:         model.Driver,
		GatewayOrderID:   deref(model.GatewayOrderID),
		GatewayPaymentID: deref(model.GatewayPaymentID),
		Status:           domain.TransactionStatus(model.Status),
		APIRequest:       fromJSON(model.APIRequest),
		APIResponse:      fromJSON(model.APIResponse),
		CallbackResponse: fromJSON(model.CallbackResponse),
		APIStatus:        fromAPIStatus(model.APIStatus),
		ClientID:         deref(model.ClientID),
		AdditionalInfo:   fromJSONMap(model.AdditionalInfo),
		APIVersion:       model.APIVersion,
		ClientVersion:    model.ClientVersion,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMTransaction(tx *domain.Transaction) *models.TransactionModel {
	return &models.TransactionModel{
		ID:               tx.ID,
		SourceID:         tx.SourceID,
		TotalAmount:      tx.TotalAmount,
		Amount:           tx.Amount,
		PaymentType:      tx.PaymentType,
		StoreType:        nullable(string(tx.StoreType)),
		StoreID:          tx.StoreID,
		Driver:           tx.DriverID,
		GatewayOrderID:   nullable(tx.GatewayOrderID),
		GatewayPaymentID: nullable(tx.GatewayPaymentID),
		Status:           string(tx.Status),
		APIRequest:       toJSON(tx.APIRequest),
		APIResponse:      toJSON(tx.APIResponse),
		CallbackResponse: toJSON(tx.CallbackResponse),
		APIStatus:        apiStatus(tx.APIStatus),
		ClientID:         nullable(tx.ClientID),
		AdditionalInfo:   toJSONMap(tx.AdditionalInfo),
		APIVersion:       tx.APIVersion,
		ClientVersion:    tx.ClientVersion,
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
}

func ToDomainRefund(model *models.RefundTransactionModel) *domain.RefundTransaction {
	return &domain.RefundTransaction{
		ID:               model.ID,
		TransactionID:    model.TransactionID,
		RefundID:         deref(model.RefundID),
		Status:           domain.RefundStatus(model.Status),
		Amount:           model.Amount,
		APIRequest:       fromJSON(model.APIRequest),
		APIResponse:      fromJSON(model.APIResponse),
		CallbackResponse: fromJSON(model.CallbackResponse),
		APIStatus:        fromAPIStatus(model.APIStatus),
		AdditionalInfo:   fromJSONMap(model.AdditionalInfo),
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMRefund(refund *domain.RefundTransaction) *models.RefundTransactionModel {
	return &models.RefundTransactionModel{
		ID:               refund.ID,
		TransactionID:    refund.TransactionID,
		RefundID:         nullable(refund.RefundID),
		Status:           string(refund.Status),
		Amount:           refund.Amount,
		APIRequest:       toJSON(refund.APIRequest),
		APIResponse:      toJSON(refund.APIResponse),
		CallbackResponse: toJSON(refund.CallbackResponse),
		APIStatus:        apiStatus(refund.APIStatus),
		AdditionalInfo:   toJSONMap(refund.AdditionalInfo),
		CreatedAt:        refund.CreatedAt,
		UpdatedAt:        refund.UpdatedAt,
	}
}
