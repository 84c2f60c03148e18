package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

const driverPaytm = "paytm"

// MakePayment persists a pending transaction and hands it to the resolved
// driver. Paytm requests reuse an existing transaction with the same
// source_id instead of initiating twice.
func (uc *DefaultPaymentUsecase) MakePayment(ctx context.Context, req domain.MakePaymentRequest, client *domain.Client, clientVersion string) (*domain.PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	driver, driverID, err := uc.resolveDriver(ctx, client, req.DriverID)
	if err != nil {
		return nil, err
	}

	if driver.Name() == driverPaytm {
		existing, err := uc.Transactions.GetTransactionBySourceID(ctx, req.SourceID)
		switch {
		case err == nil:
			slog.Info("reusing transaction for source id", "source_id", req.SourceID, "transaction_id", existing.ID)
			return &domain.PaymentResult{Entity: EntityTransaction, Transaction: existing, Driver: driver.Name()}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, domain.Internal(err.Error())
		}
	}

	storeType := req.StoreType
	if storeType == "" {
		storeType = domain.StoreTypePOS
		if req.PaymentType == domain.PaymentTypeLink {
			storeType = domain.StoreTypeBD
		}
	}
	if clientVersion == "" {
		clientVersion = domain.DefaultClientVersion
	}
	tx := &domain.Transaction{
		SourceID:       req.SourceID,
		TotalAmount:    req.TotalAmount,
		Amount:         req.AmountToPay,
		PaymentType:    req.PaymentType,
		StoreType:      storeType,
		StoreID:        req.StoreID,
		DriverID:       driverID,
		Status:         domain.StatusPending,
		AdditionalInfo: req.AdditionalInfo,
		APIVersion:     domain.DefaultAPIVersion,
		ClientVersion:  clientVersion,
	}
	if client != nil {
		tx.ClientID = client.ID
	}
	if err := uc.Transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, domain.Internal(err.Error())
	}
	uc.Metrics.RecordPaymentCreated(driver.Name(), tx.PaymentType, tx.Amount.InexactFloat64())

	result, err := driver.MakePayment(ctx, tx, req, client)
	if err != nil {
		uc.Metrics.RecordPaymentStatus(driver.Name(), string(domain.StatusFailed))
		uc.publishTransaction(ctx, domain.EventPaymentCreated, tx)
		return nil, domain.AsCallerError(err)
	}
	uc.publishTransaction(ctx, domain.EventPaymentCreated, result)
	return &domain.PaymentResult{Entity: EntityTransaction, Transaction: result, Driver: driver.Name()}, nil
}
