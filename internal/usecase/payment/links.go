package payment

import (
	"context"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

func (uc *DefaultPaymentUsecase) CreatePaymentLink(ctx context.Context, req domain.CreatePaymentLinkRequest, client *domain.Client, clientVersion string) (*domain.PaymentLinkResult, error) {
	if !req.Amount.IsPositive() {
		return nil, domain.Unprocessable("amount must be positive")
	}
	if req.SourceID == "" {
		return nil, domain.Unprocessable("source_id is required")
	}
	driver, _, err := uc.resolveDriver(ctx, client, req.DriverID)
	if err != nil {
		return nil, err
	}
	if clientVersion == "" {
		clientVersion = domain.DefaultClientVersion
	}

	res, err := driver.CreatePaymentLink(ctx, req, client, clientVersion)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	uc.Metrics.RecordPaymentCreated(driver.Name(), domain.PaymentTypeLink, req.Amount.InexactFloat64())
	uc.publishTransaction(ctx, domain.EventPaymentCreated, res.Transaction)
	return res, nil
}

func (uc *DefaultPaymentUsecase) CancelPaymentLink(ctx context.Context, transactionID string) (*domain.PaymentLinkResult, error) {
	return uc.linkOperation(ctx, transactionID, func(driver domain.Driver, tx *domain.Transaction) (*domain.PaymentLinkResult, error) {
		return driver.CancelPaymentLink(ctx, tx)
	})
}

func (uc *DefaultPaymentUsecase) ResendPaymentLink(ctx context.Context, transactionID string, medium domain.NotifyMedium) (*domain.PaymentLinkResult, error) {
	if !medium.Valid() {
		return nil, domain.Unprocessable("medium must be sms or email")
	}
	return uc.linkOperation(ctx, transactionID, func(driver domain.Driver, tx *domain.Transaction) (*domain.PaymentLinkResult, error) {
		return driver.ResendPaymentLink(ctx, tx, medium)
	})
}

func (uc *DefaultPaymentUsecase) GetPaymentLinkStatus(ctx context.Context, transactionID string) (*domain.PaymentLinkResult, error) {
	return uc.linkOperation(ctx, transactionID, func(driver domain.Driver, tx *domain.Transaction) (*domain.PaymentLinkResult, error) {
		return driver.GetPaymentLinkStatus(ctx, tx)
	})
}

// linkOperation runs op against the driver of a link transaction and
// publishes any status change it caused.
func (uc *DefaultPaymentUsecase) linkOperation(ctx context.Context, transactionID string, op func(domain.Driver, *domain.Transaction) (*domain.PaymentLinkResult, error)) (*domain.PaymentLinkResult, error) {
	tx, err := uc.transaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	driver, err := uc.driverFor(tx)
	if err != nil {
		return nil, err
	}
	before := tx.Status

	res, err := op(driver, tx)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	if res.Transaction != nil && res.Transaction.Status != before {
		uc.Metrics.RecordPaymentStatus(driver.Name(), string(res.Transaction.Status))
		uc.publishTransaction(ctx, domain.EventPaymentUpdated, res.Transaction)
	}
	return res, nil
}
