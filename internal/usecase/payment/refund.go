package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

// RefundPayment refunds a successful transaction. The amount defaults to the
// full transaction amount and may never exceed it.
func (uc *DefaultPaymentUsecase) RefundPayment(ctx context.Context, req domain.RefundRequest, client *domain.Client) (*domain.Transaction, *domain.RefundTransaction, error) {
	tx, err := uc.transaction(ctx, req.PaymentTransactionID)
	if err != nil {
		return nil, nil, err
	}
	if tx.Status != domain.StatusSuccess {
		return nil, nil, domain.Unprocessable(fmt.Sprintf("Transaction %s is not successful", tx.ID))
	}

	amount := req.AmountToRefund
	if amount.IsZero() {
		amount = tx.Amount
	}
	if amount.IsNegative() {
		return nil, nil, domain.Unprocessable("amount_to_refund must be positive")
	}
	if amount.GreaterThan(tx.Amount) {
		return nil, nil, domain.Forbidden("Refund amount cannot be greater than transaction amount")
	}

	driver, err := uc.driverFor(tx)
	if err != nil {
		return nil, nil, err
	}

	refund := &domain.RefundTransaction{
		TransactionID:  tx.ID,
		Status:         domain.RefundPending,
		Amount:         amount,
		AdditionalInfo: req.Notes,
	}
	if err := uc.Refunds.CreateRefund(ctx, refund); err != nil {
		return nil, nil, domain.Internal(err.Error())
	}
	uc.Metrics.RecordRefundRequested(driver.Name())

	result, err := driver.RefundPayment(ctx, tx, refund, req, client)
	if err != nil {
		uc.Metrics.RecordRefundStatus(driver.Name(), string(domain.RefundFailed))
		uc.publishRefund(ctx, domain.EventRefundCreated, tx, refund)
		return nil, nil, domain.AsCallerError(err)
	}
	uc.publishRefund(ctx, domain.EventRefundCreated, tx, result)
	return tx, result, nil
}

// RetryRefund replays the stored gateway request of a pending refund.
func (uc *DefaultPaymentUsecase) RetryRefund(ctx context.Context, refundID string) (*domain.RefundTransaction, error) {
	refund, err := uc.Refunds.GetRefundByID(ctx, refundID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("Refund %s not found", refundID))
		}
		return nil, domain.Internal(err.Error())
	}
	tx, err := uc.transaction(ctx, refund.TransactionID)
	if err != nil {
		return nil, err
	}
	driver, err := uc.driverFor(tx)
	if err != nil {
		return nil, err
	}
	prev := refund.Status
	result, err := driver.RetryRefund(ctx, tx, refund)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	if result.Status != prev {
		uc.publishRefund(ctx, domain.EventRefundUpdated, tx, result)
	}
	return result, nil
}
