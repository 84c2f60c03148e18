package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	paymentdto "github.com/LavaJover/shvark-payment-gateway/internal/usecase/dto/payment"
)

// GetPaymentStatus reports a transaction, or with entity=refund its assigned
// refunds. recheck asks the gateway before answering.
func (uc *DefaultPaymentUsecase) GetPaymentStatus(ctx context.Context, transactionID, entity string, recheck bool) (*paymentdto.StatusOutput, error) {
	tx, err := uc.transaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	driver, err := uc.driverFor(tx)
	if err != nil {
		return nil, err
	}

	if entity == EntityRefund {
		return uc.refundStatus(ctx, driver, tx, recheck)
	}

	if recheck && tx.Status != domain.StatusSuccess && tx.GatewayOrderID != "" {
		updated, err := driver.GetPaymentStatus(ctx, tx, false)
		if err != nil {
			return nil, domain.AsCallerError(err)
		}
		tx = updated
	}
	return &paymentdto.StatusOutput{
		Entity:      []string{EntityTransaction},
		Transaction: paymentdto.FromTransaction(tx),
		Driver:      driver.Name(),
	}, nil
}

func (uc *DefaultPaymentUsecase) refundStatus(ctx context.Context, driver domain.Driver, tx *domain.Transaction, recheck bool) (*paymentdto.StatusOutput, error) {
	refunds, err := uc.Refunds.ListAssignedRefunds(ctx, tx.ID)
	if err != nil {
		return nil, domain.Internal(err.Error())
	}
	if recheck {
		for i, refund := range refunds {
			if refund.Status != domain.RefundPending {
				continue
			}
			updated, err := driver.GetRefundStatus(ctx, tx, refund)
			if err != nil {
				slog.Warn("refund recheck failed", "refund_id", refund.ID, "error", err)
				continue
			}
			if updated != nil {
				refunds[i] = updated
			}
		}
	}
	return &paymentdto.StatusOutput{
		Entity:      []string{EntityRefund},
		Transaction: paymentdto.FromTransaction(tx),
		Refunds:     paymentdto.FromRefunds(refunds),
		Driver:      driver.Name(),
	}, nil
}

// GetPaymentStatusBySourceID prefers the latest settled transaction for a
// source id over pending ones.
func (uc *DefaultPaymentUsecase) GetPaymentStatusBySourceID(ctx context.Context, sourceID string, client *domain.Client) (*paymentdto.StatusOutput, error) {
	filter := domain.TransactionFilter{SourceID: sourceID, Limit: 100}
	if client != nil {
		filter.ClientID = client.ID
	}
	txs, _, err := uc.Transactions.ListTransactions(ctx, filter)
	if err != nil {
		return nil, domain.Internal(err.Error())
	}
	if len(txs) == 0 {
		return nil, domain.NotFound(fmt.Sprintf("Transaction with source id %s not found", sourceID))
	}
	chosen := txs[0]
	for _, tx := range txs {
		if tx.Status != domain.StatusPending {
			chosen = tx
			break
		}
	}
	out := &paymentdto.StatusOutput{
		Entity:      []string{EntityTransaction},
		Transaction: paymentdto.FromTransaction(chosen),
	}
	if driver, err := uc.driverFor(chosen); err == nil {
		out.Driver = driver.Name()
	}
	return out, nil
}

// GetTransactionByPaymentID looks the payment id up locally and falls back
// to asking the gateway which order it belongs to.
func (uc *DefaultPaymentUsecase) GetTransactionByPaymentID(ctx context.Context, paymentID string, driverID int, client *domain.Client) (*domain.PaymentResult, error) {
	tx, err := uc.Transactions.GetTransactionByGatewayPaymentID(ctx, paymentID)
	if err == nil {
		driver, err := uc.driverFor(tx)
		if err != nil {
			return nil, err
		}
		return &domain.PaymentResult{Entity: EntityTransaction, Transaction: tx, Driver: driver.Name()}, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Internal(err.Error())
	}

	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	orderID, err := driver.PaymentOrderID(ctx, paymentID)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	tx, err = uc.Transactions.GetTransactionByGatewayOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("Transaction for payment %s not found", paymentID))
		}
		return nil, domain.Internal(err.Error())
	}
	return &domain.PaymentResult{Entity: EntityTransaction, Transaction: tx, Driver: driver.Name()}, nil
}

// ProcessCallback routes a webhook to the driver configured under driverID.
// The gateway is acknowledged even when the route names no known driver.
func (uc *DefaultPaymentUsecase) ProcessCallback(ctx context.Context, gateway string, driverID int, wh domain.Webhook) domain.WebhookAck {
	driver, err := uc.Drivers.Driver(driverID)
	if err != nil || driver.Name() != gateway {
		slog.Warn("webhook for unknown gateway", "gateway", gateway, "driver_id", driverID)
		uc.Metrics.RecordWebhook(gateway, domain.WebhookMalformed.String(), 0)
		return domain.Ack()
	}
	wh.Gateway = gateway
	wh.DriverID = driverID
	return driver.ProcessCallback(ctx, wh)
}

func (uc *DefaultPaymentUsecase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transaction(ctx, id)
}

func (uc *DefaultPaymentUsecase) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	txs, total, err := uc.Transactions.ListTransactions(ctx, filter)
	if err != nil {
		return nil, 0, domain.Internal(err.Error())
	}
	return txs, total, nil
}

func (uc *DefaultPaymentUsecase) ListRefunds(ctx context.Context, filter domain.RefundFilter) ([]*domain.RefundTransaction, int64, error) {
	refunds, total, err := uc.Refunds.ListRefunds(ctx, filter)
	if err != nil {
		return nil, 0, domain.Internal(err.Error())
	}
	return refunds, total, nil
}

func (uc *DefaultPaymentUsecase) ListQRCodes(ctx context.Context, filter domain.QRCodeFilter) ([]*domain.QRCode, int64, error) {
	qrs, total, err := uc.QRCodes.ListQRCodes(ctx, filter)
	if err != nil {
		return nil, 0, domain.Internal(err.Error())
	}
	return qrs, total, nil
}

func (uc *DefaultPaymentUsecase) ListCallbacks(ctx context.Context, transactionID string) ([]*domain.TransactionCallback, error) {
	callbacks, err := uc.Callbacks.ListCallbacksByTransaction(ctx, transactionID)
	if err != nil {
		return nil, domain.Internal(err.Error())
	}
	return callbacks, nil
}
