package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	SweepPendingPayments   = "pending_payments"
	SweepPendingRefunds    = "pending_refunds"
	SweepCommunications    = "client_communications"
	SweepSuccessfulResends = "successful_resends"
)

type ReconcileUsecase interface {
	CheckPendingPayments(ctx context.Context) error
	RetryPendingRefunds(ctx context.Context) error
	RetryClientCommunications(ctx context.Context) error
	ResendSuccessfulNotifications(ctx context.Context) error
}

// DriverSource hands out the driver configured under a gateway id.
type DriverSource interface {
	Driver(id int) (domain.Driver, error)
}

// Deliverer sends one client notification synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, n domain.Notification)
}

type DefaultReconcileUsecase struct {
	Drivers        DriverSource
	Transactions   domain.TransactionRepository
	Refunds        domain.RefundRepository
	Communications domain.CommunicationRepository
	Notifier       Deliverer
	Config         config.Reconcile
	Metrics        *metrics.PaymentMetrics
	limiter        *rate.Limiter
}

func NewDefaultReconcileUsecase(
	drivers DriverSource,
	transactions domain.TransactionRepository,
	refunds domain.RefundRepository,
	communications domain.CommunicationRepository,
	notifier Deliverer,
	cfg config.Reconcile,
	paymentMetrics *metrics.PaymentMetrics) *DefaultReconcileUsecase {

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &DefaultReconcileUsecase{
		Drivers:        drivers,
		Transactions:   transactions,
		Refunds:        refunds,
		Communications: communications,
		Notifier:       notifier,
		Config:         cfg,
		Metrics:        paymentMetrics,
		limiter:        rate.NewLimiter(limit, 1),
	}
}

// CheckPendingPayments polls the gateway for transactions that never reached
// success and lets the driver apply and notify whatever it finds.
func (uc *DefaultReconcileUsecase) CheckPendingPayments(ctx context.Context) error {
	txs, err := uc.Transactions.ListUnsettledTransactions(ctx, uc.Config.PendingPaymentBatch)
	if err != nil {
		uc.Metrics.RecordReconcile(SweepPendingPayments, err)
		return fmt.Errorf("failed to list unsettled transactions: %w", err)
	}
	err = uc.sweep(ctx, len(txs), func(i int) error {
		tx := txs[i]
		driver, err := uc.Drivers.Driver(tx.DriverID)
		if err != nil {
			return err
		}
		_, err = driver.GetPaymentStatus(ctx, tx, true)
		return err
	}, func(i int, err error) {
		slog.Warn("pending payment recheck failed", "transaction_id", txs[i].ID, "error", err)
	})
	uc.Metrics.RecordReconcile(SweepPendingPayments, err)
	return err
}

// RetryPendingRefunds polls refunds the gateway already knows about and
// replays the stored request for the rest.
func (uc *DefaultReconcileUsecase) RetryPendingRefunds(ctx context.Context) error {
	refunds, err := uc.Refunds.ListPendingRefunds(ctx, uc.Config.RefundRetryBatch)
	if err != nil {
		uc.Metrics.RecordReconcile(SweepPendingRefunds, err)
		return fmt.Errorf("failed to list pending refunds: %w", err)
	}
	err = uc.sweep(ctx, len(refunds), func(i int) error {
		refund := refunds[i]
		tx, err := uc.Transactions.GetTransactionByID(ctx, refund.TransactionID)
		if err != nil {
			return err
		}
		driver, err := uc.Drivers.Driver(tx.DriverID)
		if err != nil {
			return err
		}
		if refund.RefundID != "" {
			_, err = driver.GetRefundStatus(ctx, tx, refund)
		} else {
			_, err = driver.RetryRefund(ctx, tx, refund)
		}
		return err
	}, func(i int, err error) {
		slog.Warn("pending refund retry failed", "refund_id", refunds[i].ID, "error", err)
	})
	uc.Metrics.RecordReconcile(SweepPendingRefunds, err)
	return err
}

// RetryClientCommunications re-drives undelivered client callbacks. The
// notifier reuses the same communication row, so its count keeps growing
// until the sweep stops selecting it.
func (uc *DefaultReconcileUsecase) RetryClientCommunications(ctx context.Context) error {
	comms, err := uc.Communications.ListUndelivered(ctx, uc.Config.CommunicationMaxCount, uc.Config.CommunicationBatch)
	if err != nil {
		uc.Metrics.RecordReconcile(SweepCommunications, err)
		return fmt.Errorf("failed to list undelivered communications: %w", err)
	}
	err = uc.sweep(ctx, len(comms), func(i int) error {
		comm := comms[i]
		tx, err := uc.Transactions.GetTransactionByID(ctx, comm.TransactionID)
		if err != nil {
			return err
		}
		uc.Notifier.Deliver(ctx, domain.Notification{Event: comm.Event, Transaction: tx, DriverName: uc.driverName(tx)})
		return nil
	}, func(i int, err error) {
		slog.Warn("client communication retry failed", "communication_id", comms[i].ID, "error", err)
	})
	uc.Metrics.RecordReconcile(SweepCommunications, err)
	return err
}

// ResendSuccessfulNotifications re-notifies clients about settled payments.
func (uc *DefaultReconcileUsecase) ResendSuccessfulNotifications(ctx context.Context) error {
	txs, err := uc.Transactions.ListTransactionsByStatus(ctx, domain.StatusSuccess, uc.Config.ResendSuccessBatch)
	if err != nil {
		uc.Metrics.RecordReconcile(SweepSuccessfulResends, err)
		return fmt.Errorf("failed to list successful transactions: %w", err)
	}
	err = uc.sweep(ctx, len(txs), func(i int) error {
		tx := txs[i]
		uc.Notifier.Deliver(ctx, domain.Notification{Event: domain.EventTransaction, Transaction: tx, DriverName: uc.driverName(tx)})
		return nil
	}, nil)
	uc.Metrics.RecordReconcile(SweepSuccessfulResends, err)
	return err
}

// sweep runs fn for n items, paced by the limiter and bounded by the
// configured concurrency. Per-item failures are reported to onErr and do
// not stop the batch; only cancellation does.
func (uc *DefaultReconcileUsecase) sweep(ctx context.Context, n int, fn func(i int) error, onErr func(i int, err error)) error {
	if n == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	if uc.Config.Concurrency > 0 {
		g.SetLimit(uc.Config.Concurrency)
	}
	for i := 0; i < n; i++ {
		if err := uc.limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			if err := fn(i); err != nil && onErr != nil {
				onErr(i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (uc *DefaultReconcileUsecase) driverName(tx *domain.Transaction) string {
	driver, err := uc.Drivers.Driver(tx.DriverID)
	if err != nil {
		return ""
	}
	return driver.Name()
}
