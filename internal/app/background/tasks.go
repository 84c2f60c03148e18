package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/reconcile"
)

type BackgroundTasks struct {
	ReconcileUsecase reconcile.ReconcileUsecase
	Config           config.Reconcile
}

func NewBackgroundTasks(reconcileUC reconcile.ReconcileUsecase, cfg config.Reconcile) *BackgroundTasks {
	return &BackgroundTasks{
		ReconcileUsecase: reconcileUC,
		Config:           cfg,
	}
}

// StartAll launches every enabled sweep; they stop when ctx is done.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.every(ctx, reconcile.SweepPendingPayments, bt.Config.PendingPaymentInterval, bt.ReconcileUsecase.CheckPendingPayments)
	go bt.every(ctx, reconcile.SweepPendingRefunds, bt.Config.RefundRetryInterval, bt.ReconcileUsecase.RetryPendingRefunds)
	go bt.every(ctx, reconcile.SweepCommunications, bt.Config.CommunicationInterval, bt.ReconcileUsecase.RetryClientCommunications)
	go bt.every(ctx, reconcile.SweepSuccessfulResends, bt.Config.ResendSuccessInterval, bt.ReconcileUsecase.ResendSuccessfulNotifications)
}

func (bt *BackgroundTasks) every(ctx context.Context, name string, interval time.Duration, run func(context.Context) error) {
	if interval <= 0 {
		slog.Info("reconcile sweep disabled", "sweep", name)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := run(ctx); err != nil {
				slog.Error("reconcile sweep failed", "sweep", name, "error", err)
				continue
			}
			slog.Debug("reconcile sweep finished", "sweep", name, "elapsed", time.Since(start))
		}
	}
}
