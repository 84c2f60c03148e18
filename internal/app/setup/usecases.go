package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/gateway"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/callback"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/payment"
	"github.com/LavaJover/shvark-payment-gateway/internal/usecase/reconcile"
)

type UseCases struct {
	PaymentUsecase   *payment.DefaultPaymentUsecase
	ReconcileUsecase *reconcile.DefaultReconcileUsecase
	CallbackHandler  *callback.DefaultCallbackHandler
	Notifier         *notifier.ClientCallbackHandler
	Drivers          *gateway.Registry
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	repos := deps.Repositories
	cfg := deps.Config

	clientNotifier := notifier.NewClientCallbackHandler(
		repos.Clients,
		repos.Refunds,
		repos.Communications,
		nil,
		cfg.ClientCallback,
		deps.Metrics,
	)

	callbackHandler := callback.NewDefaultCallbackHandler(
		repos.Transactions,
		repos.Refunds,
		repos.QRCodes,
		repos.Links,
		repos.Callbacks,
		repos.Disputes,
		deps.Publisher,
		deps.Metrics,
	)

	drivers, err := gateway.NewRegistry(cfg.Gateways, base.Deps{
		Transactions: repos.Transactions,
		Refunds:      repos.Refunds,
		QRCodes:      repos.QRCodes,
		Links:        repos.Links,
		Disputes:     repos.Disputes,
		Events:       callbackHandler,
		Notifier:     clientNotifier,
		Metrics:      deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway drivers: %w", err)
	}

	paymentUsecase := payment.NewDefaultPaymentUsecase(
		drivers,
		repos.Transactions,
		repos.Refunds,
		repos.QRCodes,
		repos.Callbacks,
		repos.Disputes,
		repos.Clients,
		deps.Publisher,
		deps.Metrics,
	)

	reconcileUsecase := reconcile.NewDefaultReconcileUsecase(
		drivers,
		repos.Transactions,
		repos.Refunds,
		repos.Communications,
		clientNotifier,
		cfg.Reconcile,
		deps.Metrics,
	)

	return &UseCases{
		PaymentUsecase:   paymentUsecase,
		ReconcileUsecase: reconcileUsecase,
		CallbackHandler:  callbackHandler,
		Notifier:         clientNotifier,
		Drivers:          drivers,
	}, nil
}
