package base

import (
	"net/http"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
)

// Deps are the collaborators every driver is built with.
type Deps struct {
	Transactions domain.TransactionRepository
	Refunds      domain.RefundRepository
	QRCodes      domain.QRCodeRepository
	Links        domain.PaymentLinkRepository
	Disputes     domain.DisputeRepository
	Events       domain.CallbackEventHandler
	Notifier     domain.ClientNotifier
	Metrics      *metrics.PaymentMetrics
	HTTPClient   *http.Client
}

// Notify hands a transaction notification to the notifier when one is wired.
func (d Deps) Notify(event domain.NotificationEvent, tx *domain.Transaction, driver string) {
	if d.Notifier == nil || tx == nil {
		return
	}
	d.Notifier.Dispatch(domain.Notification{Event: event, Transaction: tx, DriverName: driver})
}
