package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics holds every collector exported by the service. A nil
// *PaymentMetrics is valid and records nothing.
type PaymentMetrics struct {
	// Payments
	PaymentsCreatedTotal       prometheus.CounterVec
	PaymentsCreatedAmountTotal prometheus.CounterVec
	PaymentStatusTotal         prometheus.CounterVec

	// Refunds
	RefundsRequestedTotal prometheus.CounterVec
	RefundStatusTotal     prometheus.CounterVec

	// Webhooks
	WebhooksReceivedTotal       prometheus.CounterVec
	WebhookSignatureFailedTotal prometheus.CounterVec
	WebhookProcessingDuration   prometheus.HistogramVec

	// Outbound gateway calls
	GatewayRequestsTotal   prometheus.CounterVec
	GatewayRequestDuration prometheus.HistogramVec

	// Client callbacks
	ClientCallbacksTotal   prometheus.CounterVec
	ClientCallbackAttempts prometheus.Histogram

	// Reconciliation
	ReconcileItemsTotal prometheus.CounterVec

	// Errors
	ErrorsTotal prometheus.CounterVec
}

// NewPaymentMetrics registers the collectors on reg.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	factory := promauto.With(reg)
	return &PaymentMetrics{
		PaymentsCreatedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_created_total",
				Help: "Payments initiated with a gateway",
			},
			[]string{"driver", "payment_type"},
		),
		PaymentsCreatedAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_created_amount_total",
				Help: "Sum of initiated payment amounts in INR",
			},
			[]string{"driver"},
		),
		PaymentStatusTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_status_transitions_total",
				Help: "Applied transaction status transitions",
			},
			[]string{"driver", "status"},
		),

		RefundsRequestedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_requested_total",
				Help: "Refunds requested through the API",
			},
			[]string{"driver"},
		),
		RefundStatusTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refund_status_transitions_total",
				Help: "Applied refund status transitions",
			},
			[]string{"driver", "status"},
		),

		WebhooksReceivedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhooks_received_total",
				Help: "Inbound gateway webhooks by classification",
			},
			[]string{"gateway", "kind"},
		),
		WebhookSignatureFailedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_signature_failures_total",
				Help: "Inbound webhooks rejected on signature",
			},
			[]string{"gateway"},
		),
		WebhookProcessingDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webhook_processing_duration_seconds",
				Help:    "Time spent reconciling an inbound webhook",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"gateway"},
		),

		GatewayRequestsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Outbound gateway API calls by outcome",
			},
			[]string{"driver", "operation", "outcome"},
		),
		GatewayRequestDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Outbound gateway API latency",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"driver", "operation"},
		),

		ClientCallbacksTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_callbacks_total",
				Help: "Client notification deliveries by outcome",
			},
			[]string{"event", "outcome"},
		),
		ClientCallbackAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "client_callback_attempts",
				Help:    "HTTP attempts used per client notification",
				Buckets: []float64{1, 2, 3, 4, 5, 10},
			},
		),

		ReconcileItemsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconcile_items_total",
				Help: "Items processed by reconciliation sweeps",
			},
			[]string{"sweep", "outcome"},
		),

		ErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_errors_total",
				Help: "Errors raised while serving payment operations",
			},
			[]string{"operation", "error_type"},
		),
	}
}

func (m *PaymentMetrics) RecordPaymentCreated(driver, paymentType string, amount float64) {
	if m == nil {
		return
	}
	m.PaymentsCreatedTotal.WithLabelValues(driver, paymentType).Inc()
	m.PaymentsCreatedAmountTotal.WithLabelValues(driver).Add(amount)
}

func (m *PaymentMetrics) RecordPaymentStatus(driver, status string) {
	if m == nil {
		return
	}
	m.PaymentStatusTotal.WithLabelValues(driver, status).Inc()
}

func (m *PaymentMetrics) RecordRefundRequested(driver string) {
	if m == nil {
		return
	}
	m.RefundsRequestedTotal.WithLabelValues(driver).Inc()
}

func (m *PaymentMetrics) RecordRefundStatus(driver, status string) {
	if m == nil {
		return
	}
	m.RefundStatusTotal.WithLabelValues(driver, status).Inc()
}

func (m *PaymentMetrics) RecordWebhook(gateway, kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.WebhooksReceivedTotal.WithLabelValues(gateway, kind).Inc()
	m.WebhookProcessingDuration.WithLabelValues(gateway).Observe(elapsed.Seconds())
}

func (m *PaymentMetrics) RecordSignatureFailure(gateway string) {
	if m == nil {
		return
	}
	m.WebhookSignatureFailedTotal.WithLabelValues(gateway).Inc()
}

func (m *PaymentMetrics) RecordGatewayRequest(driver, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GatewayRequestsTotal.WithLabelValues(driver, operation, outcome).Inc()
	m.GatewayRequestDuration.WithLabelValues(driver, operation).Observe(elapsed.Seconds())
}

func (m *PaymentMetrics) RecordClientCallback(event string, delivered bool, attempts int) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	m.ClientCallbacksTotal.WithLabelValues(event, outcome).Inc()
	m.ClientCallbackAttempts.Observe(float64(attempts))
}

func (m *PaymentMetrics) RecordReconcile(sweep string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ReconcileItemsTotal.WithLabelValues(sweep, outcome).Inc()
}

func (m *PaymentMetrics) RecordError(operation, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}
