package razorpay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
)

// Driver talks to razorpay on behalf of one configured gateway id.
type Driver struct {
	id            int
	keyID         string
	webhookSecret string
	api           *client
	base.Deps
}

var _ domain.Driver = (*Driver)(nil)

func NewDriver(cfg config.Gateway, deps base.Deps) *Driver {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Driver{
		id:            cfg.ID,
		keyID:         cfg.KeyID,
		webhookSecret: cfg.WebhookSecret,
		api: &client{
			baseURL:   baseURL,
			keyID:     cfg.KeyID,
			keySecret: cfg.KeySecret,
			timeout:   timeout,
			http:      httpClient,
			metrics:   deps.Metrics,
		},
		Deps: deps,
	}
}

func (d *Driver) Name() string { return driverName }

func (d *Driver) MakePayment(ctx context.Context, tx *domain.Transaction, req domain.MakePaymentRequest, client *domain.Client) (*domain.Transaction, error) {
	notes := base.CloneNotes(req.AdditionalInfo)
	notes["payment_type"] = req.PaymentType
	if client != nil {
		notes["client"] = client.Name
	}
	notes["store_id"] = req.StoreID
	notes["transaction_id"] = tx.ID
	notes["store_type"] = string(tx.StoreType)

	body := orderRequest{
		Amount:         domain.ToMinorUnits(tx.Amount),
		Currency:       domain.CurrencyINR,
		Receipt:        tx.SourceID,
		Notes:          notes,
		PaymentCapture: true,
	}
	tx.APIRequest = base.MustJSON(body)
	tx.AdditionalInfo = notes
	if err := d.Transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist order request: %w", err)
	}

	var created order
	raw, err := d.api.post(ctx, "create_order", "/v1/orders", body, &created)
	if err != nil {
		slog.Error("razorpay order creation failed", "transaction_id", tx.ID, "error", err)
		tx.Status = domain.StatusFailed
		tx.APIStatus = apiStatusOf(err)
		tx.APIResponse = base.ErrorJSON(err)
		if saveErr := d.Transactions.SaveTransaction(ctx, tx); saveErr != nil {
			slog.Error("failed to persist failed transaction", "transaction_id", tx.ID, "error", saveErr)
		}
		return nil, domain.Forbidden(err.Error())
	}

	tx.GatewayOrderID = created.ID
	tx.APIResponse = raw
	tx.APIStatus = http.StatusOK
	if err := d.Transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist order response: %w", err)
	}
	return tx, nil
}

// paymentID returns the gateway payment reference of tx, falling back to
// the id found in the stored gateway response.
func paymentID(tx *domain.Transaction) string {
	if tx.GatewayPaymentID != "" {
		return tx.GatewayPaymentID
	}
	var resp struct {
		ID string `json:"id"`
	}
	if len(tx.APIResponse) > 0 && json.Unmarshal(tx.APIResponse, &resp) == nil {
		return resp.ID
	}
	return ""
}

func (d *Driver) RefundPayment(ctx context.Context, tx *domain.Transaction, refund *domain.RefundTransaction, req domain.RefundRequest, _ *domain.Client) (*domain.RefundTransaction, error) {
	payID := paymentID(tx)
	if !strings.HasPrefix(payID, "pay_") {
		refund.Status = domain.RefundFailed
		refund.APIResponse = base.MustJSON("invalid payment id!")
		if err := d.Refunds.SaveRefund(ctx, refund); err != nil {
			slog.Error("failed to persist rejected refund", "refund_id", refund.ID, "error", err)
		}
		return nil, domain.Unprocessable("invalid payment id!")
	}

	notes := base.CloneNotes(req.Notes)
	notes["transaction_id"] = tx.ID
	notes["refund_transaction_id"] = refund.ID
	receipt := req.Receipt
	if receipt == "" {
		receipt = tx.SourceID
	}
	body := refundRequest{
		PaymentID: payID,
		Amount:    domain.ToMinorUnits(refund.Amount),
		Notes:     notes,
		Receipt:   receipt,
	}
	refund.APIRequest = base.MustJSON(body)
	refund.AdditionalInfo = notes
	if err := d.Refunds.SaveRefund(ctx, refund); err != nil {
		return nil, fmt.Errorf("failed to persist refund request: %w", err)
	}

	if err := d.sendRefund(ctx, refund, body); err != nil {
		slog.Error("razorpay refund failed", "refund_id", refund.ID, "error", err)
		refund.Status = domain.RefundFailed
		refund.APIStatus = apiStatusOf(err)
		refund.APIResponse = base.ErrorJSON(err)
		if saveErr := d.Refunds.SaveRefund(ctx, refund); saveErr != nil {
			slog.Error("failed to persist failed refund", "refund_id", refund.ID, "error", saveErr)
		}
		return nil, domain.Forbidden(err.Error())
	}
	return refund, nil
}

// sendRefund calls the refund endpoint and stores the gateway answer on
// success.
func (d *Driver) sendRefund(ctx context.Context, refund *domain.RefundTransaction, body refundRequest) error {
	var created refundEntity
	raw, err := d.api.post(ctx, "refund", "/v1/payments/"+url.PathEscape(body.PaymentID)+"/refund", body.body(), &created)
	if err != nil {
		return err
	}
	refund.RefundID = created.ID
	refund.APIResponse = raw
	refund.APIStatus = http.StatusOK
	refund.Amount = domain.FromMinorUnits(created.Amount)
	if err := d.Refunds.SaveRefund(ctx, refund); err != nil {
		return fmt.Errorf("failed to persist refund response: %w", err)
	}
	return nil
}

// RetryRefund replays the stored refund request. Failures are logged and
// the refund is returned unchanged.
func (d *Driver) RetryRefund(ctx context.Context, _ *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	var body refundRequest
	if len(refund.APIRequest) == 0 || json.Unmarshal(refund.APIRequest, &body) != nil || body.PaymentID == "" {
		slog.Warn("refund has no replayable request", "refund_id", refund.ID)
		return refund, nil
	}
	if err := d.sendRefund(ctx, refund, body); err != nil {
		slog.Error("error while trying to redo refund", "refund_id", refund.ID, "error", err)
	}
	return refund, nil
}

// GetPaymentStatus folds the earliest settled payment attempt of the order
// into the transaction.
func (d *Driver) GetPaymentStatus(ctx context.Context, tx *domain.Transaction, sendCallback bool) (*domain.Transaction, error) {
	if tx.GatewayOrderID == "" {
		return nil, domain.Forbidden("transaction has no gateway order id")
	}

	var list paymentList
	if _, err := d.api.get(ctx, "order_payments", "/v1/orders/"+url.PathEscape(tx.GatewayOrderID)+"/payments", &list); err != nil {
		slog.Error("failed to fetch order payments", "transaction_id", tx.ID, "error", err)
		if sendCallback {
			return tx, nil
		}
		return nil, domain.Forbidden(err.Error())
	}

	items := slices.Clone(list.Items)
	slices.Reverse(items)
	for _, item := range items {
		var p paymentEntity
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		if p.Status == "created" || p.Status == "authorized" {
			continue
		}
		updated, _, err := d.Events.HandlePayment(ctx, domain.PaymentEvent{
			Event:            "payment." + p.Status,
			DriverID:         d.id,
			GatewayOrderID:   tx.GatewayOrderID,
			GatewayPaymentID: p.ID,
			Captured:         p.Captured,
			Entity:           item,
		}, true)
		if err != nil {
			if sendCallback {
				slog.Error("failed to apply polled payment", "transaction_id", tx.ID, "error", err)
				return tx, nil
			}
			return nil, domain.AsCallerError(err)
		}
		if sendCallback {
			d.Notify(domain.EventTransaction, updated, driverName)
		}
		return updated, nil
	}
	return tx, nil
}

func (d *Driver) GetRefundStatus(ctx context.Context, tx *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	if refund.RefundID == "" {
		return nil, domain.Unprocessable("refund has no gateway refund id")
	}
	var entity refundEntity
	raw, err := d.api.get(ctx, "refund_status", "/v1/refunds/"+url.PathEscape(refund.RefundID), &entity)
	if err != nil {
		return nil, domain.Forbidden(err.Error())
	}
	amount := entity.Amount
	_, updated, _, err := d.Events.HandleRefund(ctx, domain.RefundEvent{
		Event:               "refund." + entity.Status,
		DriverID:            d.id,
		TransactionID:       tx.ID,
		GatewayRefundID:     entity.ID,
		RefundTransactionID: refund.ID,
		Status:              entity.Status,
		AmountMinor:         &amount,
		Entity:              raw,
	}, true)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return updated, nil
}

func (d *Driver) PaymentOrderID(ctx context.Context, paymentID string) (string, error) {
	var p paymentEntity
	if _, err := d.api.get(ctx, "fetch_payment", "/v1/payments/"+url.PathEscape(paymentID), &p); err != nil {
		return "", domain.Forbidden(fmt.Sprintf("can not fetch transaction for payment_id: %s", paymentID))
	}
	return p.OrderID, nil
}

func (d *Driver) PaymentMethods(ctx context.Context) (json.RawMessage, error) {
	raw, err := d.api.get(ctx, "payment_methods", "/v1/methods?key_id="+url.QueryEscape(d.keyID), nil)
	if err != nil {
		return nil, forbiddenf("Error while get payment methods", err)
	}
	return raw, nil
}

func (d *Driver) PaymentDowntime(ctx context.Context) (json.RawMessage, error) {
	raw, err := d.api.get(ctx, "payment_downtime", "/v1/payments/downtimes", nil)
	if err != nil {
		return nil, forbiddenf("Error while get payment downtime", err)
	}
	return raw, nil
}

// forbiddenf maps gateway rejections to Forbidden and everything else to
// Internal, prefixing the gateway's own description.
func forbiddenf(prefix string, err error) error {
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode != 0 {
		return domain.Forbidden(prefix + ": " + apiErr.Description)
	}
	return domain.Internal(prefix + ": " + err.Error())
}

func driverIDString(id int) string {
	return strconv.Itoa(id)
}
