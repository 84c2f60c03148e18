package paytm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
)

const (
	DefaultBaseURL = "https://securegw.paytm.in"
	defaultTimeout = 25 * time.Second
)

// Driver supports payments, refunds and their callbacks. Links, QR codes
// and disputes are answered by base.Unsupported.
type Driver struct {
	base.Unsupported
	base.Deps

	id          int
	mid         string
	key         string
	website     string
	callbackURL string
	baseURL     string
	timeout     time.Duration
	http        *http.Client
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
		Unsupported: base.Unsupported{Driver: driverName},
		Deps:        deps,
		id:          cfg.ID,
		mid:         cfg.MID,
		key:         cfg.Key,
		website:     cfg.Website,
		callbackURL: strings.TrimRight(cfg.CallbackURL, "/"),
		baseURL:     baseURL,
		timeout:     timeout,
		http:        httpClient,
	}
}

func (d *Driver) Name() string { return driverName }

// signed wraps body into a {head, body} envelope signed over the exact body
// bytes that are sent.
func (d *Driver) signed(body any) (json.RawMessage, error) {
	rawBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	signature, err := GenerateSignature(string(rawBody), d.key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Head: head{Signature: signature}, Body: rawBody})
}

func (d *Driver) post(ctx context.Context, op, path string, payload json.RawMessage, out any) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		d.Metrics.RecordGatewayRequest(driverName, op, err, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("paytm %s returned %d: %s", op, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return data, nil
}

func (d *Driver) MakePayment(ctx context.Context, tx *domain.Transaction, req domain.MakePaymentRequest, client *domain.Client) (*domain.Transaction, error) {
	extend := base.CloneNotes(req.AdditionalInfo)
	extend["payment_type"] = req.PaymentType
	if client != nil {
		extend["client"] = client.Name
	}
	extend["store_id"] = req.StoreID

	body := initiateBody{
		RequestType: req.PaymentType,
		MID:         d.mid,
		WebsiteName: d.website,
		OrderID:     tx.SourceID,
		CallbackURL: d.callbackURL + "/payment",
		TxnAmount:   money{Value: tx.Amount.StringFixed(2), Currency: domain.CurrencyINR},
		UserInfo:    map[string]any{"custId": req.CustomerID},
		ExtendInfo:  extend,
	}
	payload, err := d.signed(body)
	if err != nil {
		return nil, domain.Internal(fmt.Sprintf("failed to sign paytm request: %v", err))
	}
	tx.APIRequest = payload
	tx.AdditionalInfo = extend
	if err := d.Transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist initiate request: %w", err)
	}

	path := "/theia/api/v1/initiateTransaction?mid=" + url.QueryEscape(d.mid) + "&orderId=" + url.QueryEscape(tx.SourceID)
	var resp initiateResponse
	raw, err := d.post(ctx, "initiate_transaction", path, payload, &resp)
	if err != nil {
		slog.Error("paytm initiate transaction failed", "transaction_id", tx.ID, "error", err)
		tx.Status = domain.StatusFailed
		tx.APIStatus = http.StatusInternalServerError
		tx.APIResponse = base.ErrorJSON(err)
		if saveErr := d.Transactions.SaveTransaction(ctx, tx); saveErr != nil {
			slog.Error("failed to persist failed transaction", "transaction_id", tx.ID, "error", saveErr)
		}
		return nil, domain.Forbidden(err.Error())
	}

	tx.APIResponse = raw
	tx.GatewayOrderID = resp.Body.TxnToken
	switch resp.Body.ResultInfo.ResultStatus {
	case resultSuccess:
		tx.APIStatus = http.StatusOK
	case resultFailure:
		tx.APIStatus = http.StatusForbidden
		tx.Status = domain.StatusFailed
	}
	if err := d.Transactions.SaveTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist initiate response: %w", err)
	}
	if tx.Status == domain.StatusFailed {
		return nil, domain.Forbidden(resp.Body.ResultInfo.ResultMsg)
	}
	return tx, nil
}

// txnID is the paytm transaction id of a settled payment.
func txnID(tx *domain.Transaction) string {
	if tx.GatewayPaymentID != "" {
		return tx.GatewayPaymentID
	}
	var cb map[string]any
	if len(tx.CallbackResponse) > 0 && json.Unmarshal(tx.CallbackResponse, &cb) == nil {
		if v, ok := cb["TXNID"].(string); ok {
			return v
		}
	}
	return ""
}

func (d *Driver) RefundPayment(ctx context.Context, tx *domain.Transaction, refund *domain.RefundTransaction, req domain.RefundRequest, _ *domain.Client) (*domain.RefundTransaction, error) {
	body := refundBody{
		MID:          d.mid,
		TxnType:      "REFUND",
		OrderID:      tx.SourceID,
		TxnID:        txnID(tx),
		RefID:        refund.ID,
		RefundAmount: refund.Amount.StringFixed(2),
	}
	if body.TxnID == "" {
		refund.Status = domain.RefundFailed
		refund.APIResponse = base.MustJSON("transaction has no paytm txn id")
		if err := d.Refunds.SaveRefund(ctx, refund); err != nil {
			slog.Error("failed to persist rejected refund", "refund_id", refund.ID, "error", err)
		}
		return nil, domain.Unprocessable("invalid payment id!")
	}
	payload, err := d.signed(body)
	if err != nil {
		return nil, domain.Internal(fmt.Sprintf("failed to sign paytm request: %v", err))
	}
	refund.APIRequest = payload
	refund.AdditionalInfo = req.Notes
	if err := d.Refunds.SaveRefund(ctx, refund); err != nil {
		return nil, fmt.Errorf("failed to persist refund request: %w", err)
	}

	if err := d.sendRefund(ctx, refund, payload); err != nil {
		slog.Error("paytm refund failed", "refund_id", refund.ID, "error", err)
		return nil, domain.Forbidden(err.Error())
	}
	return refund, nil
}

// sendRefund posts a signed refund request and records the answer. Every
// outcome is persisted before returning.
func (d *Driver) sendRefund(ctx context.Context, refund *domain.RefundTransaction, payload json.RawMessage) error {
	var resp refundResponse
	raw, err := d.post(ctx, "refund", "/refund/apply", payload, &resp)
	if err != nil {
		refund.Status = domain.RefundFailed
		refund.APIStatus = http.StatusInternalServerError
		refund.APIResponse = base.ErrorJSON(err)
		if saveErr := d.Refunds.SaveRefund(ctx, refund); saveErr != nil {
			slog.Error("failed to persist failed refund", "refund_id", refund.ID, "error", saveErr)
		}
		return err
	}

	refund.APIResponse = raw
	var rejected error
	switch resp.Body.ResultInfo.ResultStatus {
	case txnFailure:
		refund.APIStatus = http.StatusForbidden
		refund.Status = domain.RefundFailed
		rejected = fmt.Errorf("refund rejected: %s", resp.Body.ResultInfo.ResultMsg)
	case txnPending:
		refund.APIStatus = http.StatusOK
		refund.RefundID = resp.Body.RefundID
	}
	if err := d.Refunds.SaveRefund(ctx, refund); err != nil {
		return fmt.Errorf("failed to persist refund response: %w", err)
	}
	return rejected
}

func (d *Driver) RetryRefund(ctx context.Context, _ *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	if len(refund.APIRequest) == 0 {
		slog.Warn("refund has no replayable request", "refund_id", refund.ID)
		return refund, nil
	}
	if err := d.sendRefund(ctx, refund, refund.APIRequest); err != nil {
		slog.Error("error while trying to redo refund", "refund_id", refund.ID, "error", err)
	}
	return refund, nil
}

func (d *Driver) GetPaymentStatus(ctx context.Context, tx *domain.Transaction, sendCallback bool) (*domain.Transaction, error) {
	if tx.GatewayOrderID == "" {
		return nil, domain.Forbidden("transaction has no gateway order id")
	}
	payload, err := d.signed(statusBody{MID: d.mid, OrderID: tx.SourceID})
	if err != nil {
		return nil, domain.Internal(fmt.Sprintf("failed to sign paytm request: %v", err))
	}

	var resp orderStatusResponse
	raw, err := d.post(ctx, "order_status", "/v3/order/status", payload, &resp)
	if err != nil {
		slog.Error("failed to fetch paytm order status", "transaction_id", tx.ID, "error", err)
		if sendCallback {
			return tx, nil
		}
		return nil, domain.Forbidden(err.Error())
	}

	st := resp.Body.ResultInfo.ResultStatus
	if st != txnSuccess && st != txnFailure {
		return tx, nil
	}
	captured := st == txnSuccess
	updated, _, err := d.Events.HandlePayment(ctx, domain.PaymentEvent{
		Event:            "payment.status",
		DriverID:         d.id,
		GatewayOrderID:   tx.GatewayOrderID,
		GatewayPaymentID: resp.Body.TxnID,
		Captured:         &captured,
		Entity:           raw,
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

func (d *Driver) GetRefundStatus(ctx context.Context, tx *domain.Transaction, refund *domain.RefundTransaction) (*domain.RefundTransaction, error) {
	payload, err := d.signed(statusBody{MID: d.mid, OrderID: tx.SourceID, RefID: refund.ID})
	if err != nil {
		return nil, domain.Internal(fmt.Sprintf("failed to sign paytm request: %v", err))
	}
	var resp refundResponse
	raw, err := d.post(ctx, "refund_status", "/v2/refund/status", payload, &resp)
	if err != nil {
		return nil, domain.Forbidden(err.Error())
	}

	var gatewayStatus string
	switch resp.Body.ResultInfo.ResultStatus {
	case txnSuccess:
		gatewayStatus = domain.GatewayRefundProcessed
	case txnFailure:
		gatewayStatus = domain.GatewayRefundFailed
	default:
		return refund, nil
	}
	ev := domain.RefundEvent{
		Event:               "refund." + gatewayStatus,
		DriverID:            d.id,
		TransactionID:       tx.ID,
		GatewayRefundID:     resp.Body.RefundID,
		RefundTransactionID: refund.ID,
		Status:              gatewayStatus,
		Entity:              raw,
	}
	if minor, ok := minorUnits(resp.Body.RefundAmount); ok {
		ev.AmountMinor = &minor
	}
	_, updated, _, err := d.Events.HandleRefund(ctx, ev, true)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return updated, nil
}
