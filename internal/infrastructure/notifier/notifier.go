package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/config"
	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
	"github.com/cenkalti/backoff/v4"
)

const maxErrorBody = 2048

// ClientCallbackHandler posts state changes to the owning client's callback
// url and records the outcome in transaction_communications.
type ClientCallbackHandler struct {
	clients    domain.ClientRepository
	refunds    domain.RefundRepository
	comms      domain.CommunicationRepository
	httpClient *http.Client
	cfg        config.ClientCallback
	metrics    *metrics.PaymentMetrics
	wg         sync.WaitGroup
}

func NewClientCallbackHandler(
	clients domain.ClientRepository,
	refunds domain.RefundRepository,
	comms domain.CommunicationRepository,
	httpClient *http.Client,
	cfg config.ClientCallback,
	m *metrics.PaymentMetrics,
) *ClientCallbackHandler {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &ClientCallbackHandler{
		clients:    clients,
		refunds:    refunds,
		comms:      comms,
		httpClient: httpClient,
		cfg:        cfg,
		metrics:    m,
	}
}

// Dispatch delivers n in the background.
func (h *ClientCallbackHandler) Dispatch(n domain.Notification) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.cfg.MaxElapsed+h.cfg.RequestTimeout+5*time.Second)
		defer cancel()
		h.Deliver(ctx, n)
	}()
}

// Wait blocks until every dispatched delivery has finished.
func (h *ClientCallbackHandler) Wait() {
	h.wg.Wait()
}

// Deliver sends n synchronously. Failures are recorded, never returned.
func (h *ClientCallbackHandler) Deliver(ctx context.Context, n domain.Notification) {
	tx := n.Transaction
	if tx == nil {
		return
	}
	log := slog.With("transaction_id", tx.ID, "event", n.Event)

	if tx.ClientID == "" {
		log.Info("transaction has no client, skipping callback")
		return
	}
	client, err := h.clients.GetClientByID(ctx, tx.ClientID)
	if err != nil {
		log.Error("failed to load client for callback", "client_id", tx.ClientID, "error", err)
		return
	}
	if client.CallbackURL == "" {
		log.Info("client has no callback url", "client_id", client.ID)
		return
	}

	var refunds []*domain.RefundTransaction
	if n.Event == domain.EventRefund {
		refunds, err = h.refunds.ListAssignedRefunds(ctx, tx.ID)
		if err != nil {
			log.Error("failed to load refunds for callback", "error", err)
			return
		}
	}
	body, err := json.Marshal(NewCallbackPayload(n, refunds))
	if err != nil {
		log.Error("failed to marshal callback", "error", err)
		return
	}

	comm, err := h.comms.FindOrCreateCommunication(ctx, tx.ID, n.Event)
	if err != nil {
		log.Error("failed to load communication", "error", err)
		return
	}

	attempts, sendErr := h.send(ctx, client.CallbackURL, body)
	if sendErr != nil {
		// additive so repeated exhaustion pushes the row past the re-drive cap
		comm.CommunicationCount += h.cfg.MaxAttempts
		comm.Status = domain.CommunicationFailed
		comm.Error = sendErr.Error()
		log.Warn("client callback failed", "attempts", attempts, "count", comm.CommunicationCount, "error", sendErr)
	} else {
		comm.CommunicationCount += attempts
		comm.Status = domain.CommunicationSuccess
		comm.Error = ""
		log.Info("client callback delivered", "attempts", attempts)
	}
	h.metrics.RecordClientCallback(string(n.Event), sendErr == nil, attempts)

	if err := h.comms.SaveCommunication(ctx, comm); err != nil {
		log.Error("failed to save communication", "error", err)
	}
}

// send posts body with jittered exponential backoff. Transport errors and
// 4xx/5xx answers are retried; only 200 and 201 count as delivered.
func (h *ClientCallbackHandler) send(ctx context.Context, url string, body []byte) (int, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = h.cfg.InitialInterval
	eb.RandomizationFactor = 0.5
	eb.Multiplier = 2
	eb.MaxElapsedTime = h.cfg.MaxElapsed
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(h.cfg.MaxAttempts-1)), ctx)

	attempts := 0
	op := func() error {
		attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create callback request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			return nil
		case resp.StatusCode >= 400 && resp.StatusCode < 600:
			return &statusError{code: resp.StatusCode, body: string(text)}
		default:
			return backoff.Permanent(&statusError{code: resp.StatusCode, body: string(text)})
		}
	}

	err := backoff.Retry(op, b)
	return attempts, err
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("callback returned status %d", e.code)
	}
	return e.body
}

var _ domain.ClientNotifier = (*ClientCallbackHandler)(nil)
