package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

const defaultQRDriver = "1"

// HandleQR dispatches the qr_code sub-protocol by event name.
func (h *DefaultCallbackHandler) HandleQR(ctx context.Context, ev domain.QREvent) error {
	switch ev.Event {
	case domain.EventQRCreated:
		slog.Info("qr code created", "qr_id", ev.QRID, "driver_id", ev.DriverID)
		h.audit(ctx, "", domain.CallbackQRCode, ev.Event, ev.DriverID, ev.Body)
		return nil
	case domain.EventQRCredited:
		return h.qrCredited(ctx, ev)
	case domain.EventQRClosed:
		return h.qrClosed(ctx, ev)
	default:
		slog.Info("unknown qr event", "event", ev.Event, "qr_id", ev.QRID)
		return h.RecordUnknown(ctx, ev.DriverID, ev.Event, ev.Body)
	}
}

func note(notes map[string]any, key, fallback string) string {
	switch v := notes[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fallback
}

// qrCredited records a payment against a QR code. A payment id never seen
// before becomes a new successful transaction built from the QR notes.
func (h *DefaultCallbackHandler) qrCredited(ctx context.Context, ev domain.QREvent) error {
	if ev.GatewayPaymentID == "" {
		h.audit(ctx, "", domain.CallbackQRCode, ev.Event, ev.DriverID, ev.Body)
		return domain.Unprocessable("qr credit carries no payment id")
	}

	tx, err := h.Transactions.GetTransactionByGatewayPaymentID(ctx, ev.GatewayPaymentID)
	switch {
	case err == nil:
	case notFound(err):
		tx, err = h.adoptQRPayment(ctx, ev)
		if errors.Is(err, domain.ErrDuplicate) {
			// a concurrent delivery adopted the payment first
			tx, err = h.Transactions.GetTransactionByGatewayPaymentID(ctx, ev.GatewayPaymentID)
		}
		if err != nil {
			h.audit(ctx, "", domain.CallbackQRCode, ev.Event, ev.DriverID, ev.Body)
			return err
		}
	default:
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	if _, err := h.qrCodeFor(ctx, ev, tx); err != nil {
		h.audit(ctx, tx.ID, domain.CallbackQRCode, ev.Event, ev.DriverID, ev.Body)
		return err
	}
	h.audit(ctx, tx.ID, domain.CallbackQRCode, ev.Event, ev.DriverID, ev.Body)
	return nil
}

func (h *DefaultCallbackHandler) adoptQRPayment(ctx context.Context, ev domain.QREvent) (*domain.Transaction, error) {
	notes := ev.Notes
	driverID, err := strconv.Atoi(note(notes, "driver", defaultQRDriver))
	if err != nil {
		driverID = ev.DriverID
	}
	amount := domain.FromMinorUnits(ev.PaymentAmountMinor)
	tx := &domain.Transaction{
		SourceID:         note(notes, "source_id", ev.QRID),
		TotalAmount:      amount,
		Amount:           amount,
		PaymentType:      note(notes, "payment_type", domain.PaymentTypeStoreOrder),
		StoreType:        domain.StoreType(note(notes, "store_type", "")),
		StoreID:          note(notes, "store_id", ""),
		DriverID:         driverID,
		GatewayPaymentID: ev.GatewayPaymentID,
		Status:           domain.StatusSuccess,
		CallbackResponse: ev.Body,
		APIStatus:        200,
		ClientID:         note(notes, "client_id", ""),
		AdditionalInfo:   map[string]any{"qr_id": ev.QRID},
		APIVersion:       domain.DefaultAPIVersion,
		ClientVersion:    note(notes, "client_version", domain.DefaultClientVersion),
	}
	if err := h.Transactions.CreateTransaction(ctx, tx); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create transaction from qr credit: %w", err)
	}
	slog.Info("transaction created from qr credit", "transaction_id", tx.ID, "qr_id", ev.QRID, "payment_id", ev.GatewayPaymentID)
	h.Metrics.RecordPaymentCreated(driverLabel(tx.DriverID), tx.PaymentType, amount.InexactFloat64())
	h.Metrics.RecordPaymentStatus(driverLabel(tx.DriverID), string(tx.Status))
	h.publishTransaction(ctx, domain.EventPaymentCreated, tx)
	return tx, nil
}

// qrCodeFor returns the QR row for the event, creating it from the webhook
// entity when the code was issued outside the service.
func (h *DefaultCallbackHandler) qrCodeFor(ctx context.Context, ev domain.QREvent, tx *domain.Transaction) (*domain.QRCode, error) {
	if ev.QRID == "" {
		return nil, nil
	}
	qr, err := h.QRCodes.GetQRCodeByQRID(ctx, ev.QRID)
	if err == nil {
		return qr, nil
	}
	if !notFound(err) {
		return nil, fmt.Errorf("failed to load qr code: %w", err)
	}

	status := ev.Status
	if status == "" {
		status = domain.QRActive
	}
	qr = &domain.QRCode{
		QRID:          ev.QRID,
		Usage:         ev.Usage,
		Type:          ev.Type,
		IsFixedAmount: ev.FixedAmount,
		Notes:         ev.Notes,
		ImageURL:      ev.ImageURL,
		CloseBy:       ev.CloseBy,
		ClosedAt:      ev.ClosedAt,
		CloseReason:   ev.CloseReason,
		Status:        status,
		DriverID:      tx.DriverID,
		StoreID:       tx.StoreID,
		SourceID:      tx.SourceID,
		ClientID:      tx.ClientID,
	}
	if ev.FixedAmount {
		qr.PaymentAmount = domain.FromMinorUnits(ev.PaymentAmountMinor)
	}
	if err := h.QRCodes.CreateQRCode(ctx, qr); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return h.QRCodes.GetQRCodeByQRID(ctx, ev.QRID)
		}
		return nil, fmt.Errorf("failed to create qr code: %w", err)
	}
	return qr, nil
}

// qrClosed mirrors the close onto a known QR code. Unknown codes are skipped.
func (h *DefaultCallbackHandler) qrClosed(ctx context.Context, ev domain.QREvent) error {
	defer h.audit(ctx, "", domain.CallbackQRCode, ev.Event, ev.DriverID, ev.Body)

	qr, err := h.QRCodes.GetQRCodeByQRID(ctx, ev.QRID)
	if err != nil {
		if notFound(err) {
			slog.Info("closed qr code is unknown", "qr_id", ev.QRID)
			return nil
		}
		return fmt.Errorf("failed to load qr code: %w", err)
	}
	qr.Status = domain.QRClosed
	qr.CloseReason = ev.CloseReason
	qr.ClosedAt = ev.ClosedAt
	if qr.ClosedAt == nil {
		now := time.Now()
		qr.ClosedAt = &now
	}
	if err := h.QRCodes.SaveQRCode(ctx, qr); err != nil {
		return fmt.Errorf("failed to close qr code: %w", err)
	}
	return nil
}
