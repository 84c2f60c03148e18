package razorpay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/gateway/base"
)

func (d *Driver) CreateQRCode(ctx context.Context, qr *domain.QRCode, req domain.CreateQRCodeRequest, client *domain.Client, clientVersion string) (*domain.QRCode, error) {
	notes := map[string]any{
		"store_id":       req.StoreID,
		"source_id":      req.SourceID,
		"store_type":     string(req.StoreType),
		"driver":         driverIDString(d.id),
		"qr_id":          qr.ID,
		"client_version": clientVersion,
		"payment_type":   domain.PaymentTypeStoreOrder,
	}
	if client != nil {
		notes["client_id"] = client.ID
	}
	body := qrRequest{
		Type:        string(qr.Type),
		Usage:       string(qr.Usage),
		FixedAmount: qr.IsFixedAmount,
		Description: req.Description,
		Notes:       notes,
	}
	if qr.IsFixedAmount {
		body.PaymentAmount = domain.ToMinorUnits(qr.PaymentAmount)
	}
	if req.CloseBy != nil {
		body.CloseBy = req.CloseBy.Unix()
	}
	qr.APIRequest = base.MustJSON(body)

	var entity qrEntity
	raw, err := d.api.post(ctx, "create_qr_code", "/v1/payments/qr_codes", body, &entity)
	if err != nil {
		slog.Error("razorpay qr creation failed", "qr_code_id", qr.ID, "error", err)
		qr.Status = domain.QRFailed
		qr.APIResponse = base.ErrorJSON(err)
		if saveErr := d.QRCodes.SaveQRCode(ctx, qr); saveErr != nil {
			slog.Error("failed to persist failed qr code", "qr_code_id", qr.ID, "error", saveErr)
		}
		return nil, domain.Internal(fmt.Sprintf("Error while create QR Code: %v", err))
	}

	qr.QRID = entity.ID
	qr.APIResponse = raw
	qr.Notes = entity.Notes
	qr.ImageURL = entity.ImageURL
	qr.CloseBy = unixTime(entity.CloseBy)
	qr.Status = domain.QRStatus(entity.Status)
	if err := d.QRCodes.SaveQRCode(ctx, qr); err != nil {
		return nil, fmt.Errorf("failed to save qr code: %w", err)
	}
	return qr, nil
}

func (d *Driver) CloseQRCode(ctx context.Context, qr *domain.QRCode) (*domain.QRCode, error) {
	var entity qrEntity
	if _, err := d.api.post(ctx, "close_qr_code", "/v1/payments/qr_codes/"+url.PathEscape(qr.QRID)+"/close", nil, &entity); err != nil {
		return nil, domain.Internal(fmt.Sprintf("Error while close QR Code: %v", err))
	}

	qr.Status = domain.QRStatus(entity.Status)
	if closeBy := unixTime(entity.CloseBy); closeBy != nil {
		qr.CloseBy = closeBy
	}
	qr.ClosedAt = unixTime(entity.ClosedAt)
	qr.CloseReason = entity.CloseReason
	if err := d.QRCodes.SaveQRCode(ctx, qr); err != nil {
		return nil, fmt.Errorf("failed to save qr code: %w", err)
	}
	return qr, nil
}

func (d *Driver) GetQRCodeStatus(ctx context.Context, qr *domain.QRCode) (json.RawMessage, error) {
	raw, err := d.api.get(ctx, "qr_code_status", "/v1/payments/qr_codes/"+url.PathEscape(qr.QRID), nil)
	if err != nil {
		return nil, domain.Internal(fmt.Sprintf("Error while getting qr details: %v", err))
	}
	return raw, nil
}
