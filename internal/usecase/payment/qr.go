package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/idgen"
)

// CreateQRCode stores a pending QR code and asks the gateway to issue it.
func (uc *DefaultPaymentUsecase) CreateQRCode(ctx context.Context, req domain.CreateQRCodeRequest, client *domain.Client, clientVersion string) (*domain.QRCode, error) {
	if req.FixedAmount && !req.PaymentAmount.IsPositive() {
		return nil, domain.Unprocessable("payment_amount is required for a fixed amount qr code")
	}
	driver, driverID, err := uc.resolveDriver(ctx, client, req.DriverID)
	if err != nil {
		return nil, err
	}
	if req.Usage == "" {
		req.Usage = domain.QRSingleUse
	}
	if req.Type == "" {
		req.Type = domain.QRTypeUPI
	}
	if clientVersion == "" {
		clientVersion = domain.DefaultClientVersion
	}

	qr := &domain.QRCode{
		ID:            idgen.NewShortID(),
		Usage:         req.Usage,
		Type:          req.Type,
		IsFixedAmount: req.FixedAmount,
		Status:        domain.QRPending,
		DriverID:      driverID,
		StoreID:       req.StoreID,
		SourceID:      req.SourceID,
	}
	if req.FixedAmount {
		qr.PaymentAmount = req.PaymentAmount
	}
	if client != nil {
		qr.ClientID = client.ID
	}
	if err := uc.QRCodes.CreateQRCode(ctx, qr); err != nil {
		return nil, domain.Internal(err.Error())
	}

	created, err := driver.CreateQRCode(ctx, qr, req, client, clientVersion)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return created, nil
}

func (uc *DefaultPaymentUsecase) qrCode(ctx context.Context, id string) (*domain.QRCode, error) {
	qr, err := uc.QRCodes.GetQRCodeByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("QR code %s not found", id))
		}
		return nil, domain.Internal(err.Error())
	}
	return qr, nil
}

// CloseQRCode closes an active QR code at the gateway.
func (uc *DefaultPaymentUsecase) CloseQRCode(ctx context.Context, id string) (*domain.QRCode, error) {
	qr, err := uc.qrCode(ctx, id)
	if err != nil {
		return nil, err
	}
	if qr.Status != domain.QRActive {
		return nil, domain.Unprocessable("Already closed!")
	}
	driver, err := uc.Drivers.Driver(qr.DriverID)
	if err != nil {
		return nil, err
	}
	closed, err := driver.CloseQRCode(ctx, qr)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return closed, nil
}

func (uc *DefaultPaymentUsecase) GetQRCodeStatus(ctx context.Context, id string) (*domain.QRCode, json.RawMessage, error) {
	qr, err := uc.qrCode(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	driver, err := uc.Drivers.Driver(qr.DriverID)
	if err != nil {
		return nil, nil, err
	}
	raw, err := driver.GetQRCodeStatus(ctx, qr)
	if err != nil {
		return nil, nil, domain.AsCallerError(err)
	}
	return qr, raw, nil
}
