package payment

import (
	"context"
	"encoding/json"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
)

func (uc *DefaultPaymentUsecase) AcceptDispute(ctx context.Context, driverID int, disputeID string, client *domain.Client) (*domain.DisputeResult, error) {
	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	res, err := driver.AcceptDispute(ctx, disputeID)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return res, nil
}

func (uc *DefaultPaymentUsecase) ContestDispute(ctx context.Context, driverID int, disputeID string, req domain.ContestDisputeRequest, client *domain.Client) (*domain.DisputeResult, error) {
	if req.Action != "" && req.Action != domain.ContestDraft && req.Action != domain.ContestSubmit {
		return nil, domain.Unprocessable("action must be draft or submit")
	}
	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	res, err := driver.ContestDispute(ctx, disputeID, req)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return res, nil
}

func (uc *DefaultPaymentUsecase) UploadDocument(ctx context.Context, driverID int, upload domain.DocumentUpload, client *domain.Client) (*domain.DisputeDocument, error) {
	if len(upload.Content) == 0 {
		return nil, domain.Unprocessable("file is required")
	}
	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	doc, err := driver.UploadDocument(ctx, upload)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return doc, nil
}

func (uc *DefaultPaymentUsecase) GetDocument(ctx context.Context, driverID int, documentID string, client *domain.Client) (json.RawMessage, error) {
	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	raw, err := driver.GetDocument(ctx, documentID)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return raw, nil
}

func (uc *DefaultPaymentUsecase) ListDisputes(ctx context.Context, filter domain.DisputeFilter) ([]*domain.Dispute, int64, error) {
	disputes, total, err := uc.Disputes.ListDisputes(ctx, filter)
	if err != nil {
		return nil, 0, domain.Internal(err.Error())
	}
	return disputes, total, nil
}

func (uc *DefaultPaymentUsecase) PaymentMethods(ctx context.Context, driverID int, client *domain.Client) (json.RawMessage, error) {
	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	raw, err := driver.PaymentMethods(ctx)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return raw, nil
}

func (uc *DefaultPaymentUsecase) PaymentDowntime(ctx context.Context, driverID int, client *domain.Client) (json.RawMessage, error) {
	driver, _, err := uc.resolveDriver(ctx, client, driverID)
	if err != nil {
		return nil, err
	}
	raw, err := driver.PaymentDowntime(ctx)
	if err != nil {
		return nil, domain.AsCallerError(err)
	}
	return raw, nil
}
