package domain

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

var (
	ErrTransactionNotFound   = fmt.Errorf("transaction %w", ErrNotFound)
	ErrRefundNotFound        = fmt.Errorf("refund transaction %w", ErrNotFound)
	ErrQRCodeNotFound        = fmt.Errorf("qr code %w", ErrNotFound)
	ErrPaymentLinkNotFound   = fmt.Errorf("payment link %w", ErrNotFound)
	ErrClientNotFound        = fmt.Errorf("client %w", ErrNotFound)
	ErrClientGatewayNotFound = fmt.Errorf("client gateway %w", ErrNotFound)
	ErrDisputeNotFound       = fmt.Errorf("dispute %w", ErrNotFound)
	ErrGatewayNotConfigured  = fmt.Errorf("gateway configuration %w", ErrNotFound)
	ErrUnsupportedOperation  = errors.New("operation not supported by driver")

	ErrDuplicatePaymentID = fmt.Errorf("transaction with this gateway payment id %w", ErrDuplicate)
	ErrDuplicateQRCode    = fmt.Errorf("qr code %w", ErrDuplicate)
)

// Caller-visible error taxonomy. Codes are translated to HTTP statuses by the
// delivery layer.

func NotFound(msg string) error {
	return status.Error(codes.NotFound, msg)
}

func Unprocessable(msg string) error {
	return status.Error(codes.FailedPrecondition, msg)
}

func Forbidden(msg string) error {
	return status.Error(codes.PermissionDenied, msg)
}

func Internal(msg string) error {
	return status.Error(codes.Internal, msg)
}

func Unauthorized(msg string) error {
	return status.Error(codes.Unauthenticated, msg)
}

// AsCallerError converts repository sentinels into the taxonomy and leaves
// errors that already carry a status untouched.
func AsCallerError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrUnsupportedOperation):
		return Unprocessable(err.Error())
	default:
		return Internal(err.Error())
	}
}
