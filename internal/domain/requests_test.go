package domain_test

import (
	"strings"
	"testing"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func validRequest() domain.MakePaymentRequest {
	return domain.MakePaymentRequest{
		TotalAmount: decimal.NewFromInt(100),
		AmountToPay: decimal.NewFromInt(100),
		PaymentType: "upi",
		SourceID:    "S1",
	}
}

func TestMakePaymentRequest_Valid(t *testing.T) {
	assert.NoError(t, validRequest().Validate())
}

func TestMakePaymentRequest_AmountAboveTotal(t *testing.T) {
	req := validRequest()
	req.AmountToPay = decimal.NewFromInt(101)

	err := req.Validate()
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestMakePaymentRequest_NonPositiveAmount(t *testing.T) {
	req := validRequest()
	req.AmountToPay = decimal.Zero
	assert.Equal(t, codes.FailedPrecondition, status.Code(req.Validate()))
}

func TestMakePaymentRequest_SourceID(t *testing.T) {
	req := validRequest()
	req.SourceID = ""
	assert.Error(t, req.Validate())

	req.SourceID = strings.Repeat("x", 65)
	assert.Error(t, req.Validate())
}
