package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-payment-gateway/internal/domain"
	"github.com/LavaJover/shvark-payment-gateway/internal/infrastructure/metrics"
	paymentdto "github.com/LavaJover/shvark-payment-gateway/internal/usecase/dto/payment"
)

const (
	EntityTransaction = "transaction"
	EntityRefund      = "refund"
)

type PaymentUsecase interface {
	Authenticate(ctx context.Context, apiKey string) (*domain.Client, error)

	MakePayment(ctx context.Context, req domain.MakePaymentRequest, client *domain.Client, clientVersion string) (*domain.PaymentResult, error)
	RefundPayment(ctx context.Context, req domain.RefundRequest, client *domain.Client) (*domain.Transaction, *domain.RefundTransaction, error)
	RetryRefund(ctx context.Context, refundID string) (*domain.RefundTransaction, error)
	GetPaymentStatus(ctx context.Context, transactionID, entity string, recheck bool) (*paymentdto.StatusOutput, error)
	GetPaymentStatusBySourceID(ctx context.Context, sourceID string, client *domain.Client) (*paymentdto.StatusOutput, error)
	GetTransactionByPaymentID(ctx context.Context, paymentID string, driverID int, client *domain.Client) (*domain.PaymentResult, error)
	ProcessCallback(ctx context.Context, gateway string, driverID int, wh domain.Webhook) domain.WebhookAck

	CreatePaymentLink(ctx context.Context, req domain.CreatePaymentLinkRequest, client *domain.Client, clientVersion string) (*domain.PaymentLinkResult, error)
	CancelPaymentLink(ctx context.Context, transactionID string) (*domain.PaymentLinkResult, error)
	ResendPaymentLink(ctx context.Context, transactionID string, medium domain.NotifyMedium) (*domain.PaymentLinkResult, error)
	GetPaymentLinkStatus(ctx context.Context, transactionID string) (*domain.PaymentLinkResult, error)

	CreateQRCode(ctx context.Context, req domain.CreateQRCodeRequest, client *domain.Client, clientVersion string) (*domain.QRCode, error)
	CloseQRCode(ctx context.Context, id string) (*domain.QRCode, error)
	GetQRCodeStatus(ctx context.Context, id string) (*domain.QRCode, json.RawMessage, error)

	AcceptDispute(ctx context.Context, driverID int, disputeID string, client *domain.Client) (*domain.DisputeResult, error)
	ContestDispute(ctx context.Context, driverID int, disputeID string, req domain.ContestDisputeRequest, client *domain.Client) (*domain.DisputeResult, error)
	UploadDocument(ctx context.Context, driverID int, upload domain.DocumentUpload, client *domain.Client) (*domain.DisputeDocument, error)
	GetDocument(ctx context.Context, driverID int, documentID string, client *domain.Client) (json.RawMessage, error)
	ListDisputes(ctx context.Context, filter domain.DisputeFilter) ([]*domain.Dispute, int64, error)

	PaymentMethods(ctx context.Context, driverID int, client *domain.Client) (json.RawMessage, error)
	PaymentDowntime(ctx context.Context, driverID int, client *domain.Client) (json.RawMessage, error)

	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	ListRefunds(ctx context.Context, filter domain.RefundFilter) ([]*domain.RefundTransaction, int64, error)
	ListQRCodes(ctx context.Context, filter domain.QRCodeFilter) ([]*domain.QRCode, int64, error)
	ListCallbacks(ctx context.Context, transactionID string) ([]*domain.TransactionCallback, error)
}

// DriverRegistry hands out the driver configured under a gateway id.
type DriverRegistry interface {
	Driver(id int) (domain.Driver, error)
	DefaultID() int
}

type DefaultPaymentUsecase struct {
	Drivers      DriverRegistry
	Transactions domain.TransactionRepository
	Refunds      domain.RefundRepository
	QRCodes      domain.QRCodeRepository
	Callbacks    domain.CallbackRepository
	Disputes     domain.DisputeRepository
	Clients      domain.ClientRepository
	Publisher    domain.EventPublisher
	Metrics      *metrics.PaymentMetrics
}

func NewDefaultPaymentUsecase(
	drivers DriverRegistry,
	transactions domain.TransactionRepository,
	refunds domain.RefundRepository,
	qrCodes domain.QRCodeRepository,
	callbacks domain.CallbackRepository,
	disputes domain.DisputeRepository,
	clients domain.ClientRepository,
	publisher domain.EventPublisher,
	paymentMetrics *metrics.PaymentMetrics) *DefaultPaymentUsecase {

	return &DefaultPaymentUsecase{
		Drivers:      drivers,
		Transactions: transactions,
		Refunds:      refunds,
		QRCodes:      qrCodes,
		Callbacks:    callbacks,
		Disputes:     disputes,
		Clients:      clients,
		Publisher:    publisher,
		Metrics:      paymentMetrics,
	}
}

// Authenticate resolves an api key to an active client.
func (uc *DefaultPaymentUsecase) Authenticate(ctx context.Context, apiKey string) (*domain.Client, error) {
	if apiKey == "" {
		return nil, domain.Unauthorized("api key is required")
	}
	client, err := uc.Clients.GetActiveClientByAPIKeyHash(ctx, domain.HashAPIKey(apiKey))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("invalid api key")
		}
		return nil, domain.Internal(err.Error())
	}
	return client, nil
}

// resolveDriver picks the gateway for a request. A client is bound to its
// active mapping for driverID, else to its default mapping. Without a client
// the explicit id or the configured default is used.
func (uc *DefaultPaymentUsecase) resolveDriver(ctx context.Context, client *domain.Client, driverID int) (domain.Driver, int, error) {
	id, err := uc.resolveDriverID(ctx, client, driverID)
	if err != nil {
		return nil, 0, err
	}
	driver, err := uc.Drivers.Driver(id)
	if err != nil {
		return nil, 0, err
	}
	return driver, id, nil
}

func (uc *DefaultPaymentUsecase) resolveDriverID(ctx context.Context, client *domain.Client, driverID int) (int, error) {
	if client == nil {
		if driverID != 0 {
			return driverID, nil
		}
		if id := uc.Drivers.DefaultID(); id != 0 {
			return id, nil
		}
		return 0, domain.NotFound("no default gateway configured")
	}

	if driverID != 0 {
		gw, err := uc.Clients.GetActiveClientGateway(ctx, client.ID, driverID)
		if err == nil {
			return gw.DriverID, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return 0, domain.Internal(err.Error())
		}
	}
	gw, err := uc.Clients.GetDefaultClientGateway(ctx, client.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.NotFound("gateway id provided by client not found")
		}
		return 0, domain.Internal(err.Error())
	}
	return gw.DriverID, nil
}

// driverFor returns the driver that owns an existing transaction.
func (uc *DefaultPaymentUsecase) driverFor(tx *domain.Transaction) (domain.Driver, error) {
	return uc.Drivers.Driver(tx.DriverID)
}

func (uc *DefaultPaymentUsecase) transaction(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := uc.Transactions.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(fmt.Sprintf("Transaction %s not found", id))
		}
		return nil, domain.Internal(err.Error())
	}
	return tx, nil
}

func (uc *DefaultPaymentUsecase) publishTransaction(ctx context.Context, event string, tx *domain.Transaction) {
	if uc.Publisher == nil || tx == nil {
		return
	}
	uc.Publisher.PublishTransaction(ctx, event, tx)
}

func (uc *DefaultPaymentUsecase) publishRefund(ctx context.Context, event string, tx *domain.Transaction, refund *domain.RefundTransaction) {
	if uc.Publisher == nil || refund == nil {
		return
	}
	uc.Publisher.PublishRefund(ctx, event, tx, refund)
}
