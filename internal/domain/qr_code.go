package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type QRStatus string

const (
	QRPending QRStatus = "pending"
	QRActive  QRStatus = "active"
	QRClosed  QRStatus = "closed"
	QRFailed  QRStatus = "failed"
)

type QRUsage string

const (
	QRSingleUse   QRUsage = "single_use"
	QRMultipleUse QRUsage = "multiple_use"
)

type QRType string

const (
	QRTypeUPI    QRType = "upi_qr"
	QRTypeBharat QRType = "bharat_qr"
)

// QRCode is a scannable payment target. It is stored as pending before the
// gateway is called and receives the gateway qr id afterwards.
type QRCode struct {
	ID            string
	QRID          string
	Usage         QRUsage
	Type          QRType
	PaymentAmount decimal.Decimal
	IsFixedAmount bool
	APIRequest    json.RawMessage
	APIResponse   json.RawMessage
	Notes         map[string]any
	ImageURL      string
	CloseBy       *time.Time
	ClosedAt      *time.Time
	CloseReason   string
	Status        QRStatus
	DriverID      int
	StoreID       string
	SourceID      string
	ClientID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type QRCodeFilter struct {
	StoreID string
	Status  *QRStatus
	Page    int
	Limit   int
}

type QRCodeRepository interface {
	CreateQRCode(ctx context.Context, qr *QRCode) error
	SaveQRCode(ctx context.Context, qr *QRCode) error
	GetQRCodeByID(ctx context.Context, id string) (*QRCode, error)
	GetQRCodeByQRID(ctx context.Context, qrID string) (*QRCode, error)
	ListQRCodes(ctx context.Context, filter QRCodeFilter) ([]*QRCode, int64, error)
}
