package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionModel struct {
	ID               string          `gorm:"primaryKey;type:varchar(26)"`
	SourceID         string          `gorm:"type:varchar(64);not null;index:idx_transaction_key,priority:1"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentType      string          `gorm:"not null;index:idx_transaction_key,priority:2"`
	StoreType        *string
	StoreID          string          `gorm:"index:idx_transaction_key,priority:3"`
	Driver           int             `gorm:"not null"`
	GatewayOrderID   *string         `gorm:"index"`
	GatewayPaymentID *string         `gorm:"uniqueIndex:idx_transactions_gateway_payment_id,where:gateway_payment_id IS NOT NULL"`
	Status           string          `gorm:"not null;default:pending;index"`
	APIRequest       datatypes.JSON
	APIResponse      datatypes.JSON
	CallbackResponse datatypes.JSON
	APIStatus        *int16
	ClientID         *string `gorm:"index:idx_transaction_key,priority:4"`
	AdditionalInfo   datatypes.JSONMap
	APIVersion       string
	ClientVersion    string
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time
}

func (TransactionModel) TableName() string { return "transactions" }

type RefundTransactionModel struct {
	ID               string          `gorm:"primaryKey;type:varchar(26)"`
	TransactionID    string          `gorm:"type:varchar(26);not null;index"`
	RefundID         *string         `gorm:"uniqueIndex"`
	Status           string          `gorm:"not null;default:pending;index"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	APIRequest       datatypes.JSON
	APIResponse      datatypes.JSON
	CallbackResponse datatypes.JSON
	APIStatus        *int16
	AdditionalInfo   datatypes.JSONMap
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RefundTransactionModel) TableName() string { return "refund_transactions" }
