package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type QRCodeModel struct {
	ID            string          `gorm:"primaryKey"`
	QRID          *string         `gorm:"column:qr_id;uniqueIndex"`
	Usage         string          `gorm:"not null;default:multiple_use"`
	Type          string          `gorm:"not null;default:upi_qr"`
	PaymentAmount decimal.Decimal `gorm:"type:numeric(12,2)"`
	IsFixedAmount bool
	APIRequest    datatypes.JSON
	APIResponse   datatypes.JSON
	Notes         datatypes.JSONMap
	ImageURL      string
	CloseBy       *time.Time
	ClosedAt      *time.Time
	CloseReason   string
	Status        string `gorm:"not null;default:active;index"`
	Driver        int
	StoreID       string `gorm:"index"`
	SourceID      string
	ClientID      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (QRCodeModel) TableName() string { return "qr_codes" }

type PaymentLinkModel struct {
	ID               string `gorm:"primaryKey"`
	TransactionID    string `gorm:"type:varchar(26);not null;uniqueIndex"`
	PlinkID          string `gorm:"index"`
	Status           string `gorm:"not null;default:issued"`
	APIResponse      datatypes.JSON
	UpdateCount      int `gorm:"not null;default:1"`
	NotifySMSCount   int `gorm:"column:notify_sms_count;not null;default:1"`
	NotifyEmailCount int `gorm:"not null;default:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (PaymentLinkModel) TableName() string { return "payment_links" }
