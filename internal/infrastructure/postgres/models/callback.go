package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionCallbackModel rows are insert-only; transaction_id has no
// foreign key because deferred rows precede their transaction.
type TransactionCallbackModel struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	TransactionID *string `gorm:"type:varchar(26);index"`
	Linkage       string  `gorm:"not null;default:linked"`
	Callback      datatypes.JSON
	Event         string
	Type          string `gorm:"not null;default:payment"`
	Driver        int
	CreatedAt     time.Time
}

func (TransactionCallbackModel) TableName() string { return "transaction_callbacks" }

type TransactionCommunicationModel struct {
	ID                 string `gorm:"primaryKey;type:varchar(26)"`
	TransactionID      string `gorm:"type:varchar(26);not null;uniqueIndex:idx_communication_event"`
	CommunicationCount int    `gorm:"not null;default:0;index"`
	Event              string `gorm:"not null;uniqueIndex:idx_communication_event"`
	Status             string `gorm:"not null;default:pending;index"`
	Error              string
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
}

func (TransactionCommunicationModel) TableName() string { return "transaction_communications" }
