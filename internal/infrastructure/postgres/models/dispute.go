package models

import (
	"time"

	"gorm.io/datatypes"
)

type DisputeModel struct {
	ID                string `gorm:"primaryKey"`
	DisputeID         string `gorm:"uniqueIndex;not null"`
	Entity            string
	PaymentID         string `gorm:"index"`
	Amount            int64
	Currency          string
	Comments          string
	GatewayDisputeID  string
	AmountDeducted    int64
	ReasonCode        string
	RespondBy         *time.Time
	Status            string `gorm:"index"`
	Phase             string
	DriverCreatedAt   *time.Time
	Driver            int
	DisputeEvidenceID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (DisputeModel) TableName() string { return "disputes" }

type DisputeEvidenceModel struct {
	ID        string `gorm:"primaryKey"`
	DisputeID string `gorm:"index"`
	Amount    int64
	Summary   string
	// Proofs holds the fixed proof slots keyed by slot name.
	Proofs      datatypes.JSONType[map[string][]string]
	Others      datatypes.JSON
	SubmittedAt *time.Time
	CreatedAt   time.Time
}

func (DisputeEvidenceModel) TableName() string { return "dispute_evidences" }

type DisputeDocumentModel struct {
	ID                string  `gorm:"primaryKey"`
	DisputeEvidenceID *string `gorm:"index"`
	RzpCreatedAt      *time.Time
	DisplayName       string
	Entity            string
	DocumentID        string `gorm:"uniqueIndex"`
	MimeType          string
	Size              int64
	URL               string
	CreatedAt         time.Time
}

func (DisputeDocumentModel) TableName() string { return "dispute_documents" }
