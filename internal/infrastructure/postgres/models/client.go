package models

import "time"

type ClientModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Name        string `gorm:"not null"`
	CallbackURL string
	APIKey      string `gorm:"column:api_key;uniqueIndex;not null"`
	Active      bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ClientModel) TableName() string { return "clients" }

type ClientGatewayModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	ClientID  string `gorm:"type:uuid;not null;index"`
	DriverID  int    `gorm:"not null"`
	Default   bool   `gorm:"not null;default:false"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ClientGatewayModel) TableName() string { return "client_gateways" }
