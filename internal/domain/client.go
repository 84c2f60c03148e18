package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Client is an internal tenant on whose behalf payments are initiated.
type Client struct {
	ID          string
	Name        string
	CallbackURL string
	APIKeyHash  string
	Active      bool
	CreatedAt   time.Time
}

// ClientGateway maps a client to a configured gateway id.
type ClientGateway struct {
	ID        string
	ClientID  string
	DriverID  int
	Default   bool
	Active    bool
	CreatedAt time.Time
}

// HashAPIKey returns the stored form of a client api key.
func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

type ClientRepository interface {
	CreateClient(ctx context.Context, client *Client) error
	CreateClientGateway(ctx context.Context, gw *ClientGateway) error
	GetClientByID(ctx context.Context, id string) (*Client, error)
	GetActiveClientByAPIKeyHash(ctx context.Context, hash string) (*Client, error)
	GetActiveClientGateway(ctx context.Context, clientID string, driverID int) (*ClientGateway, error)
	GetDefaultClientGateway(ctx context.Context, clientID string) (*ClientGateway, error)
}
