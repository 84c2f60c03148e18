package domain

import "strings"

// Webhook is the normalized envelope of one inbound gateway callback.
type Webhook struct {
	Gateway  string
	DriverID int
	// CallbackType is the optional hint from the route; empty means infer
	// from the payload.
	CallbackType string
	RawBody      []byte
	Headers      map[string]string
	Form         map[string]string
}

// Header looks a header up case-insensitively.
func (w Webhook) Header(name string) string {
	if w.Headers == nil {
		return ""
	}
	if v, ok := w.Headers[name]; ok {
		return v
	}
	return w.Headers[strings.ToLower(name)]
}

// WebhookKind is the classification made before any dispatch.
type WebhookKind int

const (
	WebhookMalformed WebhookKind = iota
	WebhookPayment
	WebhookQR
)

func (k WebhookKind) String() string {
	switch k {
	case WebhookPayment:
		return "payment"
	case WebhookQR:
		return "qr"
	default:
		return "malformed"
	}
}

// WebhookAck is the only answer a gateway ever receives.
type WebhookAck struct {
	Success bool `json:"success"`
}

func Ack() WebhookAck {
	return WebhookAck{Success: true}
}
