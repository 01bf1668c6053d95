// Package provider defines the outbound-message and webhook-verification
// contract shared by every messaging channel adapter (§4.1).
package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// InboundMessage is a channel-neutral representation of a received message,
// extracted from a provider's webhook payload by its adapter.
type InboundMessage struct {
	ProviderMessageID string
	FromPhone         string
	ToPhone           string
	Body              string
	SenderName        string
}

// Sender delivers an outbound message through a provider (SMS or chat).
type Sender interface {
	// Name identifies the provider for dealership integration_config lookups,
	// e.g. "sms" or "chat".
	Name() string
	Send(ctx context.Context, fromPhone, toPhone, body string) (providerMessageID string, err error)
}

// WebhookVerifier validates an inbound webhook's signature.
type WebhookVerifier interface {
	VerifySignature(payload []byte, signature string) bool
}

// VerifyHMACSHA256 validates a hex-encoded HMAC-SHA256 signature against
// payload, following the "sha256=<hex>" convention used by Wati/Twilio-style
// webhooks. An empty secret disables verification (local/dev use only).
func VerifyHMACSHA256(secret string, payload []byte, signature string) bool {
	if secret == "" {
		return true
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
