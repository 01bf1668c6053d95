package smsprovider

import (
	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider"
)

// InboundWebhook is the subset of Twilio's inbound-SMS webhook form fields
// the gateway cares about.
type InboundWebhook struct {
	MessageSid string
	From       string
	To         string
	Body       string
}

// ToInboundMessage converts the raw webhook fields into the channel-neutral shape.
func (w InboundWebhook) ToInboundMessage() provider.InboundMessage {
	return provider.InboundMessage{
		ProviderMessageID: w.MessageSid,
		FromPhone:         w.From,
		ToPhone:           w.To,
		Body:              w.Body,
	}
}

// VerifySignature validates the raw webhook body against the shared secret.
// §4.1/§6 mandate HMAC-SHA256 over the exact raw request body for both
// provider integrations; Twilio's own X-Twilio-Signature scheme (computed
// over the callback URL and sorted form parameters) is deliberately not
// used here so both providers share one verification path.
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	return provider.VerifyHMACSHA256(c.webhookSecret, payload, signature)
}
