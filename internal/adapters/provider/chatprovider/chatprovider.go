// Package chatprovider adapts the gateway's Sender interface to a webhook-driven
// chat channel, grounded on the teacher's internal/adapters/http.WatiClient
// (BaseURL + API key HTTP client, JSON request/response, HMAC webhook signature).
package chatprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MaqroSolutions/Dealerships-sub000/internal/adapters/provider"
	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"go.uber.org/zap"
)

// Client sends and verifies chat-channel traffic through a webhook-driven
// messaging API (e.g. WhatsApp Business-style providers).
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
}

// NewClient builds a chat provider client.
func NewClient(baseURL, apiKey, webhookSecret string) *Client {
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies this provider for dealership integration_config lookups.
func (c *Client) Name() string { return "chat" }

type sendMessageRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

// Send posts a text message to the provider's send-message endpoint.
func (c *Client) Send(ctx context.Context, fromPhone, toPhone, body string) (string, error) {
	reqBody, err := json.Marshal(sendMessageRequest{To: toPhone, From: fromPhone, Text: body})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat provider request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/messages", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create chat provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send chat message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat provider response: %w", err)
	}

	var parsed sendMessageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat provider response: %w", err)
	}
	if parsed.Code != 0 && parsed.Code != http.StatusOK {
		return "", fmt.Errorf("chat provider error: code=%d message=%s", parsed.Code, parsed.Message)
	}

	logger.Base().Info("chat message sent", zap.String("to", toPhone), zap.String("message_id", parsed.MessageID))
	return parsed.MessageID, nil
}

// VerifySignature validates the provider's webhook signature header.
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	return provider.VerifyHMACSHA256(c.webhookSecret, payload, signature)
}

// InboundPayload is the webhook shape posted for an inbound chat message.
type InboundPayload struct {
	MessageID string `json:"messageId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	Name      string `json:"senderName,omitempty"`
}

// ParseInbound decodes a webhook body into the channel-neutral message shape.
func ParseInbound(body []byte) (provider.InboundMessage, error) {
	var p InboundPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return provider.InboundMessage{}, fmt.Errorf("failed to parse chat webhook payload: %w", err)
	}
	return provider.InboundMessage{
		ProviderMessageID: p.MessageID,
		FromPhone:         p.From,
		ToPhone:           p.To,
		Body:              p.Text,
		SenderName:        p.Name,
	}, nil
}
