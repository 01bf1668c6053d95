// Package smsprovider adapts the gateway's Sender interface to Twilio SMS,
// grounded on the teacher's pkg/twilio client construction (twilio.NewRestClientWithParams).
package smsprovider

import (
	"context"
	"fmt"

	"github.com/MaqroSolutions/Dealerships-sub000/pkg/logger"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// Client sends and verifies SMS traffic through Twilio.
type Client struct {
	rest          *twilio.RestClient
	webhookSecret string
}

// NewClient builds a Twilio-backed SMS provider client.
func NewClient(accountSID, authToken, webhookSecret string) *Client {
	return &Client{
		rest:          twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		webhookSecret: webhookSecret,
	}
}

// Name identifies this provider for dealership integration_config lookups.
func (c *Client) Name() string { return "sms" }

// Send delivers body from fromPhone to toPhone via Twilio's Programmable
// Messaging API, returning Twilio's message SID.
func (c *Client) Send(ctx context.Context, fromPhone, toPhone, body string) (string, error) {
	params := &api.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(fromPhone)
	params.SetBody(body)

	resp, err := c.rest.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS via twilio: %w", err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned no message sid")
	}

	logger.Base().Info("sms sent", zap.String("to", toPhone), zap.String("sid", *resp.Sid))
	return *resp.Sid, nil
}
