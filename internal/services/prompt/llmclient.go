package prompt

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 512
)

// messagesClient is the subset of the Anthropic SDK used here, grounded on
// the teacher-pack's goa-ai anthropic adapter's MessagesClient seam — kept
// narrow so tests can substitute a fake without a live API key.
type messagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Client implements Completer on top of the Anthropic Messages API, with
// the determinism controls required by §4.7: low temperature, bounded
// max tokens.
type Client struct {
	msg   messagesClient
	model string
}

// NewClient builds a Client from an API key and model identifier.
func NewClient(apiKey, model string) *Client {
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return &Client{msg: &ac.Messages, model: model}
}

// Complete issues a single non-streaming Messages.New call with the
// system/user prompt pair and returns the concatenated text content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   defaultMaxTokens,
		Temperature: sdk.Float(defaultTemperature),
		System:      []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userPrompt)),
		},
	}

	msg, err := c.msg.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}

	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out, nil
}
