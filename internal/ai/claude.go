package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeClient implements Gateway using the Anthropic Messages API.
type ClaudeClient struct {
	client    *anthropic.Client
	apiKey    string
	model     string
	maxTokens int64
}

// NewClaudeClient creates a new Claude API client. An empty apiKey is
// accepted; Complete then reports ErrNotConfigured.
func NewClaudeClient(apiKey, model string, maxTokens int64, baseURL string) *ClaudeClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_5_20250929)
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &ClaudeClient{
		client:    &client,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete implements Gateway.
func (c *ClaudeClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(req.User) == "" {
		return "", ErrEmptyText
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{
				Message:     apiErr.Error(),
				StatusCode:  apiErr.StatusCode,
				RequestID:   apiErr.RequestID,
				RawResponse: apiErr.RawJSON(),
				Err:         err,
			}
		}
		return "", &UpstreamError{
			Message: fmt.Sprintf("failed to call Claude API: %v", err),
			Err:     err,
		}
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", &UpstreamError{
			Message:    "response contained no text content",
			StatusCode: 200,
			RequestID:  message.ID,
		}
	}

	return strings.TrimSpace(b.String()), nil
}
