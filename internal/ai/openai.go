package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"resty.dev/v3"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements Gateway against an OpenAI-compatible
// /chat/completions endpoint.
type OpenAIClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
}

func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	// Keep the body readable after SetResult so failures can log it
	client.SetResponseBodyUnlimitedReads(true)
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}

	return &OpenAIClient{
		httpClient: client,
		apiKey:     apiKey,
		model:      model,
	}
}

func (c *OpenAIClient) Close() error {
	return c.httpClient.Close()
}

// Model returns the model name used when a request does not name one.
func (c *OpenAIClient) Model() string {
	return c.model
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (c *OpenAIClient) requestBody(req Request) ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body := ChatCompletionRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: req.System},
			{Role: RoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
	}
	if req.JSON {
		body.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return body
}

// Complete implements Gateway. It makes exactly one HTTP call.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(req.User) == "" {
		return "", ErrEmptyText
	}

	requestBody := c.requestBody(req)
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", &UpstreamError{
			Message: fmt.Sprintf("failed to call chat completions: %v", err),
			Err:     err,
		}
	}
	if response.IsError() {
		return "", &UpstreamError{
			Message:     "chat completions request failed",
			StatusCode:  response.StatusCode(),
			RequestID:   response.Header().Get("X-Request-Id"),
			RawResponse: response.String(),
		}
	}

	responseBody, _ := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", &UpstreamError{
			Message:     "empty response body or choices",
			StatusCode:  response.StatusCode(),
			RequestID:   response.Header().Get("X-Request-Id"),
			RawResponse: response.String(),
		}
	}

	slog.Default().Debug("openai response content",
		"model", requestBody.Model,
		"finishReason", responseBody.Choices[0].FinishReason,
		"totalTokens", responseBody.Usage.TotalTokens,
	)
	return strings.TrimSpace(responseBody.Choices[0].Message.Content), nil
}
