package ai

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=gateway.go -destination=../mocks/ai/mock_gateway.go -package=mock_ai

// Gateway sends one chat-completion style request to a hosted model and
// returns the text of the first completion.
type Gateway interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single system + user exchange. Model falls back to the
// client's configured model when empty.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
	// JSON asks the provider to reply with a JSON object.
	JSON bool
}

var (
	// ErrNotConfigured is returned before any network call when no API key is set.
	ErrNotConfigured = errors.New("API key not configured")
	ErrEmptyText     = errors.New("text is required")
)

// UpstreamError represents a failed or unusable reply from the model API.
type UpstreamError struct {
	Message     string
	StatusCode  int
	RequestID   string
	RawResponse string
	Err         error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("AI API error (%d): %s", e.StatusCode, e.Message)
	if e.RequestID != "" {
		msg += fmt.Sprintf("\n  request-id: %s", e.RequestID)
	}
	if e.RawResponse != "" {
		msg += fmt.Sprintf("\n  raw: %s", e.RawResponse)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError checks if an error is an UpstreamError
func IsUpstreamError(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}
