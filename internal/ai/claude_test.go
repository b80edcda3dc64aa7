package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeClient_Complete(t *testing.T) {
	tests := []struct {
		name              string
		apiKey            string
		request           Request
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want      string
		wantErr   error
		wantUp    bool
		wantCalls int32
	}{
		{
			name:    "success",
			apiKey:  "ant-key",
			request: Request{System: "Translate to fr", User: "hello", Temperature: 0.3},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/messages", r.URL.Path)
				assert.Equal(t, "ant-key", r.Header.Get("X-Api-Key"))

				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "claude-test", body["model"])
				assert.InDelta(t, 0.3, body["temperature"], 1e-9)
				system, ok := body["system"].([]any)
				require.True(t, ok)
				require.Len(t, system, 1)
				assert.Equal(t, "Translate to fr", system[0].(map[string]any)["text"])

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"id": "msg_01",
					"type": "message",
					"role": "assistant",
					"model": "claude-test",
					"content": [{"type": "text", "text": "  bonjour \n"}],
					"stop_reason": "end_turn",
					"usage": {"input_tokens": 10, "output_tokens": 2}
				}`))
			},
			want:      "bonjour",
			wantCalls: 1,
		},
		{
			name:    "missing key makes no call",
			request: Request{User: "hello"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				t.Error("unexpected request")
			},
			wantErr: ErrNotConfigured,
		},
		{
			name:    "blank text makes no call",
			apiKey:  "ant-key",
			request: Request{User: " \t"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				t.Error("unexpected request")
			},
			wantErr: ErrEmptyText,
		},
		{
			name:    "server error is not retried",
			apiKey:  "ant-key",
			request: Request{User: "hello"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			},
			wantUp:    true,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := NewClaudeClient(tt.apiKey, "claude-test", 256, server.URL)
			got, err := client.Complete(context.Background(), tt.request)

			assert.Equal(t, tt.wantCalls, calls.Load())
			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			case tt.wantUp:
				require.Error(t, err)
				assert.True(t, IsUpstreamError(err))
				var upErr *UpstreamError
				require.ErrorAs(t, err, &upErr)
				assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
