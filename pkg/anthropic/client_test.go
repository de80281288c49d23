package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/resilience"
)

func messageBody(text string) map[string]any {
	return map[string]any{
		"id":   "msg_test_001",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 30},
	}
}

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int64  `json:"max_tokens"`
			System    []struct {
				Text string `json:"text"`
			} `json:"system"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-haiku-4-5-20251001", body.Model)
		assert.Equal(t, int64(256), body.MaxTokens)
		require.Len(t, body.System, 1)
		assert.Equal(t, "be brief", body.System[0].Text)
		// Leading assistant welcome is dropped.
		require.Len(t, body.Messages, 3)
		assert.Equal(t, "user", body.Messages[0].Role)
		assert.Equal(t, "assistant", body.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageBody("Load is nominal.")) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient("test-key", WithBaseURL(ts.URL), WithMaxTokens(256))
	reply, err := c.Generate(context.Background(), "be brief", []Message{
		{Role: RoleAssistant, Content: "Hello!"},
		{Role: RoleUser, Content: "Status?"},
		{Role: RoleAssistant, Content: "Which region?"},
		{Role: RoleUser, Content: "North"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Load is nominal.", reply.Text)
	assert.Equal(t, int64(120), reply.Usage.InputTokens)
	assert.Equal(t, "end_turn", reply.StopReason)
}

func TestGenerate_EmptyText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageBody("  ")) //nolint:errcheck
	}))
	defer ts.Close()

	_, err := NewClient("k", WithBaseURL(ts.URL)).Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	assert.True(t, errors.Is(err, resilience.ErrEmptyResponse))
}

func TestGenerate_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer ts.Close()

	_, err := NewClient("k", WithBaseURL(ts.URL)).Generate(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	require.Error(t, err)
	var ue *resilience.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
}

func TestGenerate_NoUserMessage(t *testing.T) {
	_, err := NewClient("k", WithBaseURL("http://127.0.0.1:0")).Generate(context.Background(), "", []Message{{Role: RoleAssistant, Content: "Hello!"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user message")
}

func TestToSDKMessages(t *testing.T) {
	assert.Empty(t, toSDKMessages(nil))
	out := toSDKMessages([]Message{{Role: RoleUser, Content: "a"}, {Role: "model", Content: "b"}})
	require.Len(t, out, 2)
	// Unknown roles are treated as user.
	assert.Equal(t, "user", string(out[1].Role))
}

func TestEstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 6.0, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown"))
}
