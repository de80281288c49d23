package gemini

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

func TestGenerateContent_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 2)
		assert.Equal(t, RoleModel, req.Contents[0].Role)
		assert.Equal(t, "What is FedGrid?", req.Contents[1].Parts[0].Text)
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "sys", req.SystemInstruction.Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"A federated grid."}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":4}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL+"/"))
	resp, err := c.GenerateContent(context.Background(), Request{
		Contents: []Content{
			{Role: RoleModel, Parts: []Part{{Text: "Hello!"}}},
			{Role: RoleUser, Parts: []Part{{Text: "What is FedGrid?"}}},
		},
		SystemInstruction: &Content{Parts: []Part{{Text: "sys"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "A federated grid.", resp.Text())
	assert.Equal(t, 12, resp.UsageMetadata.PromptTokenCount)
}

func TestGenerateContent_CustomModel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL), WithModel("gemini-2.0-flash"), WithHTTPClient(srv.Client())).
		GenerateContent(context.Background(), Request{})
	require.NoError(t, err)
}

func TestGenerateContent_Empty(t *testing.T) {
	t.Parallel()

	bodies := []string{
		`{}`,
		`{"candidates":[]}`,
		`{"candidates":[{"finishReason":"SAFETY"}]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		_, err := NewClient("k", WithBaseURL(srv.URL)).GenerateContent(context.Background(), Request{})
		srv.Close()
		assert.True(t, errors.Is(err, resilience.ErrEmptyResponse), body)
	}
}

func TestGenerateContent_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", WithBaseURL(srv.URL)).GenerateContent(context.Background(), Request{})
	var ue *resilience.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Contains(t, ue.Body, "API key not valid")
}

func TestGenerateContent_MalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithBaseURL(srv.URL)).GenerateContent(context.Background(), Request{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, resilience.ErrEmptyResponse))
	assert.Contains(t, err.Error(), "decode response")
}

func TestGenerateContent_TransportErrorHidesKey(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := NewClient("secret-key", WithBaseURL(base)).GenerateContent(context.Background(), Request{})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}

func TestResponseText_Nil(t *testing.T) {
	var r *Response
	assert.Empty(t, r.Text())
}
