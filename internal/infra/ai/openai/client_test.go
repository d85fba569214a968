package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rentdoc/internal/domain/ai"
)

func newTestClient(t *testing.T, model string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func TestCompleteJSON(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"readable\":true}"},"finish_reason":"stop"}]}`))
	})

	out, err := c.CompleteJSON(context.Background(), "system", "user")
	require.NoError(t, err)

	assert.Equal(t, `{"readable":true}`, out)
	assert.Equal(t, defaultModel, got.Model)
	require.NotNil(t, got.Seed)
	assert.Equal(t, seed, *got.Seed)
	assert.Equal(t, maxTokens, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Content)
}

func TestCompleteJSONReasoningModel(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestClient(t, "o4-mini", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{}"}}]}`))
	})

	_, err := c.CompleteJSON(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, maxTokens, got.MaxCompletionTokens)
	assert.Zero(t, got.MaxTokens)
}

func TestCompleteJSONQuota(t *testing.T) {
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	})

	_, err := c.CompleteJSON(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestCompleteJSONNoChoices(t *testing.T) {
	c := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.CompleteJSON(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o1-preview"))
	assert.True(t, isReasoningModel("gpt-5-mini"))
	assert.False(t, isReasoningModel("gpt-4o-mini"))
}
