package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FranksOps/rankrocket/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		if seen != nil {
			require.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

const okCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Call us for a tune-up.  "}}],
  "usage": {"prompt_tokens": 20, "completion_tokens": 6, "total_tokens": 26}
}`

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(Config{}, nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestComplete(t *testing.T) {
	var seen chatRequest
	ts := chatServer(t, http.StatusOK, okCompletion, &seen)
	rec := metrics.New()

	c, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: ts.URL + "/v1/", Metrics: rec}, nil)
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), Prompt{Purpose: "faq_answer", System: "sys", User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, "Call us for a tune-up.", out)

	assert.Equal(t, DefaultModel, seen.Model)
	assert.InDelta(t, DefaultTemperature, seen.Temperature, 0.0001)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, "sys", seen.Messages[0].Content)
	assert.Equal(t, "user", seen.Messages[1].Role)
	assert.Equal(t, "usr", seen.Messages[1].Content)

	n, err := testutil.GatherAndCount(rec.Registry(), "rankrocket_llm_completions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestComplete_NoSystemMessage(t *testing.T) {
	var seen chatRequest
	ts := chatServer(t, http.StatusOK, okCompletion, &seen)

	c, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: ts.URL + "/v1/", Model: "gpt-4o-mini"}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Prompt{User: "only user"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
}

func TestComplete_EmptyChoices(t *testing.T) {
	ts := chatServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`, nil)

	c, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: ts.URL + "/v1/"}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Prompt{User: "q"})
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestComplete_APIError(t *testing.T) {
	ts := chatServer(t, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`, nil)

	c, err := NewOpenAI(Config{APIKey: "sk-test", BaseURL: ts.URL + "/v1/"}, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), Prompt{User: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion")
}
