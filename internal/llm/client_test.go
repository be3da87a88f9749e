package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionBody(content string) string {
	return `{
		"id": "chatcmpl-test",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [
			{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ` + mustJSON(content) + `}}
		],
		"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
	}`
}

func mustJSON(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func TestNewClient_RequiresModelAndKey(t *testing.T) {
	_, err := NewClient(Config{}, nil)
	require.Error(t, err)

	t.Setenv(defaultAPIKeyEnv, "")
	_, err = NewClient(Config{Model: "gpt-4o-mini", APIKeyEnv: "TANDEM_TEST_MISSING_KEY"}, nil)
	require.Error(t, err)
}

func TestClientComplete_SendsInstructionsAndReturnsUsage(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("a plan for the article")))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Instructions: "You are a Planner.",
		Input:        "Plan a post about Artificial Intelligence.",
	})
	require.NoError(t, err)

	assert.Equal(t, "a plan for the article", resp.OutputText)
	assert.Equal(t, int64(12), resp.Usage.PromptTokens)
	assert.Equal(t, int64(7), resp.Usage.CompletionTokens)
	assert.Equal(t, int64(19), resp.Usage.TotalTokens)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	first, ok := messages[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "system", first["role"])
}

func TestClientComplete_EmptyOutputIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("")))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Model: "gpt-4o-mini", BaseURL: srv.URL, APIKey: "k"}, nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), CompletionRequest{Input: "hi"})
	require.Error(t, err)
}
