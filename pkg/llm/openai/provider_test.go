package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-recommendation-be/pkg/llm"
)

func TestOpenAIChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body["model"])
		messages, ok := body["messages"].([]interface{})
		require.True(t, ok)
		assert.Len(t, messages, 3)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Try the Volt X."}}]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider("sk-test", "", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	reply, err := provider.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "You recommend products."},
		{Role: llm.RoleUser, Content: "scooter"},
		{Role: llm.RoleAssistant, Content: "Which budget?"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Try the Volt X.", reply)
}

func TestOpenAIChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider("sk-test", "", option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = provider.Generate(context.Background(), "scooter")
	assert.Error(t, err)
}
