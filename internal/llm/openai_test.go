package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerate(t *testing.T) {
	var body struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Why, hello there.  "}}]
		}`))
	}))
	defer srv.Close()

	backend, err := NewOpenAI("sk-test", srv.URL, "")
	require.NoError(t, err)

	got, err := backend.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a jester."},
		{Role: RoleUser, Content: "Philosopher: Hello."},
		{Role: RoleAssistant, Content: "Hi!"},
	}, Params{Temperature: 1.0, MaxTokens: 80})
	require.NoError(t, err)

	assert.Equal(t, "Why, hello there.", got)
	assert.Equal(t, DefaultOpenAIModel, body.Model)
	assert.Equal(t, 1.0, body.Temperature)
	assert.Equal(t, 80, body.MaxTokens)
	require.Len(t, body.Messages, 3)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "user", body.Messages[1].Role)
	assert.Equal(t, "assistant", body.Messages[2].Role)
}

func TestOpenAIGenerateRequiresMessages(t *testing.T) {
	backend, err := NewOpenAI("sk-test", "", "")
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), nil, Params{})
	assert.Error(t, err)
}
