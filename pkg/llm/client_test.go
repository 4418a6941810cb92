package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

func TestOpenAICompleteWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "plan my day", req.Messages[1].Content)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[]"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL+"/v1", "gpt-4o", "sk-test")
	text, err := client.Complete(context.Background(), Request{System: "you are a planner", User: "plan my day"})
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
}

func TestAnthropicCompleteWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "you are a planner", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Write([]byte(`{"content":[{"type":"text","text":"schedule text"}]}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(srv.URL+"/v1", "claude-sonnet-4-20250514", "sk-ant")
	text, err := client.Complete(context.Background(), Request{System: "you are a planner", User: "plan my day"})
	require.NoError(t, err)
	assert.Equal(t, "schedule text", text)
}

func TestGeminiCompleteWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "you are a planner")
		assert.Contains(t, req.Contents[0].Parts[0].Text, "plan my day")

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"gemini plan"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(srv.URL+"/v1beta", "gemini-pro", "g-key")
	text, err := client.Complete(context.Background(), Request{System: "you are a planner", User: "plan my day"})
	require.NoError(t, err)
	assert.Equal(t, "gemini plan", text)
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  errs.Code
		retryable bool
	}{
		{"unauthorized is permanent", http.StatusUnauthorized, errs.CodeLLMPermanent, false},
		{"bad request is permanent", http.StatusBadRequest, errs.CodeLLMPermanent, false},
		{"rate limit is transient", http.StatusTooManyRequests, errs.CodeLLMTransient, true},
		{"server error is transient", http.StatusBadGateway, errs.CodeLLMTransient, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewOpenAIClient(srv.URL, "gpt-4o", "sk-test")
			_, err := client.Complete(context.Background(), Request{User: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errs.CodeOf(err))
			assert.Equal(t, tt.retryable, errs.IsRetryable(err))
		})
	}
}

func TestCompleteConnectionFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewOpenAIClient(srv.URL, "gpt-4o", "sk-test")
	_, err := client.Complete(context.Background(), Request{User: "hi"})
	assert.True(t, errs.IsRetryable(err))
}
