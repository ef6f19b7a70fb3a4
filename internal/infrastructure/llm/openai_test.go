package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/llmrelay/chat-service/internal/core/ports"
)

func TestOpenAIClient_Invoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4" || len(req.Messages) != 1 {
			t.Errorf("request = %+v", req)
		}

		w.Header().Set("x-request-id", "req_123")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-4-0613",
			"choices": [{"message": {"role": "assistant", "content": "hello there"}}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150}
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("test-key", WithBaseURL(srv.URL))
	result, err := client.Invoke(context.Background(), "gpt-4",
		[]ports.ChatMessage{{Role: "user", Content: "hi"}}, 0.7)
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	if result.Model != "gpt-4-0613" {
		t.Errorf("model = %q, want gpt-4-0613", result.Model)
	}
	if result.Text != "hello there" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Usage.PromptTokens != 100 || result.Usage.CompletionTokens != 50 {
		t.Errorf("usage = %+v", result.Usage)
	}
	if result.Headers["x-request-id"] != "req_123" {
		t.Errorf("headers = %v, want x-request-id passed through", result.Headers)
	}
}

func TestOpenAIClient_Invoke_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.Invoke(context.Background(), "gpt-4",
		[]ports.ChatMessage{{Role: "user", Content: "hi"}}, 0)
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestOpenAIClient_Invoke_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model": "gpt-4", "choices": [], "usage": {}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient("key", WithBaseURL(srv.URL))
	if _, err := client.Invoke(context.Background(), "gpt-4", nil, 0); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIClient_Invoke_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewOpenAIClient("key", WithBaseURL(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Invoke(ctx, "gpt-4", nil, 0); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
