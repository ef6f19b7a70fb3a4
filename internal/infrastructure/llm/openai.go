// Package llm adapts the metered LLM backend. The backend is a black box to
// the core: it takes a conversation, returns usage counters and text, and is
// always called without any service lock held.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/llmrelay/chat-service/internal/core/ports"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 90 * time.Second
)

// passthroughHeaders are the upstream response headers surfaced to callers as
// diagnostic info.
var passthroughHeaders = []string{
	"x-ratelimit-remaining-requests",
	"x-ratelimit-remaining-tokens",
	"x-request-id",
	"openai-processing-ms",
}

// OpenAIClient calls the OpenAI chat-completions API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures an OpenAIClient.
type Option func(*OpenAIClient)

// WithBaseURL overrides the upstream URL, chiefly for tests.
func WithBaseURL(u string) Option {
	return func(c *OpenAIClient) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client, e.g. to adjust timeouts.
func WithHTTPClient(h *http.Client) Option {
	return func(c *OpenAIClient) { c.http = h }
}

func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Invoke sends one chat-completions request. The context controls
// cancellation; a cancelled request returns an error and nothing is billed by
// the caller.
func (c *OpenAIClient) Invoke(ctx context.Context, model string, messages []ports.ChatMessage, temperature float64) (*ports.LLMResult, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode chat response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("upstream returned no choices")
	}

	headers := make(map[string]string, len(passthroughHeaders))
	for _, h := range passthroughHeaders {
		if v := resp.Header.Get(h); v != "" {
			headers[h] = v
		}
	}

	return &ports.LLMResult{
		Model: parsed.Model,
		Usage: ports.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
		Text:    parsed.Choices[0].Message.Content,
		Headers: headers,
	}, nil
}
