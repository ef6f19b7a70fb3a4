package ports

import "context"

// ChatMessage is one turn of a conversation sent to the LLM backend.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// Usage carries the metered unit counts reported by the backend.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// LLMResult is the black-box outcome of one backend call.
type LLMResult struct {
	// Model is the model name the backend reports, which may be a more
	// specific revision than the one requested.
	Model string
	Usage Usage
	Text  string
	// Headers holds selected response headers (rate-limit state and the
	// like) passed through for diagnostics.
	Headers map[string]string
}

// LLMClient invokes the metered LLM backend. Implementations carry their own
// credentials and retry policy; callers must never hold the session table
// lock across an Invoke.
type LLMClient interface {
	Invoke(ctx context.Context, model string, messages []ChatMessage, temperature float64) (*LLMResult, error)
}
