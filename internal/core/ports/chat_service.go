package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

// ChatOutcome is the billed result of one relayed chat call.
type ChatOutcome struct {
	Model    string
	Cost     float64
	Response string
	Usage    Usage
	// Credit is the session balance after the debit.
	Credit     float64
	Diagnostic map[string]string
	DurationMS int64
}

// ChatService relays a chat request for a live session, prices the completed
// call, and debits the session's balance.
type ChatService interface {
	Chat(ctx context.Context, token, model string, messages []ChatMessage, temperature float64) (*ChatOutcome, error)
}

// FlushInput is one pending balance write to the credential store.
type FlushInput struct {
	Identity uuid.UUID
	Credit   float64
	Rights   domain.Rights
}

// BalanceFlusher persists session balances asynchronously. Per-identity
// ordering must be preserved; durability failures are logged, never
// propagated back into the in-memory ledger.
type BalanceFlusher interface {
	Enqueue(in FlushInput)
}
