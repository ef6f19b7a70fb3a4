package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/ports"
	"github.com/llmrelay/chat-service/internal/core/session"
)

// ChatService relays chat calls to the LLM backend and keeps the credit
// ledger. Billing happens only after the backend call returns usage counters;
// a failed or cancelled call never debits.
type ChatService struct {
	table   *session.Table
	llm     ports.LLMClient
	flusher ports.BalanceFlusher
	logger  zerolog.Logger
}

func NewChatService(table *session.Table, llm ports.LLMClient, flusher ports.BalanceFlusher, logger zerolog.Logger) *ChatService {
	return &ChatService{table: table, llm: llm, flusher: flusher, logger: logger}
}

// Chat validates the session, performs the backend call outside any lock,
// then debits the session and schedules the balance write. There is no
// pre-call balance check; the balance may go negative.
func (s *ChatService) Chat(ctx context.Context, tok, model string, messages []ports.ChatMessage, temperature float64) (*ports.ChatOutcome, error) {
	guard := SessionGuard{Table: s.table}
	if !guard.IsValid(tok) {
		return nil, domain.ErrInvalidSession
	}

	start := time.Now()
	result, err := s.llm.Invoke(ctx, model, messages, temperature)
	if err != nil {
		return nil, fmt.Errorf("chat backend: %w", err)
	}

	cost, err := Price(result.Model, result.Usage)
	if err != nil {
		return nil, err
	}

	updated, ok := s.table.Debit(tok, cost)
	if !ok {
		s.logger.Error().Str("token_prefix", tokenPrefix(tok)).Msg("validated session missing at debit")
		return nil, domain.ErrSessionInvariant
	}

	s.logger.Info().
		Str("model", result.Model).
		Float64("cost", cost).
		Float64("credit", updated.Credit).
		Int64("prompt_tokens", result.Usage.PromptTokens).
		Int64("completion_tokens", result.Usage.CompletionTokens).
		Msg("chat billed")

	// Durable write is fire-and-forget: failure leaves the cached balance
	// authoritative until the next successful flush.
	s.flusher.Enqueue(ports.FlushInput{
		Identity: updated.Identity,
		Credit:   updated.Credit,
		Rights:   updated.Rights,
	})

	diagnostic := make(map[string]string, len(result.Headers)+1)
	for k, v := range result.Headers {
		diagnostic[k] = v
	}
	diagnostic["timestamp"] = fmt.Sprintf("%d", time.Now().Unix())

	return &ports.ChatOutcome{
		Model:      result.Model,
		Cost:       cost,
		Response:   result.Text,
		Usage:      result.Usage,
		Credit:     updated.Credit,
		Diagnostic: diagnostic,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
