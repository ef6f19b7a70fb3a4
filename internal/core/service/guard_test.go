package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/session"
)

func guardSession(tok string, expire time.Time, rights domain.Rights) session.Session {
	return session.Session{
		Identity: uuid.New(),
		Token:    tok,
		Expire:   expire,
		Credit:   1,
		Rights:   rights,
	}
}

func TestSessionGuard_IsValid(t *testing.T) {
	table := session.NewTable()
	guard := SessionGuard{Table: table}

	table.Insert("live", guardSession("live", time.Now().Add(time.Hour), domain.Chat))
	table.Insert("expired", guardSession("expired", time.Now().Add(-time.Minute), domain.Chat))
	// Self-check mismatch: stored token differs from the lookup key.
	table.Insert("mismatch", guardSession("other", time.Now().Add(time.Hour), domain.Chat))

	tests := []struct {
		name string
		tok  string
		want bool
	}{
		{"Live", "live", true},
		{"Unknown", "unknown", false},
		{"ExpiredStillInTable", "expired", false},
		{"TokenSelfCheckMismatch", "mismatch", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guard.IsValid(tt.tok); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.tok, got, tt.want)
			}
		})
	}
}

func TestSessionGuard_HasRights(t *testing.T) {
	table := session.NewTable()
	guard := SessionGuard{Table: table}

	table.Insert("chat", guardSession("chat", time.Now().Add(time.Hour), domain.Chat))
	table.Insert("admin", guardSession("admin", time.Now().Add(time.Hour), domain.Admin))
	table.Insert("stale-admin", guardSession("stale-admin", time.Now().Add(-time.Hour), domain.Admin))

	if !guard.HasRights("chat", domain.Chat) {
		t.Error("chat session should satisfy Chat")
	}
	if guard.HasRights("chat", domain.Admin) {
		t.Error("chat session must not satisfy Admin")
	}
	if !guard.HasRights("admin", domain.Chat) {
		t.Error("admin session should satisfy Chat")
	}
	if guard.HasRights("stale-admin", domain.Admin) {
		t.Error("expired session must not satisfy any rights check")
	}
	if guard.HasRights("unknown", domain.NoRights) {
		t.Error("unknown token must fail the rights check")
	}
}
