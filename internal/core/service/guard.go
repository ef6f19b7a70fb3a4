package service

import (
	"time"

	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/session"
)

// SessionGuard validates inbound tokens against the session table. Every
// privileged operation must pass this check before its effect executes.
type SessionGuard struct {
	Table *session.Table
}

// IsValid reports whether tok names a live session: the entry exists, its
// stored token matches the lookup key, and its expiry is strictly in the
// future. Expired entries are left in place; they simply fail here.
func (g SessionGuard) IsValid(tok string) bool {
	s, ok := g.Table.Get(tok)
	if !ok {
		return false
	}
	return s.Token == tok && s.Expire.After(time.Now())
}

// HasRights reports whether tok names a live session whose rights are at
// least min.
func (g SessionGuard) HasRights(tok string, min domain.Rights) bool {
	if !g.IsValid(tok) {
		return false
	}
	s, ok := g.Table.Get(tok)
	return ok && s.Rights.AtLeast(min)
}
