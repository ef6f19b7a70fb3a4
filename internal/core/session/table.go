// Package session holds the in-process table of live sessions. The table is
// the only shared mutable state in the service; every read and write goes
// through its synchronized accessors, and the lock is never held across an
// outbound LLM call.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

// Session is the in-memory record of an authenticated principal. Credit is
// the authoritative balance for the session's lifetime; the durable record
// may lag until the next flush. Token duplicates the table key as a
// self-check, never as an independent source of truth.
type Session struct {
	Identity uuid.UUID
	Token    string
	Expire   time.Time
	Credit   float64
	Rights   domain.Rights
}

// CreditSnapshot is a diagnostic view of one session's balance. Only a token
// prefix is exposed so snapshots can be logged safely.
type CreditSnapshot struct {
	TokenPrefix string
	Credit      float64
}

// Table maps token strings to live sessions. Safe for concurrent use.
type Table struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewTable() *Table {
	return &Table{sessions: make(map[string]Session)}
}

// Insert installs a session under its token. Token collisions are
// cryptographically negligible and not specially handled.
func (t *Table) Insert(tok string, s Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[tok] = s
}

// Get returns a copy of the session for tok.
func (t *Table) Get(tok string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[tok]
	return s, ok
}

// Debit atomically subtracts cost from the session's balance and returns the
// updated session. The balance may go negative; admission control is not this
// table's job. Returns ok=false when no session exists for tok.
func (t *Table) Debit(tok string, cost float64) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[tok]
	if !ok {
		return Session{}, false
	}
	s.Credit -= cost
	t.sessions[tok] = s
	return s, true
}

// Remove deletes and returns the session for tok.
func (t *Table) Remove(tok string) (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[tok]
	if ok {
		delete(t.sessions, tok)
	}
	return s, ok
}

// Len reports the number of entries, live or expired.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// SnapshotCredits returns the balance of every entry for diagnostics.
func (t *Table) SnapshotCredits() []CreditSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]CreditSnapshot, 0, len(t.sessions))
	for tok, s := range t.sessions {
		prefix := tok
		if len(prefix) > 20 {
			prefix = prefix[:20]
		}
		out = append(out, CreditSnapshot{TokenPrefix: prefix, Credit: s.Credit})
	}
	return out
}
