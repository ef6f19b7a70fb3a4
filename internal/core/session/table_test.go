package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

func newSession(tok string, credit float64) Session {
	return Session{
		Identity: uuid.New(),
		Token:    tok,
		Expire:   time.Now().Add(time.Hour),
		Credit:   credit,
		Rights:   domain.Chat,
	}
}

func TestTable_InsertGet(t *testing.T) {
	tbl := NewTable()
	want := newSession("tok-1", 10.0)
	tbl.Insert("tok-1", want)

	got, ok := tbl.Get("tok-1")
	if !ok {
		t.Fatal("Get() did not find inserted session")
	}
	if got.Identity != want.Identity || got.Credit != want.Credit {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestTable_GetMissing(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Get("nope"); ok {
		t.Fatal("Get() found a session that was never inserted")
	}
}

func TestTable_Debit(t *testing.T) {
	tbl := NewTable()
	tbl.Insert("tok-1", newSession("tok-1", 10.0))

	got, ok := tbl.Debit("tok-1", 0.6)
	if !ok {
		t.Fatal("Debit() did not find session")
	}
	if got.Credit != 9.4 {
		t.Errorf("Credit = %v, want 9.4", got.Credit)
	}

	// Balance may go negative; the table does not gate.
	got, _ = tbl.Debit("tok-1", 100)
	if got.Credit >= 0 {
		t.Errorf("Credit = %v, want negative", got.Credit)
	}
}

func TestTable_DebitMissing(t *testing.T) {
	tbl := NewTable()
	if _, ok := tbl.Debit("nope", 1); ok {
		t.Fatal("Debit() succeeded on a missing session")
	}
}

func TestTable_Remove(t *testing.T) {
	tbl := NewTable()
	tbl.Insert("tok-1", newSession("tok-1", 5))

	if _, ok := tbl.Remove("tok-1"); !ok {
		t.Fatal("Remove() did not find session")
	}
	if _, ok := tbl.Remove("tok-1"); ok {
		t.Fatal("second Remove() should report absence")
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
}

func TestTable_SnapshotCredits(t *testing.T) {
	tbl := NewTable()
	longTok := "0123456789012345678901234567890123456789"
	tbl.Insert(longTok, newSession(longTok, 3.5))

	snaps := tbl.SnapshotCredits()
	if len(snaps) != 1 {
		t.Fatalf("SnapshotCredits() returned %d entries, want 1", len(snaps))
	}
	if len(snaps[0].TokenPrefix) != 20 {
		t.Errorf("TokenPrefix length = %d, want 20", len(snaps[0].TokenPrefix))
	}
	if snaps[0].Credit != 3.5 {
		t.Errorf("Credit = %v, want 3.5", snaps[0].Credit)
	}
}

// Concurrent debits against separate sessions must not interleave: every
// session ends with its initial balance minus the sum of its own debits.
func TestTable_ConcurrentDebits(t *testing.T) {
	const (
		sessions = 8
		debits   = 200
		cost     = 0.25
		initial  = 1000.0
	)

	tbl := NewTable()
	for i := 0; i < sessions; i++ {
		tok := fmt.Sprintf("tok-%d", i)
		tbl.Insert(tok, newSession(tok, initial))
	}

	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		tok := fmt.Sprintf("tok-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < debits; j++ {
				if _, ok := tbl.Debit(tok, cost); !ok {
					t.Errorf("Debit(%s) lost the session", tok)
					return
				}
			}
		}()
	}
	wg.Wait()

	want := initial - debits*cost
	for i := 0; i < sessions; i++ {
		tok := fmt.Sprintf("tok-%d", i)
		got, ok := tbl.Get(tok)
		if !ok {
			t.Fatalf("session %s vanished", tok)
		}
		if got.Credit != want {
			t.Errorf("session %s credit = %v, want %v", tok, got.Credit, want)
		}
	}
}

// A lookup immediately following an insert from another goroutine must
// observe the insert once the insert has returned.
func TestTable_InsertVisibility(t *testing.T) {
	tbl := NewTable()
	done := make(chan string)

	go func() {
		tbl.Insert("tok-vis", newSession("tok-vis", 1))
		done <- "tok-vis"
	}()

	tok := <-done
	if _, ok := tbl.Get(tok); !ok {
		t.Fatal("Get() did not observe a completed Insert()")
	}
}
