package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/session"
)

func tableWith(tok string, expire time.Time, rights domain.Rights) *session.Table {
	tbl := session.NewTable()
	tbl.Insert(tok, session.Session{
		Identity: uuid.New(),
		Token:    tok,
		Expire:   expire,
		Credit:   1,
		Rights:   rights,
	})
	return tbl
}

func runSession(t *testing.T, tbl *session.Table, authHeader string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(tbl)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestSession_Allows(t *testing.T) {
	tbl := tableWith("tok-1", time.Now().Add(time.Hour), domain.Admin)
	rec, called := runSession(t, tbl, "Bearer tok-1")
	if !called {
		t.Fatal("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSession_Rejects(t *testing.T) {
	tbl := tableWith("tok-1", time.Now().Add(time.Hour), domain.Chat)
	expired := tableWith("tok-old", time.Now().Add(-time.Hour), domain.Chat)

	tests := []struct {
		name   string
		tbl    *session.Table
		header string
	}{
		{"MissingHeader", tbl, ""},
		{"NotBearer", tbl, "Basic tok-1"},
		{"UnknownToken", tbl, "Bearer tok-unknown"},
		{"ExpiredSession", expired, "Bearer tok-old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called := runSession(t, tt.tbl, tt.header)
			if called {
				t.Fatal("next handler should not be called")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestSession_InjectsClaims(t *testing.T) {
	tbl := tableWith("tok-1", time.Now().Add(time.Hour), domain.Admin)
	sess, _ := tbl.Get("tok-1")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(tbl)(func(c echo.Context) error {
		if got := c.Get("identity"); got != sess.Identity.String() {
			t.Errorf("identity = %v, want %s", got, sess.Identity)
		}
		if got := c.Get("rights"); got != domain.Admin {
			t.Errorf("rights = %v, want Admin", got)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}
