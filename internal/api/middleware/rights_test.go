package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

func TestRequireRights_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("rights", domain.Admin)

	called := false
	handler := RequireRights(domain.Admin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRights_Forbids(t *testing.T) {
	tests := []struct {
		name   string
		rights any
	}{
		{"LowerRights", domain.Chat},
		{"NoRights", domain.NoRights},
		{"MissingClaim", nil},
		{"WrongType", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.rights != nil {
				c.Set("rights", tt.rights)
			}

			handler := RequireRights(domain.Admin)(func(c echo.Context) error {
				t.Fatal("should not reach next handler")
				return nil
			})

			_ = handler(c)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
		})
	}
}
