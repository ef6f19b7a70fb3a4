package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

// RequireRights enforces a minimum capability level on routes behind the
// Session middleware.
func RequireRights(min domain.Rights) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rights, ok := c.Get("rights").(domain.Rights)
			if !ok || !rights.AtLeast(min) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
