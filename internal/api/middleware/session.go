package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/llmrelay/chat-service/internal/core/service"
	"github.com/llmrelay/chat-service/internal/core/session"
)

// Session validates the bearer session token and injects the session into
// context. Used by routes that carry the token in the Authorization header
// rather than inside the request envelope.
func Session(table *session.Table) echo.MiddlewareFunc {
	guard := service.SessionGuard{Table: table}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			tok := parts[1]
			if !guard.IsValid(tok) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}

			sess, ok := table.Get(tok)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}

			c.Set("identity", sess.Identity.String())
			c.Set("rights", sess.Rights)

			return next(c)
		}
	}
}
