package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/llmrelay/chat-service/internal/api/metrics"
	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/ports"
)

// AuthHandler serves the login and logout operations.
type AuthHandler struct {
	authService ports.AuthService
	logger      zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// bindEnvelope decodes the envelope and checks its kind, then decodes and
// validates the payload into out. A non-nil return is the InvalidRequest
// response already rendered.
func bindEnvelope(c echo.Context, wantKind string, out any) error {
	var msg Message
	if err := c.Bind(&msg); err != nil {
		return invalidReply(c, http.StatusBadRequest, "malformed envelope")
	}
	if msg.Kind != wantKind {
		return invalidReply(c, http.StatusBadRequest, fmt.Sprintf("can only send a %s, not %q", wantKind, msg.Kind))
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return invalidReply(c, http.StatusBadRequest, fmt.Sprintf("malformed %s payload", wantKind))
	}
	if err := c.Validate(out); err != nil {
		return invalidReply(c, http.StatusBadRequest, err.Error())
	}
	return nil
}

// invalidReply renders the InvalidRequest envelope and reports handled.
func invalidReply(c echo.Context, status int, reason string) error {
	return c.JSON(status, NewMessage(KindInvalidRequest, invalidRequest{Reason: reason}))
}

// Login authenticates a user and opens a session.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      Message  true  "LoginRequest envelope"
// @Success      200   {object}  Message
// @Failure      400   {object}  Message
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindEnvelope(c, KindLoginRequest, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrLoginThrottled) {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			metrics.LoginThrottleHitsTotal.Inc()
			return invalidReply(c, http.StatusTooManyRequests, "too many failed login attempts")
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Msg("login failed")
		return invalidReply(c, http.StatusInternalServerError, fmt.Sprintf("login error: %v", err))
	}

	if result == nil {
		// Unknown username and wrong password are indistinguishable here.
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return c.JSON(http.StatusOK, NewMessage(KindLoginResponse, loginResponse{Success: false}))
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.SessionsActive.Inc()
	return c.JSON(http.StatusOK, NewMessage(KindLoginResponse, loginResponse{
		Success:  true,
		Identity: &result.Identity,
		Token:    result.Token,
		Credit:   result.Credit,
		Expiry:   result.Expiry,
	}))
}

// Logout closes a session.
//
// @Summary      Log out
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      Message  true  "LogoutRequest envelope"
// @Success      200   {object}  Message
// @Failure      400   {object}  Message
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutRequest
	if err := bindEnvelope(c, KindLogoutRequest, &req); err != nil {
		return err
	}

	ok, err := h.authService.Logout(c.Request().Context(), req.Token)
	if err != nil {
		// ErrSessionInvariant lands here: loud, never swallowed.
		return err
	}
	if ok {
		metrics.SessionsActive.Dec()
	}
	return c.JSON(http.StatusOK, NewMessage(KindLogoutResponse, logoutResponse{Success: ok}))
}
