package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/llmrelay/chat-service/internal/api/metrics"
	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/ports"
)

// ChatHandler serves the privileged chat operation.
type ChatHandler struct {
	chatService ports.ChatService
	logger      zerolog.Logger
}

func NewChatHandler(chatService ports.ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

// Chat relays a conversation to the LLM backend and bills the session.
//
// @Summary      Relay a chat call
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      Message  true  "ChatPrompt envelope"
// @Success      200   {object}  Message
// @Failure      400   {object}  Message
// @Failure      401   {object}  Message
// @Router       /api/chat [post]
func (h *ChatHandler) Chat(c echo.Context) error {
	var prompt chatPrompt
	if err := bindEnvelope(c, KindChatPrompt, &prompt); err != nil {
		return err
	}

	start := time.Now()
	out, err := h.chatService.Chat(c.Request().Context(), prompt.Token, prompt.Model, prompt.Messages, prompt.Temperature)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSession):
			metrics.ChatsTotal.WithLabelValues(prompt.Model, "invalid_session").Inc()
			return invalidReply(c, http.StatusUnauthorized, "invalid session")
		case errors.Is(err, domain.ErrUnknownModel):
			// Configuration error, not a user mistake: surface loudly.
			return err
		case errors.Is(err, domain.ErrSessionInvariant):
			return err
		default:
			metrics.ChatsTotal.WithLabelValues(prompt.Model, "backend_error").Inc()
			h.logger.Error().Err(err).Str("model", prompt.Model).Msg("chat relay failed")
			return invalidReply(c, http.StatusBadGateway, fmt.Sprintf("chat error: %v", err))
		}
	}

	metrics.ChatsTotal.WithLabelValues(out.Model, "success").Inc()
	metrics.ChatCostTotal.WithLabelValues(out.Model).Add(out.Cost)
	metrics.ChatTokensTotal.WithLabelValues("prompt").Add(float64(out.Usage.PromptTokens))
	metrics.ChatTokensTotal.WithLabelValues("completion").Add(float64(out.Usage.CompletionTokens))
	metrics.ChatDuration.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, NewMessage(KindChatResponse, chatResponse{
		Model:          out.Model,
		Cost:           out.Cost,
		Response:       out.Response,
		Credit:         out.Credit,
		DiagnosticInfo: out.Diagnostic,
		DurationMS:     out.DurationMS,
	}))
}
