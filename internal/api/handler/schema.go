package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/llmrelay/chat-service/internal/core/ports"
)

// Every API operation exchanges a discriminated envelope. Kind names the
// payload type; a kind that does not match the endpoint is answered with an
// InvalidRequest envelope.
const (
	KindLoginRequest   = "LoginRequest"
	KindLoginResponse  = "LoginResponse"
	KindChatPrompt     = "ChatPrompt"
	KindChatResponse   = "ChatResponse"
	KindLogoutRequest  = "LogoutRequest"
	KindLogoutResponse = "LogoutResponse"
	KindInvalidRequest = "InvalidRequest"
)

// Message is the request/response envelope.
type Message struct {
	Kind    string          `json:"kind" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// NewMessage wraps a payload in an envelope. Marshal failures cannot happen
// for the payload types used here, so the error is swallowed.
func NewMessage(kind string, payload any) Message {
	raw, _ := json.Marshal(payload)
	return Message{Kind: kind, Payload: raw}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success  bool       `json:"success"`
	Identity *uuid.UUID `json:"identity,omitempty"`
	Token    string     `json:"token,omitempty"`
	Credit   float64    `json:"credit"`
	Expiry   time.Time  `json:"expiry"`
}

type chatPrompt struct {
	Token       string              `json:"token" validate:"required"`
	Model       string              `json:"model" validate:"required"`
	Messages    []ports.ChatMessage `json:"messages" validate:"required,min=1,dive"`
	Temperature float64             `json:"temperature" validate:"gte=0,lte=2"`
}

type chatResponse struct {
	Model          string            `json:"model"`
	Cost           float64           `json:"cost"`
	Response       string            `json:"response"`
	Credit         float64           `json:"credit"`
	DiagnosticInfo map[string]string `json:"diagnostic_info,omitempty"`
	DurationMS     int64             `json:"duration_ms,omitempty"`
}

type logoutRequest struct {
	Identity uuid.UUID `json:"identity"`
	Token    string    `json:"token" validate:"required"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type invalidRequest struct {
	Reason string `json:"reason"`
}
