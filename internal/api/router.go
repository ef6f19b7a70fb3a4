package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/llmrelay/chat-service/docs"
	"github.com/llmrelay/chat-service/internal/api/handler"
	"github.com/llmrelay/chat-service/internal/api/middleware"
	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/ports"
	"github.com/llmrelay/chat-service/internal/core/session"
)

// Deps carries everything the router needs; main wires these up.
type Deps struct {
	Table  *session.Table
	Users  ports.UserRepository
	Auth   ports.AuthService
	Chat   ports.ChatService
	Mongo  *mongo.Database
	Redis  *redis.Client
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("chatrelay"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Logger)
	chatHandler := handler.NewChatHandler(d.Chat, d.Logger)
	adminHandler := handler.NewAdminHandler(d.Users, d.Logger)

	// --- Envelope API (token travels inside the payload) ---
	e.POST("/api/login", authHandler.Login)
	e.POST("/api/chat", chatHandler.Chat)
	e.POST("/api/logout", authHandler.Logout)

	// --- Admin API (bearer token, Admin rights) ---
	admin := e.Group("/api/admin",
		middleware.Session(d.Table),
		middleware.RequireRights(domain.Admin),
	)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users", adminHandler.CreateUser)
	admin.DELETE("/users/:username", adminHandler.DeleteUser)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
