// The chat relay server: authenticates users, issues session tokens, relays
// chat calls to the LLM backend, and keeps the per-session spending ledger.
//
// @title        Chat Relay API
// @version      1.0
// @description  Authentication, session, and billing backend for a chat relay.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/llmrelay/chat-service/internal/api"
	"github.com/llmrelay/chat-service/internal/core/service"
	"github.com/llmrelay/chat-service/internal/core/session"
	"github.com/llmrelay/chat-service/internal/infrastructure/config"
	mongodb "github.com/llmrelay/chat-service/internal/infrastructure/db/mongo"
	redisdb "github.com/llmrelay/chat-service/internal/infrastructure/db/redis"
	"github.com/llmrelay/chat-service/internal/infrastructure/llm"
	"github.com/llmrelay/chat-service/internal/infrastructure/queue"
	"github.com/llmrelay/chat-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not up yet.
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Durable stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Core wiring ---
	users := mongodb.NewUserRepository(db, cfg.StartingCredit)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.ThrottleTTL)
	table := session.NewTable()

	flusher := queue.NewFlusher(cfg.FlushWorkers, users, log)
	flusher.Start(ctx)

	authService := service.NewAuthService(users, table, throttle, cfg.SessionTTL, log)
	llmClient := llm.NewOpenAIClient(cfg.OpenAIKey)
	chatService := service.NewChatService(table, llmClient, flusher, log)

	e := api.NewRouter(api.Deps{
		Table:  table,
		Users:  users,
		Auth:   authService,
		Chat:   chatService,
		Mongo:  db,
		Redis:  rdb,
		Logger: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
