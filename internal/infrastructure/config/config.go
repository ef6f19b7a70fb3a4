package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// OpenAIKey authenticates calls to the metered LLM backend.
	OpenAIKey string `env:"OPENAI_API_KEY"`

	// SessionTTL is how long an issued token stays valid.
	SessionTTL time.Duration `env:"SESSION_TTL, default=2h"`

	// StartingCredit is granted to newly created users.
	StartingCredit float64 `env:"STARTING_CREDIT, default=5.0"`

	// FlushWorkers sizes the balance persistence pool.
	FlushWorkers int `env:"FLUSH_WORKERS, default=4"`

	Login LoginConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type LoginConfig struct {
	MaxAttempts int64         `env:"LOGIN_MAX_ATTEMPTS, default=10"`
	ThrottleTTL time.Duration `env:"LOGIN_THROTTLE_TTL, default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=chat_relay"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("config: OPENAI_API_KEY is required")
	}
	return &cfg, nil
}
