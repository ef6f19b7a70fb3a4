package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/llmrelay/chat-service/internal/core/domain"
	"github.com/llmrelay/chat-service/internal/core/ports"
	"github.com/llmrelay/chat-service/internal/core/session"
	"github.com/llmrelay/chat-service/internal/core/token"
)

const defaultSessionTTL = 2 * time.Hour

// AuthService implements login and logout against the credential store and
// the in-process session table.
type AuthService struct {
	repo     ports.UserRepository
	table    *session.Table
	throttle ports.LoginThrottle
	ttl      time.Duration
	logger   zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, table *session.Table, throttle ports.LoginThrottle, ttl time.Duration, logger zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{repo: repo, table: table, throttle: throttle, ttl: ttl, logger: logger}
}

// Login verifies the credentials and, on success, mints a session token and
// installs exactly one new session. An unknown username and a wrong password
// both return (nil, nil) so callers cannot enumerate accounts. Store I/O
// failures are returned as errors.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if s.throttle != nil {
		blocked, err := s.throttle.TooManyAttempts(ctx, username)
		if err != nil {
			// Fail open: a throttle-store outage must not take logins down.
			s.logger.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		} else if blocked {
			return nil, domain.ErrLoginThrottled
		}
	}

	record, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, username)
			return nil, nil
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
		s.logger.Debug().Str("username", username).Msg("password verification failed")
		s.recordFailure(ctx, username)
		return nil, nil
	}

	expiry := time.Now().UTC().Add(s.ttl)
	tok, err := token.Issue(record.Identity, expiry, record.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("login: issuing token: %w", err)
	}

	s.table.Insert(tok, session.Session{
		Identity: record.Identity,
		Token:    tok,
		Expire:   expiry,
		Credit:   record.Credit,
		Rights:   record.Rights,
	})

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	s.logger.Info().
		Str("username", username).
		Str("identity", record.Identity.String()).
		Float64("credit", record.Credit).
		Time("expiry", expiry).
		Msg("login succeeded")

	return &ports.LoginResult{
		Identity: record.Identity,
		Token:    tok,
		Credit:   record.Credit,
		Expiry:   expiry,
	}, nil
}

// Logout removes the session for token. An invalid or expired token reports
// (false, nil) without mutation. A token that passes validation but is then
// missing from the table indicates a concurrency bug and is surfaced as
// ErrSessionInvariant.
func (s *AuthService) Logout(ctx context.Context, tok string) (bool, error) {
	guard := SessionGuard{Table: s.table}
	if !guard.IsValid(tok) {
		return false, nil
	}
	if _, ok := s.table.Remove(tok); !ok {
		s.logger.Error().Str("token_prefix", tokenPrefix(tok)).Msg("validated token missing at removal")
		return false, domain.ErrSessionInvariant
	}
	s.logger.Info().Str("token_prefix", tokenPrefix(tok)).Msg("logout succeeded")
	return true, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

func tokenPrefix(tok string) string {
	if len(tok) > 20 {
		return tok[:20]
	}
	return tok
}
