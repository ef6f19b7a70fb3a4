package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LoginResult is returned on a successful login. The token must accompany
// every subsequent privileged request.
type LoginResult struct {
	Identity uuid.UUID
	Token    string
	Credit   float64
	Expiry   time.Time
}

// AuthService authenticates users and manages their sessions. Login returns
// (nil, nil) for an unknown username or wrong password: an expected outcome,
// deliberately indistinguishable between the two cases.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Logout reports false when the token does not name a live session.
	Logout(ctx context.Context, token string) (bool, error)
}

// LoginThrottle limits failed login attempts per username. A throttle outage
// must fail open: authentication availability outranks the rate limit.
type LoginThrottle interface {
	TooManyAttempts(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
