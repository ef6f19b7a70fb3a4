package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/llmrelay/chat-service/internal/core/domain"
)

// UserRepository is the contract of the durable credential store. Its
// operations are assumed atomic; the implementation lives in infrastructure.
type UserRepository interface {
	ListAll(ctx context.Context) ([]domain.UserRecord, error)
	FindByUsername(ctx context.Context, username string) (*domain.UserRecord, error)
	// UpdateBalance persists the post-debit balance and rights for identity.
	UpdateBalance(ctx context.Context, identity uuid.UUID, credit float64, rights domain.Rights) error
	// Create returns false when the username is already taken.
	Create(ctx context.Context, username, password string) (bool, error)
	// Delete returns false when no record matched the username.
	Delete(ctx context.Context, username string) (bool, error)
}
