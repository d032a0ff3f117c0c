package credential

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountRepository stores password accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
	// List returns accounts of organization, or every account when organization is empty.
	List(ctx context.Context, organization string) ([]*Account, error)
}

// APIKeyRepository stores device API keys by hash.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*APIKey, error)
	GetByHash(ctx context.Context, hash string) (*APIKey, error)
	ListByPartner(ctx context.Context, partnerID string) ([]*APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}
