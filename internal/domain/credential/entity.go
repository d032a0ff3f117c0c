package credential

import (
	"time"

	"spacelink-gateway/internal/rbac"

	"github.com/google/uuid"
)

// Account is a password credential for a human or partner principal.
type Account struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Organization string
	Role         rbac.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// APIKey is a device credential. Only the SHA-256 of the secret is kept.
type APIKey struct {
	ID           uuid.UUID
	KeyHash      string
	KeyPrefix    string
	DeviceID     string
	Organization string
	PartnerID    string
	CreatedAt    time.Time
	LastUsedAt   *time.Time
	RevokedAt    *time.Time
}

func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}
