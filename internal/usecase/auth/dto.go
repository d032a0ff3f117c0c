package auth

import (
	"time"

	domainCredential "spacelink-gateway/internal/domain/credential"
	"spacelink-gateway/internal/rbac"

	"github.com/google/uuid"
)

const TokenTypeBearer = "bearer"

type TokenRequest struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required,max=128"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"-"`
	Role         string    `json:"role"`
	Organization string    `json:"organization"`
}

type CreateAccountRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=100"`
	Password     string `json:"password" validate:"required,max=128"`
	Organization string `json:"organization" validate:"required,max=128"`
	Role         string `json:"role" validate:"required,oneof=admin partner customer readonly"`
}

type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Organization string    `json:"organization"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type PrincipalResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username,omitempty"`
	Organization string `json:"organization"`
	Role         string `json:"role,omitempty"`
	Kind         string `json:"kind"`
	DeviceID     string `json:"device_id,omitempty"`
}

// GenerateKeyRequest binds a new key to one device of one organization.
type GenerateKeyRequest struct {
	DeviceID     string
	Organization string
	PartnerID    string
}

type GeneratedAPIKey struct {
	KeyID        uuid.UUID `json:"key_id"`
	APIKey       string    `json:"api_key"`
	KeyPrefix    string    `json:"key_prefix"`
	DeviceID     string    `json:"device_id"`
	Organization string    `json:"organization"`
	PartnerID    string    `json:"partner_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type APIKeyResponse struct {
	ID           uuid.UUID  `json:"id"`
	KeyPrefix    string     `json:"key_prefix"`
	DeviceID     string     `json:"device_id"`
	Organization string     `json:"organization"`
	PartnerID    string     `json:"partner_id"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at"`
	RevokedAt    *time.Time `json:"revoked_at"`
}

func ToAccountResponse(a *domainCredential.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		Username:     a.Username,
		Organization: a.Organization,
		Role:         a.Role.String(),
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
}

func ToAPIKeyResponse(k *domainCredential.APIKey) *APIKeyResponse {
	return &APIKeyResponse{
		ID:           k.ID,
		KeyPrefix:    k.KeyPrefix,
		DeviceID:     k.DeviceID,
		Organization: k.Organization,
		PartnerID:    k.PartnerID,
		Active:       !k.IsRevoked(),
		CreatedAt:    k.CreatedAt,
		LastUsedAt:   k.LastUsedAt,
		RevokedAt:    k.RevokedAt,
	}
}

func ToPrincipalResponse(p rbac.Principal) *PrincipalResponse {
	resp := &PrincipalResponse{
		ID:           p.ID,
		Username:     p.Username,
		Organization: p.Organization,
		DeviceID:     p.DeviceID,
	}
	if p.IsDevice() {
		resp.Kind = "device"
	} else {
		resp.Kind = "user"
		resp.Role = p.Role.String()
	}
	return resp
}
