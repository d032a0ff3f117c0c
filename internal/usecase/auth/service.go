package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spacelink-gateway/internal/config"
	domainCredential "spacelink-gateway/internal/domain/credential"
	domainDevice "spacelink-gateway/internal/domain/device"
	domainPartner "spacelink-gateway/internal/domain/partner"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the authentication gateway: it issues and validates bearer tokens
// and device API keys against the credential store.
type Service struct {
	accounts domainCredential.AccountRepository
	apiKeys  domainCredential.APIKeyRepository
	devices  domainDevice.Repository
	partners domainPartner.Repository
	jwt      config.JWTConfig
	keys     config.APIKeyConfig
	now      func() time.Time
}

// NewService creates a new auth service
func NewService(
	accounts domainCredential.AccountRepository,
	apiKeys domainCredential.APIKeyRepository,
	devices domainDevice.Repository,
	partners domainPartner.Repository,
	cfg *config.Config,
) *Service {
	return &Service{
		accounts: accounts,
		apiKeys:  apiKeys,
		devices:  devices,
		partners: partners,
		jwt:      cfg.JWT,
		keys:     cfg.APIKey,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for token issuance.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IssueToken exchanges a username and password for a bearer token. Unknown users,
// wrong passwords and disabled accounts all yield ErrInvalidCredentials.
func (s *Service) IssueToken(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	username := utils.SanitizeUsername(req.Username)
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		utils.BurnPasswordCheck(req.Password)
		s.logRejectedLogin(username)
		return nil, appErrors.ErrInvalidCredentials
	}

	if !utils.CheckPassword(account.PasswordHash, req.Password) || !account.IsActive || !account.Role.Valid() {
		s.logRejectedLogin(username)
		return nil, appErrors.ErrInvalidCredentials
	}

	claims := utils.Claims{
		Username:     account.Username,
		Organization: account.Organization,
		Role:         account.Role.String(),
	}
	claims.Subject = account.ID.String()
	claims.Issuer = s.jwt.Issuer

	token, expiresAt, err := utils.GenerateAccessToken(claims, s.jwt.Secret, s.now(), s.jwt.TTL())
	if err != nil {
		return nil, err
	}

	logger.Info("Token issued",
		zap.String("account_id", account.ID.String()),
		zap.String("organization", account.Organization),
		zap.String("role", account.Role.String()),
		zap.String("event", "token_issued"),
	)

	return &TokenResponse{
		AccessToken:  token,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.jwt.TTL().Seconds()),
		ExpiresAt:    expiresAt,
		Role:         account.Role.String(),
		Organization: account.Organization,
	}, nil
}

func (s *Service) logRejectedLogin(username string) {
	logger.Warn("Token request rejected",
		zap.String("username", username),
		zap.String("event", "token_rejected"),
	)
}

// ValidateBearer resolves a user principal from a signed token without touching
// the credential store.
func (s *Service) ValidateBearer(token string) (rbac.Principal, error) {
	claims, err := utils.ValidateToken(strings.TrimSpace(token), s.jwt.Secret)
	if err != nil {
		return rbac.Principal{}, err
	}

	if s.jwt.Issuer != "" && claims.Issuer != s.jwt.Issuer {
		return rbac.Principal{}, appErrors.ErrTokenInvalid
	}

	role, err := rbac.ParseRole(claims.Role)
	if err != nil || claims.Subject == "" || claims.Organization == "" {
		return rbac.Principal{}, appErrors.ErrTokenInvalid
	}

	return rbac.NewUserPrincipal(claims.Subject, claims.Username, claims.Organization, role), nil
}

// ValidateAPIKey resolves a device principal. Unknown, revoked and suspended
// partner keys all yield ErrInvalidAPIKey.
func (s *Service) ValidateAPIKey(ctx context.Context, key string) (rbac.Principal, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return rbac.Principal{}, appErrors.ErrInvalidAPIKey
	}

	stored, err := s.apiKeys.GetByHash(ctx, utils.HashAPIKey(key))
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return rbac.Principal{}, appErrors.ErrInvalidAPIKey
		}
		return rbac.Principal{}, fmt.Errorf("failed to load api key: %w", err)
	}

	if !utils.APIKeyMatches(key, stored.KeyHash) || stored.IsRevoked() {
		return rbac.Principal{}, appErrors.ErrInvalidAPIKey
	}

	if stored.PartnerID != "" && s.partners != nil {
		p, err := s.partners.GetByID(ctx, stored.PartnerID)
		if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
			return rbac.Principal{}, fmt.Errorf("failed to load partner: %w", err)
		}
		if p != nil && (!p.IsActive() || !p.APIAccessEnabled) {
			return rbac.Principal{}, appErrors.ErrInvalidAPIKey
		}
	}

	if err := s.apiKeys.TouchLastUsed(ctx, stored.ID, s.now()); err != nil {
		logger.Warn("Failed to record api key usage",
			zap.String("key_id", stored.ID.String()),
			zap.Error(err),
		)
	}

	return rbac.NewDevicePrincipal(stored.ID.String(), stored.Organization, stored.DeviceID), nil
}

// GenerateAPIKey creates a key for one device and registers the device under the
// organization if it is new. Callers authorize the request.
func (s *Service) GenerateAPIKey(ctx context.Context, req GenerateKeyRequest) (*GeneratedAPIKey, error) {
	deviceID := utils.SanitizeIdentifier(req.DeviceID)
	if deviceID == "" {
		return nil, appErrors.NewValidationError("device_id", "device_id is required")
	}
	if len(deviceID) > 128 {
		return nil, appErrors.NewValidationError("device_id", "device_id must be at most 128 characters")
	}

	device, _, err := s.devices.CreateIfAbsent(ctx, &domainDevice.Device{
		ID:           deviceID,
		Organization: req.Organization,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if device.Organization != req.Organization {
		return nil, appErrors.ErrTenantMismatch
	}
	if !device.IsActive() {
		return nil, appErrors.ErrDeviceInactive
	}

	plaintext, hash, display, err := utils.GenerateAPIKey(s.keys.Prefix, deviceID)
	if err != nil {
		return nil, err
	}

	key := &domainCredential.APIKey{
		ID:           uuid.New(),
		KeyHash:      hash,
		KeyPrefix:    display,
		DeviceID:     deviceID,
		Organization: req.Organization,
		PartnerID:    req.PartnerID,
		CreatedAt:    s.now(),
	}
	if err := s.apiKeys.Create(ctx, key); err != nil {
		return nil, err
	}

	logger.Info("API key generated",
		zap.String("key_id", key.ID.String()),
		zap.String("key_prefix", key.KeyPrefix),
		zap.String("device_id", deviceID),
		zap.String("organization", req.Organization),
		zap.String("event", "api_key_generated"),
	)

	return &GeneratedAPIKey{
		KeyID:        key.ID,
		APIKey:       plaintext,
		KeyPrefix:    key.KeyPrefix,
		DeviceID:     deviceID,
		Organization: req.Organization,
		PartnerID:    req.PartnerID,
		CreatedAt:    key.CreatedAt,
	}, nil
}

// RevokeAPIKey revokes keyID if it belongs to partnerID.
func (s *Service) RevokeAPIKey(ctx context.Context, partnerID string, keyID uuid.UUID) error {
	key, err := s.apiKeys.GetByID(ctx, keyID)
	if err != nil {
		return err
	}
	if key.PartnerID != partnerID {
		return domainCredential.ErrAPIKeyNotFound
	}

	if err := s.apiKeys.Revoke(ctx, keyID, s.now()); err != nil {
		return err
	}

	logger.Info("API key revoked",
		zap.String("key_id", keyID.String()),
		zap.String("device_id", key.DeviceID),
		zap.String("event", "api_key_revoked"),
	)
	return nil
}

// ListAPIKeys returns the keys issued under partnerID.
func (s *Service) ListAPIKeys(ctx context.Context, partnerID string) ([]*APIKeyResponse, error) {
	keys, err := s.apiKeys.ListByPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	out := make([]*APIKeyResponse, len(keys))
	for i, k := range keys {
		out[i] = ToAPIKeyResponse(k)
	}
	return out, nil
}

func (s *Service) CreateAccount(ctx context.Context, principal rbac.Principal, req *CreateAccountRequest) (*AccountResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := rbac.Authorize(principal, rbac.ActionManageUsers, req.Organization); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewValidationError("password", err.Error())
	}

	role, err := rbac.ParseRole(req.Role)
	if err != nil {
		return nil, appErrors.NewValidationError("role", err.Error())
	}

	account, err := s.createAccount(ctx, req.Username, req.Password, utils.SanitizeIdentifier(req.Organization), role)
	if err != nil {
		return nil, err
	}

	logger.Info("Account created",
		zap.String("account_id", account.ID.String()),
		zap.String("organization", account.Organization),
		zap.String("role", role.String()),
		zap.String("created_by", principal.ID),
		zap.String("event", "account_created"),
	)

	return ToAccountResponse(account), nil
}

func (s *Service) ListAccounts(ctx context.Context, principal rbac.Principal) ([]*AccountResponse, error) {
	if err := rbac.AuthorizeAction(principal, rbac.ActionManageUsers); err != nil {
		return nil, err
	}

	accounts, err := s.accounts.List(ctx, principal.ScopeOrganization())
	if err != nil {
		return nil, err
	}

	out := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToAccountResponse(a)
	}
	return out, nil
}

// EnsureAdmin seeds the bootstrap administrator when configured and absent.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if cfg.AdminUsername == "" {
		return nil
	}

	username := utils.SanitizeUsername(cfg.AdminUsername)
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, appErrors.ErrNotFound) {
		return fmt.Errorf("failed to check bootstrap admin: %w", err)
	}

	account, err := s.createAccount(ctx, username, cfg.AdminPassword, cfg.AdminOrganization, rbac.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	logger.Info("Bootstrap admin created",
		zap.String("account_id", account.ID.String()),
		zap.String("organization", account.Organization),
		zap.String("event", "bootstrap_admin_created"),
	)
	return nil
}

func (s *Service) createAccount(ctx context.Context, username, password, organization string, role rbac.Role) (*domainCredential.Account, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	account := &domainCredential.Account{
		ID:           uuid.New(),
		Username:     utils.SanitizeUsername(username),
		PasswordHash: hashed,
		Organization: organization,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
