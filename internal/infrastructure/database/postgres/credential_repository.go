package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainCredential "spacelink-gateway/internal/domain/credential"
	"spacelink-gateway/internal/infrastructure/database/postgres/models"
	"spacelink-gateway/internal/rbac"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository implements domainCredential.AccountRepository
type AccountRepository struct {
	db *DB
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domainCredential.Account) error {
	if err := r.db.DB.WithContext(ctx).Create(toAccountModel(a)).Error; err != nil {
		if isDuplicateKey(err) {
			return domainCredential.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainCredential.Account, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domainCredential.Account, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *AccountRepository) List(ctx context.Context, organization string) ([]*domainCredential.Account, error) {
	var dbModels []models.AccountModel

	db := r.db.DB.WithContext(ctx).Model(&models.AccountModel{})
	if organization != "" {
		db = db.Where("organization = ?", organization)
	}
	if err := db.Order("username ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*domainCredential.Account, len(dbModels))
	for i := range dbModels {
		accounts[i] = toAccountEntity(&dbModels[i])
	}
	return accounts, nil
}

func (r *AccountRepository) first(ctx context.Context, query string, arg interface{}) (*domainCredential.Account, error) {
	var dbModel models.AccountModel
	err := r.db.DB.WithContext(ctx).Where(query, arg).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCredential.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return toAccountEntity(&dbModel), nil
}

// APIKeyRepository implements domainCredential.APIKeyRepository
type APIKeyRepository struct {
	db *DB
}

func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(ctx context.Context, k *domainCredential.APIKey) error {
	if err := r.db.DB.WithContext(ctx).Create(toAPIKeyModel(k)).Error; err != nil {
		if isDuplicateKey(err) {
			return domainCredential.ErrAPIKeyAlreadyExists
		}
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainCredential.APIKey, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*domainCredential.APIKey, error) {
	return r.first(ctx, "key_hash = ?", hash)
}

func (r *APIKeyRepository) ListByPartner(ctx context.Context, partnerID string) ([]*domainCredential.APIKey, error) {
	var dbModels []models.APIKeyModel
	err := r.db.DB.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}

	keys := make([]*domainCredential.APIKey, len(dbModels))
	for i := range dbModels {
		keys[i] = toAPIKeyEntity(&dbModels[i])
	}
	return keys, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	err := r.db.DB.WithContext(ctx).
		Model(&models.APIKeyModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.APIKeyModel{}).
		Where("id = ?", id).
		Update("last_used_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to touch api key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainCredential.ErrAPIKeyNotFound
	}
	return nil
}

func (r *APIKeyRepository) first(ctx context.Context, query string, arg interface{}) (*domainCredential.APIKey, error) {
	var dbModel models.APIKeyModel
	err := r.db.DB.WithContext(ctx).Where(query, arg).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCredential.ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return toAPIKeyEntity(&dbModel), nil
}

func toAccountModel(a *domainCredential.Account) *models.AccountModel {
	return &models.AccountModel{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Organization: a.Organization,
		Role:         a.Role.String(),
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// toAccountEntity leaves Role zero for unknown stored roles; a zero role is
// granted nothing.
func toAccountEntity(m *models.AccountModel) *domainCredential.Account {
	role, _ := rbac.ParseRole(m.Role)
	return &domainCredential.Account{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Organization: m.Organization,
		Role:         role,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toAPIKeyModel(k *domainCredential.APIKey) *models.APIKeyModel {
	return &models.APIKeyModel{
		ID:           k.ID,
		KeyHash:      k.KeyHash,
		KeyPrefix:    k.KeyPrefix,
		DeviceID:     k.DeviceID,
		Organization: k.Organization,
		PartnerID:    k.PartnerID,
		CreatedAt:    k.CreatedAt,
		LastUsedAt:   k.LastUsedAt,
		RevokedAt:    k.RevokedAt,
	}
}

func toAPIKeyEntity(m *models.APIKeyModel) *domainCredential.APIKey {
	return &domainCredential.APIKey{
		ID:           m.ID,
		KeyHash:      m.KeyHash,
		KeyPrefix:    m.KeyPrefix,
		DeviceID:     m.DeviceID,
		Organization: m.Organization,
		PartnerID:    m.PartnerID,
		CreatedAt:    m.CreatedAt,
		LastUsedAt:   m.LastUsedAt,
		RevokedAt:    m.RevokedAt,
	}
}
