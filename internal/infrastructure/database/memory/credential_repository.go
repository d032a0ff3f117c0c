package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainCredential "spacelink-gateway/internal/domain/credential"

	"github.com/google/uuid"
)

// AccountRepository implements domainCredential.AccountRepository in memory.
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*domainCredential.Account
	byUsername map[string]uuid.UUID
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[uuid.UUID]*domainCredential.Account),
		byUsername: make(map[string]uuid.UUID),
	}
}

func (r *AccountRepository) Create(ctx context.Context, a *domainCredential.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[a.Username]; ok {
		return domainCredential.ErrAccountAlreadyExists
	}
	if _, ok := r.byID[a.ID]; ok {
		return domainCredential.ErrAccountAlreadyExists
	}

	c := *a
	r.byID[a.ID] = &c
	r.byUsername[a.Username] = a.ID
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainCredential.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domainCredential.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domainCredential.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, domainCredential.ErrAccountNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *AccountRepository) List(ctx context.Context, organization string) ([]*domainCredential.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainCredential.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if organization == "" || a.Organization == organization {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// APIKeyRepository implements domainCredential.APIKeyRepository in memory.
type APIKeyRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domainCredential.APIKey
	byHash map[string]uuid.UUID
}

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{
		byID:   make(map[uuid.UUID]*domainCredential.APIKey),
		byHash: make(map[string]uuid.UUID),
	}
}

func (r *APIKeyRepository) Create(ctx context.Context, k *domainCredential.APIKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHash[k.KeyHash]; ok {
		return domainCredential.ErrAPIKeyAlreadyExists
	}
	if _, ok := r.byID[k.ID]; ok {
		return domainCredential.ErrAPIKeyAlreadyExists
	}

	c := *k
	r.byID[k.ID] = &c
	r.byHash[k.KeyHash] = k.ID
	return nil
}

func (r *APIKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainCredential.APIKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.byID[id]
	if !ok {
		return nil, domainCredential.ErrAPIKeyNotFound
	}
	c := *k
	return &c, nil
}

func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*domainCredential.APIKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHash[hash]
	if !ok {
		return nil, domainCredential.ErrAPIKeyNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *APIKeyRepository) ListByPartner(ctx context.Context, partnerID string) ([]*domainCredential.APIKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainCredential.APIKey, 0)
	for _, k := range r.byID {
		if k.PartnerID == partnerID {
			c := *k
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.byID[id]
	if !ok {
		return domainCredential.ErrAPIKeyNotFound
	}
	if k.RevokedAt == nil {
		revoked := at
		k.RevokedAt = &revoked
	}
	return nil
}

func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.byID[id]
	if !ok {
		return domainCredential.ErrAPIKeyNotFound
	}
	used := at
	k.LastUsedAt = &used
	return nil
}
