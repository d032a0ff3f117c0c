package memory

import (
	"context"
	"sort"
	"sync"

	domainPartner "spacelink-gateway/internal/domain/partner"
)

// PartnerRepository implements domainPartner.Repository in memory.
type PartnerRepository struct {
	mu       sync.RWMutex
	partners map[string]*domainPartner.Partner
}

func NewPartnerRepository() *PartnerRepository {
	return &PartnerRepository{partners: make(map[string]*domainPartner.Partner)}
}

func (r *PartnerRepository) Create(ctx context.Context, p *domainPartner.Partner) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.partners[p.ID]; ok {
		return domainPartner.ErrPartnerAlreadyExists
	}
	c := *p
	r.partners[p.ID] = &c
	return nil
}

func (r *PartnerRepository) GetByID(ctx context.Context, partnerID string) (*domainPartner.Partner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.partners[partnerID]
	if !ok {
		return nil, domainPartner.ErrPartnerNotFound
	}
	c := *p
	return &c, nil
}

func (r *PartnerRepository) List(ctx context.Context, organization string) ([]*domainPartner.Partner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainPartner.Partner, 0, len(r.partners))
	for _, p := range r.partners {
		if organization == "" || p.Organization == organization {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PartnerRepository) Update(ctx context.Context, p *domainPartner.Partner) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.partners[p.ID]; !ok {
		return domainPartner.ErrPartnerNotFound
	}
	c := *p
	r.partners[p.ID] = &c
	return nil
}
