package partner

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, partnerID string) (*Partner, error)
	// List returns partners of organization, or every partner when organization is empty.
	List(ctx context.Context, organization string) ([]*Partner, error)
	Update(ctx context.Context, p *Partner) error
}
