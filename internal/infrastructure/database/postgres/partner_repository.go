package postgres

import (
	"context"
	"errors"
	"fmt"

	domainPartner "spacelink-gateway/internal/domain/partner"
	"spacelink-gateway/internal/infrastructure/database/postgres/models"

	"gorm.io/gorm"
)

// PartnerRepository implements domainPartner.Repository
type PartnerRepository struct {
	db *DB
}

func NewPartnerRepository(db *DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, p *domainPartner.Partner) error {
	if err := r.db.DB.WithContext(ctx).Create(toPartnerModel(p)).Error; err != nil {
		if isDuplicateKey(err) {
			return domainPartner.ErrPartnerAlreadyExists
		}
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}

func (r *PartnerRepository) GetByID(ctx context.Context, partnerID string) (*domainPartner.Partner, error) {
	var dbModel models.PartnerModel
	err := r.db.DB.WithContext(ctx).Where("id = ?", partnerID).First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainPartner.ErrPartnerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return toPartnerEntity(&dbModel), nil
}

func (r *PartnerRepository) List(ctx context.Context, organization string) ([]*domainPartner.Partner, error) {
	var dbModels []models.PartnerModel

	db := r.db.DB.WithContext(ctx).Model(&models.PartnerModel{})
	if organization != "" {
		db = db.Where("organization = ?", organization)
	}
	if err := db.Order("created_at ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}

	partners := make([]*domainPartner.Partner, len(dbModels))
	for i := range dbModels {
		partners[i] = toPartnerEntity(&dbModels[i])
	}
	return partners, nil
}

func (r *PartnerRepository) Update(ctx context.Context, p *domainPartner.Partner) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.PartnerModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":               p.Name,
			"tier":               string(p.Tier),
			"contact_email":      p.ContactEmail,
			"api_access_enabled": p.APIAccessEnabled,
			"status":             string(p.Status),
			"updated_at":         p.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update partner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainPartner.ErrPartnerNotFound
	}
	return nil
}

func toPartnerModel(p *domainPartner.Partner) *models.PartnerModel {
	return &models.PartnerModel{
		ID:               p.ID,
		Organization:     p.Organization,
		Name:             p.Name,
		PartnerType:      string(p.Type),
		Tier:             string(p.Tier),
		ContactEmail:     p.ContactEmail,
		APIAccessEnabled: p.APIAccessEnabled,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPartnerEntity(m *models.PartnerModel) *domainPartner.Partner {
	return &domainPartner.Partner{
		ID:               m.ID,
		Organization:     m.Organization,
		Name:             m.Name,
		Type:             domainPartner.Type(m.PartnerType),
		Tier:             domainPartner.Tier(m.Tier),
		ContactEmail:     m.ContactEmail,
		APIAccessEnabled: m.APIAccessEnabled,
		Status:           domainPartner.Status(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
