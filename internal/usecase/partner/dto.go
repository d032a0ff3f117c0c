package partner

import (
	"time"

	domainPartner "spacelink-gateway/internal/domain/partner"
)

type OnboardPartnerRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Organization string  `json:"organization" validate:"required,max=128"`
	PartnerType  string  `json:"partner_type" validate:"required,oneof=reseller integrator enterprise government"`
	Tier         string  `json:"tier" validate:"omitempty,oneof=standard premium enterprise"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email,max=255"`
}

type UpdatePartnerRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Tier             *string `json:"tier" validate:"omitempty,oneof=standard premium enterprise"`
	ContactEmail     *string `json:"contact_email" validate:"omitempty,email,max=255"`
	APIAccessEnabled *bool   `json:"api_access_enabled"`
}

type PartnerResponse struct {
	PartnerID        string    `json:"partner_id"`
	Organization     string    `json:"organization"`
	Name             string    `json:"name"`
	PartnerType      string    `json:"partner_type"`
	Tier             string    `json:"tier"`
	ContactEmail     *string   `json:"contact_email"`
	APIAccessEnabled bool      `json:"api_access_enabled"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type IntegrationStatusResponse struct {
	PartnerID          string     `json:"partner_id"`
	Organization       string     `json:"organization"`
	Status             string     `json:"status"`
	APIAccessEnabled   bool       `json:"api_access_enabled"`
	DeviceCount        int        `json:"device_count"`
	ActiveAPIKeys      int        `json:"active_api_keys"`
	TotalAPIKeys       int        `json:"total_api_keys"`
	Readings24h        int64      `json:"readings_24h"`
	LastReadingAt      *time.Time `json:"last_reading_at"`
	IntegrationHealthy bool       `json:"integration_healthy"`
}

func ToPartnerResponse(p *domainPartner.Partner) *PartnerResponse {
	return &PartnerResponse{
		PartnerID:        p.ID,
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
