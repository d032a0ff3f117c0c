package partner

import (
	"time"
)

type Type string

const (
	TypeReseller   Type = "reseller"
	TypeIntegrator Type = "integrator"
	TypeEnterprise Type = "enterprise"
	TypeGovernment Type = "government"
)

type Tier string

const (
	TierStandard   Tier = "standard"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Partner is an onboarded organization allowed to provision device keys.
type Partner struct {
	ID               string
	Organization     string
	Name             string
	Type             Type
	Tier             Tier
	ContactEmail     *string
	APIAccessEnabled bool
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *Partner) IsActive() bool {
	return p.Status == StatusActive
}
