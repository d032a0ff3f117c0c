package partner

import (
	"context"
	"strings"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	domainPartner "spacelink-gateway/internal/domain/partner"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/rbac"
	"spacelink-gateway/internal/usecase/auth"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idPrefix = "partner_"

func NewPartnerID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// KeyIssuer is the part of the auth gateway that manages device API keys.
type KeyIssuer interface {
	GenerateAPIKey(ctx context.Context, req auth.GenerateKeyRequest) (*auth.GeneratedAPIKey, error)
	ListAPIKeys(ctx context.Context, partnerID string) ([]*auth.APIKeyResponse, error)
	RevokeAPIKey(ctx context.Context, partnerID string, keyID uuid.UUID) error
}

// Service implements partner onboarding and partner-scoped key management
type Service struct {
	partners domainPartner.Repository
	devices  domainDevice.Repository
	readings domainTelemetry.Repository
	keys     KeyIssuer
	now      func() time.Time
}

// NewService creates a new partner service
func NewService(
	partners domainPartner.Repository,
	devices domainDevice.Repository,
	readings domainTelemetry.Repository,
	keys KeyIssuer,
) *Service {
	return &Service{
		partners: partners,
		devices:  devices,
		readings: readings,
		keys:     keys,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) OnboardPartner(ctx context.Context, p rbac.Principal, req *OnboardPartnerRequest) (*PartnerResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	org := utils.SanitizeIdentifier(req.Organization)
	if err := rbac.Authorize(p, rbac.ActionWritePartners, org); err != nil {
		return nil, err
	}

	tier := domainPartner.TierStandard
	if req.Tier != "" {
		tier = domainPartner.Tier(req.Tier)
	}
	var email *string
	if req.ContactEmail != nil {
		e := utils.SanitizeEmail(*req.ContactEmail)
		email = &e
	}

	now := s.now()
	partner := &domainPartner.Partner{
		ID:               NewPartnerID(),
		Organization:     org,
		Name:             utils.SanitizeText(req.Name),
		Type:             domainPartner.Type(req.PartnerType),
		Tier:             tier,
		ContactEmail:     email,
		APIAccessEnabled: true,
		Status:           domainPartner.StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.partners.Create(ctx, partner); err != nil {
		return nil, err
	}

	logger.Info("Partner onboarded",
		zap.String("partner_id", partner.ID),
		zap.String("organization", org),
		zap.String("tier", string(tier)),
		zap.String("event", "partner_onboarded"),
	)

	return ToPartnerResponse(partner), nil
}

// load fetches a partner and checks p may perform action on it.
func (s *Service) load(ctx context.Context, p rbac.Principal, action rbac.Action, partnerID string) (*domainPartner.Partner, error) {
	partner, err := s.partners.GetByID(ctx, utils.SanitizeIdentifier(partnerID))
	if err != nil {
		return nil, err
	}
	if err := rbac.Authorize(p, action, partner.Organization); err != nil {
		return nil, err
	}
	return partner, nil
}

func (s *Service) GetPartner(ctx context.Context, p rbac.Principal, partnerID string) (*PartnerResponse, error) {
	partner, err := s.load(ctx, p, rbac.ActionReadPartners, partnerID)
	if err != nil {
		return nil, err
	}
	return ToPartnerResponse(partner), nil
}

func (s *Service) ListPartners(ctx context.Context, p rbac.Principal, organization string) ([]*PartnerResponse, error) {
	org, err := rbac.ScopeOrganization(p, rbac.ActionReadPartners, organization)
	if err != nil {
		return nil, err
	}

	partners, err := s.partners.List(ctx, org)
	if err != nil {
		return nil, err
	}

	out := make([]*PartnerResponse, len(partners))
	for i, partner := range partners {
		out[i] = ToPartnerResponse(partner)
	}
	return out, nil
}

func (s *Service) UpdatePartner(ctx context.Context, p rbac.Principal, partnerID string, req *UpdatePartnerRequest) (*PartnerResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	partner, err := s.load(ctx, p, rbac.ActionWritePartners, partnerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		partner.Name = utils.SanitizeText(*req.Name)
	}
	if req.Tier != nil {
		partner.Tier = domainPartner.Tier(*req.Tier)
	}
	if req.ContactEmail != nil {
		e := utils.SanitizeEmail(*req.ContactEmail)
		partner.ContactEmail = &e
	}
	if req.APIAccessEnabled != nil {
		partner.APIAccessEnabled = *req.APIAccessEnabled
	}

	return s.save(ctx, p, partner, "partner_updated")
}

func (s *Service) SuspendPartner(ctx context.Context, p rbac.Principal, partnerID string) (*PartnerResponse, error) {
	return s.setStatus(ctx, p, partnerID, domainPartner.StatusSuspended, "partner_suspended")
}

func (s *Service) ActivatePartner(ctx context.Context, p rbac.Principal, partnerID string) (*PartnerResponse, error) {
	return s.setStatus(ctx, p, partnerID, domainPartner.StatusActive, "partner_activated")
}

func (s *Service) setStatus(ctx context.Context, p rbac.Principal, partnerID string, status domainPartner.Status, event string) (*PartnerResponse, error) {
	partner, err := s.load(ctx, p, rbac.ActionWritePartners, partnerID)
	if err != nil {
		return nil, err
	}
	partner.Status = status
	return s.save(ctx, p, partner, event)
}

func (s *Service) save(ctx context.Context, p rbac.Principal, partner *domainPartner.Partner, event string) (*PartnerResponse, error) {
	partner.UpdatedAt = s.now()
	if err := s.partners.Update(ctx, partner); err != nil {
		return nil, err
	}

	logger.Info("Partner updated",
		zap.String("partner_id", partner.ID),
		zap.String("status", string(partner.Status)),
		zap.Bool("api_access_enabled", partner.APIAccessEnabled),
		zap.String("updated_by", p.ID),
		zap.String("event", event),
	)

	return ToPartnerResponse(partner), nil
}

// GenerateAPIKey issues a device key under the partner's organization. The
// plaintext key is only ever returned here.
func (s *Service) GenerateAPIKey(ctx context.Context, p rbac.Principal, partnerID, deviceID string) (*auth.GeneratedAPIKey, error) {
	partner, err := s.load(ctx, p, rbac.ActionGenerateAPIKey, partnerID)
	if err != nil {
		return nil, err
	}
	if !partner.IsActive() {
		return nil, appErrors.ErrPartnerSuspended
	}
	if !partner.APIAccessEnabled {
		return nil, appErrors.ErrAPIAccessDisabled
	}

	return s.keys.GenerateAPIKey(ctx, auth.GenerateKeyRequest{
		DeviceID:     deviceID,
		Organization: partner.Organization,
		PartnerID:    partner.ID,
	})
}

func (s *Service) ListAPIKeys(ctx context.Context, p rbac.Principal, partnerID string) ([]*auth.APIKeyResponse, error) {
	partner, err := s.load(ctx, p, rbac.ActionReadPartners, partnerID)
	if err != nil {
		return nil, err
	}
	return s.keys.ListAPIKeys(ctx, partner.ID)
}

func (s *Service) RevokeAPIKey(ctx context.Context, p rbac.Principal, partnerID string, keyID uuid.UUID) error {
	partner, err := s.load(ctx, p, rbac.ActionRevokeAPIKey, partnerID)
	if err != nil {
		return err
	}
	return s.keys.RevokeAPIKey(ctx, partner.ID, keyID)
}

// IntegrationStatus summarizes device, key and telemetry activity of the
// partner's organization.
func (s *Service) IntegrationStatus(ctx context.Context, p rbac.Principal, partnerID string) (*IntegrationStatusResponse, error) {
	partner, err := s.load(ctx, p, rbac.ActionReadPartners, partnerID)
	if err != nil {
		return nil, err
	}

	devices, err := s.devices.List(ctx, partner.Organization)
	if err != nil {
		return nil, err
	}
	keys, err := s.keys.ListAPIKeys(ctx, partner.ID)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-24 * time.Hour)
	recent, err := s.readings.Count(ctx, domainTelemetry.Filter{Organization: partner.Organization, Start: &since})
	if err != nil {
		return nil, err
	}
	latest, err := s.readings.LatestByOrganization(ctx, partner.Organization)
	if err != nil {
		return nil, err
	}

	status := &IntegrationStatusResponse{
		PartnerID:        partner.ID,
		Organization:     partner.Organization,
		Status:           string(partner.Status),
		APIAccessEnabled: partner.APIAccessEnabled,
		DeviceCount:      len(devices),
		TotalAPIKeys:     len(keys),
		Readings24h:      recent,
	}
	for _, k := range keys {
		if k.Active {
			status.ActiveAPIKeys++
		}
	}
	for _, r := range latest {
		if status.LastReadingAt == nil || r.Timestamp.After(*status.LastReadingAt) {
			ts := r.Timestamp
			status.LastReadingAt = &ts
		}
	}
	status.IntegrationHealthy = partner.IsActive() && partner.APIAccessEnabled && recent > 0

	return status, nil
}
