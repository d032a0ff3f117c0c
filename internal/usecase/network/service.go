package network

import (
	"context"
	"strings"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	domainNetwork "spacelink-gateway/internal/domain/network"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idPrefix = "net_"

// NewNetworkID returns an identifier of the form net_<12 hex>.
func NewNetworkID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Service is the network registry. Every member of a network belongs to the
// network's organization.
type Service struct {
	networks domainNetwork.Repository
	devices  domainDevice.Repository
	now      func() time.Time
}

// NewService creates a new network service
func NewService(networks domainNetwork.Repository, devices domainDevice.Repository) *Service {
	return &Service{
		networks: networks,
		devices:  devices,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateNetwork(ctx context.Context, p rbac.Principal, req *CreateNetworkRequest) (*NetworkResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	org := utils.SanitizeIdentifier(req.Organization)
	if org == "" {
		org = p.Organization
	}
	if err := rbac.Authorize(p, rbac.ActionWriteNetworks, org); err != nil {
		return nil, err
	}

	members := make([]string, 0, len(req.DeviceIDs))
	seen := make(map[string]struct{}, len(req.DeviceIDs))
	for _, raw := range req.DeviceIDs {
		id := utils.SanitizeIdentifier(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		if err := s.checkMember(ctx, org, id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	now := s.now()
	network := &domainNetwork.Network{
		ID:                 NewNetworkID(),
		Organization:       org,
		Name:               utils.SanitizeText(req.Name),
		Description:        utils.SanitizeOptionalText(req.Description),
		Type:               domainNetwork.Type(req.NetworkType),
		Status:             domainNetwork.StatusActive,
		SLAUptimeTarget:    domainNetwork.DefaultSLAUptimeTarget,
		SLALatencyTargetMs: domainNetwork.DefaultSLALatencyTargetMs,
		DeviceIDs:          members,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.SLAUptimeTarget != nil {
		network.SLAUptimeTarget = *req.SLAUptimeTarget
	}
	if req.SLALatencyTargetMs != nil {
		network.SLALatencyTargetMs = *req.SLALatencyTargetMs
	}

	if err := s.networks.Create(ctx, network); err != nil {
		return nil, err
	}

	logger.Info("Network created",
		zap.String("network_id", network.ID),
		zap.String("organization", org),
		zap.Int("devices", len(members)),
		zap.String("created_by", p.ID),
		zap.String("event", "network_created"),
	)

	return ToNetworkResponse(network), nil
}

// checkMember verifies deviceID exists and belongs to org.
func (s *Service) checkMember(ctx context.Context, org, deviceID string) error {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if device.Organization != org {
		return appErrors.ErrCrossTenantMembership
	}
	return nil
}

// load fetches a network and checks p may perform action on it.
func (s *Service) load(ctx context.Context, p rbac.Principal, action rbac.Action, networkID string) (*domainNetwork.Network, error) {
	network, err := s.networks.GetByID(ctx, utils.SanitizeIdentifier(networkID))
	if err != nil {
		return nil, err
	}
	if err := rbac.Authorize(p, action, network.Organization); err != nil {
		return nil, err
	}
	return network, nil
}

func (s *Service) GetNetwork(ctx context.Context, p rbac.Principal, networkID string) (*NetworkResponse, error) {
	network, err := s.load(ctx, p, rbac.ActionReadNetworks, networkID)
	if err != nil {
		return nil, err
	}
	return ToNetworkResponse(network), nil
}

func (s *Service) ListNetworks(ctx context.Context, p rbac.Principal, organization string) ([]*NetworkResponse, error) {
	org, err := rbac.ScopeOrganization(p, rbac.ActionReadNetworks, organization)
	if err != nil {
		return nil, err
	}

	networks, err := s.networks.List(ctx, org)
	if err != nil {
		return nil, err
	}

	out := make([]*NetworkResponse, len(networks))
	for i, n := range networks {
		out[i] = ToNetworkResponse(n)
	}
	return out, nil
}

func (s *Service) UpdateNetwork(ctx context.Context, p rbac.Principal, networkID string, req *UpdateNetworkRequest) (*NetworkResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	network, err := s.load(ctx, p, rbac.ActionWriteNetworks, networkID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		network.Name = utils.SanitizeText(*req.Name)
	}
	if req.Description != nil {
		network.Description = utils.SanitizeOptionalText(req.Description)
	}
	if req.Status != nil {
		network.Status = *req.Status
	}
	if req.SLAUptimeTarget != nil {
		network.SLAUptimeTarget = *req.SLAUptimeTarget
	}
	if req.SLALatencyTargetMs != nil {
		network.SLALatencyTargetMs = *req.SLALatencyTargetMs
	}
	network.UpdatedAt = s.now()

	if err := s.networks.Update(ctx, network); err != nil {
		return nil, err
	}

	logger.Info("Network updated",
		zap.String("network_id", network.ID),
		zap.Float64("sla_uptime_target", network.SLAUptimeTarget),
		zap.String("updated_by", p.ID),
		zap.String("event", "network_updated"),
	)

	return ToNetworkResponse(network), nil
}

// DeleteNetwork removes the network and its memberships. Telemetry of former
// members stays in the store.
func (s *Service) DeleteNetwork(ctx context.Context, p rbac.Principal, networkID string) error {
	network, err := s.load(ctx, p, rbac.ActionDeleteNetworks, networkID)
	if err != nil {
		return err
	}

	if err := s.networks.Delete(ctx, network.ID); err != nil {
		return err
	}

	logger.Info("Network deleted",
		zap.String("network_id", network.ID),
		zap.String("deleted_by", p.ID),
		zap.String("event", "network_deleted"),
	)
	return nil
}

// AddDevice adds deviceID to the network. Adding an existing member is a no-op.
func (s *Service) AddDevice(ctx context.Context, p rbac.Principal, networkID string, req *AddDeviceRequest) (*NetworkResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	network, err := s.load(ctx, p, rbac.ActionWriteNetworks, networkID)
	if err != nil {
		return nil, err
	}

	deviceID := utils.SanitizeIdentifier(req.DeviceID)
	if err := s.checkMember(ctx, network.Organization, deviceID); err != nil {
		return nil, err
	}

	if !network.HasDevice(deviceID) {
		if err := s.networks.AddDevice(ctx, network.ID, deviceID); err != nil {
			return nil, err
		}
		logger.Info("Device added to network",
			zap.String("network_id", network.ID),
			zap.String("device_id", deviceID),
			zap.String("event", "network_device_added"),
		)
	}

	return s.GetNetwork(ctx, p, network.ID)
}

func (s *Service) RemoveDevice(ctx context.Context, p rbac.Principal, networkID, deviceID string) (*NetworkResponse, error) {
	network, err := s.load(ctx, p, rbac.ActionWriteNetworks, networkID)
	if err != nil {
		return nil, err
	}

	deviceID = utils.SanitizeIdentifier(deviceID)
	if !network.HasDevice(deviceID) {
		return nil, domainNetwork.ErrMemberNotFound
	}
	if err := s.networks.RemoveDevice(ctx, network.ID, deviceID); err != nil {
		return nil, err
	}

	logger.Info("Device removed from network",
		zap.String("network_id", network.ID),
		zap.String("device_id", deviceID),
		zap.String("event", "network_device_removed"),
	)

	return s.GetNetwork(ctx, p, network.ID)
}
