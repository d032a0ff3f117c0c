package device

import (
	"context"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"go.uber.org/zap"
)

// Service implements device use cases
type Service struct {
	deviceRepo domainDevice.Repository
	now        func() time.Time
}

// NewService creates a new device service
func NewService(deviceRepo domainDevice.Repository) *Service {
	return &Service{
		deviceRepo: deviceRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RegisterDevice creates a device explicitly. Registering an existing device of
// the same organization returns it unchanged.
func (s *Service) RegisterDevice(ctx context.Context, p rbac.Principal, req *RegisterDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	org := utils.SanitizeIdentifier(req.Organization)
	if org == "" {
		org = p.Organization
	}
	if err := rbac.Authorize(p, rbac.ActionWriteDevices, org); err != nil {
		return nil, err
	}

	deviceID := utils.SanitizeIdentifier(req.DeviceID)
	if deviceID == "" {
		return nil, appErrors.NewValidationError("device_id", "device_id is required")
	}

	now := s.now()
	device, created, err := s.deviceRepo.CreateIfAbsent(ctx, &domainDevice.Device{
		ID:           deviceID,
		Organization: org,
		Name:         utils.SanitizeOptionalText(req.Name),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       domainDevice.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	if device.Organization != org {
		return nil, appErrors.ErrTenantMismatch
	}

	if created {
		logger.Info("Device registered",
			zap.String("device_id", device.ID),
			zap.String("organization", org),
			zap.String("registered_by", p.ID),
			zap.String("event", "device_registered"),
		)
	}

	return ToDeviceResponse(device, now), nil
}

func (s *Service) GetDevice(ctx context.Context, p rbac.Principal, deviceID string) (*DeviceResponse, error) {
	device, err := s.load(ctx, p, rbac.ActionReadDevices, deviceID)
	if err != nil {
		return nil, err
	}
	return ToDeviceResponse(device, s.now()), nil
}

func (s *Service) ListDevices(ctx context.Context, p rbac.Principal, filter *DeviceFilterRequest) (*DeviceListResponse, error) {
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, err
	}

	org, err := rbac.ScopeOrganization(p, rbac.ActionReadDevices, filter.Organization)
	if err != nil {
		return nil, err
	}

	// Set defaults
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	devices, err := s.deviceRepo.List(ctx, org)
	if err != nil {
		return nil, err
	}

	now := s.now()
	matched := make([]DeviceResponse, 0, len(devices))
	for _, d := range devices {
		resp := ToDeviceResponse(d, now)
		if filter.Status != "" && resp.Status != filter.Status {
			continue
		}
		if filter.IsOnline != nil && resp.IsOnline != *filter.IsOnline {
			continue
		}
		matched = append(matched, *resp)
	}

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}

	// Calculate total pages
	totalPages := total / filter.PageSize
	if total%filter.PageSize > 0 {
		totalPages++
	}

	return &DeviceListResponse{
		Devices:    matched[start:end],
		Total:      int64(total),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// DeactivateDevice stops a device from submitting telemetry. Its readings and
// memberships are kept.
func (s *Service) DeactivateDevice(ctx context.Context, p rbac.Principal, deviceID string) (*DeviceResponse, error) {
	device, err := s.load(ctx, p, rbac.ActionWriteDevices, deviceID)
	if err != nil {
		return nil, err
	}

	if err := ValidateDeviceStatus(device.Status, domainDevice.StatusDeactivated); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Deactivate(ctx, device.ID); err != nil {
		return nil, err
	}

	updated, err := s.deviceRepo.GetByID(ctx, device.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Device deactivated",
		zap.String("device_id", device.ID),
		zap.String("deactivated_by", p.ID),
		zap.String("event", "device_deactivated"),
	)

	return ToDeviceResponse(updated, s.now()), nil
}

func (s *Service) load(ctx context.Context, p rbac.Principal, action rbac.Action, deviceID string) (*domainDevice.Device, error) {
	device, err := s.deviceRepo.GetByID(ctx, utils.SanitizeIdentifier(deviceID))
	if err != nil {
		return nil, err
	}
	if err := rbac.Authorize(p, action, device.Organization); err != nil {
		return nil, err
	}
	return device, nil
}
