package telemetry

import (
	"context"
	"errors"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/logger"
	"spacelink-gateway/internal/metrics"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"

	"go.uber.org/zap"
)

// Service is the telemetry ingestor and the read side over stored readings.
type Service struct {
	readings domainTelemetry.Repository
	devices  domainDevice.Repository
	now      func() time.Time
}

// NewService creates a new telemetry service
func NewService(readings domainTelemetry.Repository, devices domainDevice.Repository) *Service {
	return &Service{
		readings: readings,
		devices:  devices,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit ingests one reading on behalf of a device principal. Checks run in a
// fixed order: device binding, field validation, tenancy. A reading whose
// (device_id, timestamp) is already stored is acknowledged as a duplicate
// without a second write.
func (s *Service) Submit(ctx context.Context, principal rbac.Principal, req *ReadingRequest) (*Ack, error) {
	ack, err := s.submit(ctx, principal, req)
	if err != nil {
		metrics.TelemetryReadingsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, err
	}

	if ack.Duplicate {
		metrics.TelemetryReadingsTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
	} else {
		metrics.TelemetryReadingsTotal.WithLabelValues(metrics.ResultAccepted).Inc()
	}
	return ack, nil
}

func (s *Service) submit(ctx context.Context, principal rbac.Principal, req *ReadingRequest) (*Ack, error) {
	if req == nil {
		return nil, appErrors.NewValidationError("body", "reading is required")
	}
	if !principal.IsDevice() || principal.DeviceID != utils.SanitizeIdentifier(req.DeviceID) {
		return nil, appErrors.ErrDeviceMismatch
	}

	reading, err := normalize(req, s.now())
	if err != nil {
		return nil, err
	}

	if reading.Organization == "" {
		reading.Organization = principal.Organization
	}
	if err := rbac.Authorize(principal, rbac.ActionWriteTelemetry, reading.Organization); err != nil {
		return nil, err
	}

	device, created, err := s.devices.CreateIfAbsent(ctx, &domainDevice.Device{
		ID:           reading.DeviceID,
		Organization: reading.Organization,
		Latitude:     reading.Latitude,
		Longitude:    reading.Longitude,
		Status:       domainDevice.StatusActive,
		CreatedAt:    reading.ReceivedAt,
		UpdatedAt:    reading.ReceivedAt,
	})
	if err != nil {
		return nil, err
	}
	if device.Organization != reading.Organization {
		return nil, appErrors.ErrTenantMismatch
	}
	if !device.IsActive() {
		return nil, appErrors.ErrDeviceInactive
	}
	if created {
		logger.Info("Device registered on first telemetry",
			zap.String("device_id", device.ID),
			zap.String("organization", device.Organization),
			zap.String("event", "device_registered"),
		)
	}

	inserted, err := s.readings.Append(ctx, reading)
	if err != nil {
		return nil, err
	}

	if err := s.devices.UpdateLastSeen(ctx, reading.DeviceID, reading.ReceivedAt); err != nil {
		logger.Warn("Failed to update device last seen",
			zap.String("device_id", reading.DeviceID),
			zap.Error(err),
		)
	}

	if inserted {
		logger.Debug("Telemetry accepted",
			zap.String("device_id", reading.DeviceID),
			zap.Time("timestamp", reading.Timestamp),
			zap.String("status", string(reading.Status)),
			zap.String("event", "telemetry_accepted"),
		)
	} else {
		logger.Debug("Duplicate telemetry ignored",
			zap.String("device_id", reading.DeviceID),
			zap.Time("timestamp", reading.Timestamp),
			zap.String("event", "telemetry_duplicate"),
		)
	}

	return &Ack{
		Accepted:  true,
		Duplicate: !inserted,
		DeviceID:  reading.DeviceID,
		Timestamp: reading.Timestamp,
	}, nil
}

// SubmitBatch applies Submit to every element independently. Only an empty or
// oversized batch fails as a whole.
func (s *Service) SubmitBatch(ctx context.Context, principal rbac.Principal, batch []*ReadingRequest) (*BatchResult, error) {
	if len(batch) == 0 {
		return nil, appErrors.NewValidationError("telemetry", "batch must contain at least one reading")
	}
	if len(batch) > MaxBatchSize {
		return nil, appErrors.NewValidationError("telemetry", "batch must contain at most 1000 readings")
	}

	result := &BatchResult{
		Submitted: len(batch),
		Results:   make([]*ItemResult, 0, len(batch)),
	}

	for i, req := range batch {
		item := &ItemResult{Index: i}
		if req != nil {
			item.DeviceID = utils.SanitizeIdentifier(req.DeviceID)
		}

		ack, err := s.Submit(ctx, principal, req)
		switch {
		case err != nil:
			item.Error = appErrors.Code(err)
			item.Field = appErrors.Field(err)
			item.Message = itemMessage(err, item.Error)
			result.Rejected++
		case ack.Duplicate:
			item.Accepted = true
			item.Duplicate = true
			result.Duplicates++
		default:
			item.Accepted = true
			result.Accepted++
		}
		result.Results = append(result.Results, item)
	}

	logger.Info("Telemetry batch processed",
		zap.String("device_id", principal.DeviceID),
		zap.Int("submitted", result.Submitted),
		zap.Int("accepted", result.Accepted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("rejected", result.Rejected),
		zap.String("event", "telemetry_batch"),
	)

	return result, nil
}

func itemMessage(err error, code string) string {
	if code == appErrors.CodeInternal {
		return "internal error"
	}
	var validationErr *appErrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return err.Error()
}
