package telemetry

import (
	"context"
	"time"

	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"
)

// Latest returns the newest reading of every device visible to p.
func (s *Service) Latest(ctx context.Context, p rbac.Principal, organization string) ([]*ReadingResponse, error) {
	org, err := rbac.ScopeOrganization(p, rbac.ActionReadTelemetry, organization)
	if err != nil {
		return nil, err
	}

	readings, err := s.readings.LatestByOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	return ToReadingResponses(readings), nil
}

// authorizeDevice loads deviceID and checks p may read its telemetry.
func (s *Service) authorizeDevice(ctx context.Context, p rbac.Principal, deviceID string) (string, error) {
	deviceID = utils.SanitizeIdentifier(deviceID)
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return "", err
	}
	if err := rbac.Authorize(p, rbac.ActionReadTelemetry, device.Organization); err != nil {
		return "", err
	}
	return device.ID, nil
}

func (s *Service) DeviceLatest(ctx context.Context, p rbac.Principal, deviceID string) (*ReadingResponse, error) {
	id, err := s.authorizeDevice(ctx, p, deviceID)
	if err != nil {
		return nil, err
	}

	reading, err := s.readings.Latest(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToReadingResponse(reading), nil
}

// History returns the device's readings of the last hours, oldest first.
func (s *Service) History(ctx context.Context, p rbac.Principal, deviceID string, hours int) ([]*ReadingResponse, error) {
	if hours == 0 {
		hours = DefaultHistoryHr
	}
	if hours < 1 || hours > MaxHistoryHr {
		return nil, appErrors.NewValidationError("hours", "hours must be within [1, 168]")
	}

	id, err := s.authorizeDevice(ctx, p, deviceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	readings, err := s.readings.Window(ctx, []string{id}, now.Add(-time.Duration(hours)*time.Hour), now)
	if err != nil {
		return nil, err
	}
	return ToReadingResponses(readings), nil
}

// Query returns readings matching req within p's scope, newest first.
func (s *Service) Query(ctx context.Context, p rbac.Principal, req *QueryRequest) ([]*ReadingResponse, error) {
	org, err := rbac.ScopeOrganization(p, rbac.ActionReadTelemetry, req.Organization)
	if err != nil {
		return nil, err
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, appErrors.NewValidationError("limit", "limit must be within [1, 1000]")
	}
	if req.Start != nil && req.End != nil && req.End.Before(*req.Start) {
		return nil, appErrors.NewValidationError("end", "end must not be before start")
	}

	filter := domainTelemetry.Filter{
		Organization: org,
		Status:       status,
		Start:        req.Start,
		End:          req.End,
		Limit:        limit,
	}
	if id := utils.SanitizeIdentifier(req.DeviceID); id != "" {
		filter.DeviceIDs = []string{id}
	}

	readings, err := s.readings.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToReadingResponses(readings), nil
}

// Summary aggregates device counts and 24 hour averages within p's scope.
func (s *Service) Summary(ctx context.Context, p rbac.Principal, organization string) (*SummaryResponse, error) {
	org, err := rbac.ScopeOrganization(p, rbac.ActionReadTelemetry, organization)
	if err != nil {
		return nil, err
	}

	devices, err := s.devices.List(ctx, org)
	if err != nil {
		return nil, err
	}
	latest, err := s.readings.LatestByOrganization(ctx, org)
	if err != nil {
		return nil, err
	}

	since := s.now().Add(-24 * time.Hour)
	recent, err := s.readings.Query(ctx, domainTelemetry.Filter{Organization: org, Start: &since})
	if err != nil {
		return nil, err
	}

	summary := &SummaryResponse{
		Organization: org,
		TotalDevices: len(devices),
		Readings24h:  len(recent),
	}
	for _, r := range latest {
		if r.Status == domainTelemetry.StatusActive {
			summary.ActiveDevices++
		}
	}

	var latency, loss, throughput, signal mean
	for _, r := range recent {
		latency.add(&r.LatencyMs)
		loss.add(&r.PacketLossPercent)
		throughput.add(r.ThroughputMbps)
		signal.add(r.SignalStrength)
	}
	summary.AvgLatencyMs = latency.value()
	summary.AvgPacketLossPercent = loss.value()
	summary.AvgThroughputMbps = throughput.value()
	summary.AvgSignalStrength = signal.value()

	return summary, nil
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}
