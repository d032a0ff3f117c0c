package telemetry

import (
	"math"
	"strings"
	"time"

	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"
)

const (
	maxFutureSkew      = 5 * time.Minute
	maxDeviceIDLength  = 128
	maxFirmwareLength  = 64
	maxErrorMsgLength  = 1024
	minSignalStrength  = -150.0
	maxSignalStrength  = 0.0
	timestampPrecision = time.Microsecond
)

// NormalizeTimestamp converts t to the canonical form used in the dedupe key.
func NormalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(timestampPrecision)
}

// normalize validates req and converts it into a stored reading. The first
// failing field is reported as a ValidationError; nothing is partially accepted.
func normalize(req *ReadingRequest, now time.Time) (*domainTelemetry.Reading, error) {
	deviceID := utils.SanitizeIdentifier(req.DeviceID)
	if deviceID == "" {
		return nil, appErrors.NewValidationError("device_id", "device_id is required")
	}
	if len(deviceID) > maxDeviceIDLength {
		return nil, appErrors.NewValidationError("device_id", "device_id must be at most 128 characters")
	}

	if req.LatencyMs == nil {
		return nil, appErrors.NewValidationError("latency_ms", "latency_ms is required")
	}
	if !finite(*req.LatencyMs) || *req.LatencyMs < 0 {
		return nil, appErrors.NewValidationError("latency_ms", "latency_ms must be a number >= 0")
	}

	if req.PacketLossPercent == nil {
		return nil, appErrors.NewValidationError("packet_loss_percent", "packet_loss_percent is required")
	}
	if loss := *req.PacketLossPercent; !finite(loss) || loss < 0 || loss > 100 {
		return nil, appErrors.NewValidationError("packet_loss_percent", "packet_loss_percent must be within [0, 100]")
	}

	if s := req.SignalStrength; s != nil && (!finite(*s) || *s < minSignalStrength || *s > maxSignalStrength) {
		return nil, appErrors.NewValidationError("signal_strength", "signal_strength must be within [-150, 0] dBm")
	}

	throughput := req.ThroughputMbps
	if throughput == nil {
		throughput = req.Throughput
	}
	if throughput != nil && (!finite(*throughput) || *throughput < 0) {
		return nil, appErrors.NewValidationError("throughput_mbps", "throughput_mbps must be a number >= 0")
	}

	if j := req.JitterMs; j != nil && (!finite(*j) || *j < 0) {
		return nil, appErrors.NewValidationError("jitter_ms", "jitter_ms must be a number >= 0")
	}
	if lat := req.Latitude; lat != nil && (!finite(*lat) || *lat < -90 || *lat > 90) {
		return nil, appErrors.NewValidationError("latitude", "latitude must be within [-90, 90]")
	}
	if lon := req.Longitude; lon != nil && (!finite(*lon) || *lon < -180 || *lon > 180) {
		return nil, appErrors.NewValidationError("longitude", "longitude must be within [-180, 180]")
	}

	status := domainTelemetry.StatusActive
	if s := strings.ToLower(strings.TrimSpace(req.Status)); s != "" {
		status = domainTelemetry.Status(s)
		if !status.Valid() {
			return nil, appErrors.NewValidationError("status", "status must be one of [active degraded offline maintenance]")
		}
	}

	ts := now
	if req.Timestamp != nil {
		if req.Timestamp.IsZero() {
			return nil, appErrors.NewValidationError("timestamp", "timestamp must be set")
		}
		ts = *req.Timestamp
	}
	ts = NormalizeTimestamp(ts)
	if ts.After(now.Add(maxFutureSkew)) {
		return nil, appErrors.NewValidationError("timestamp", "timestamp is too far in the future")
	}

	firmware := trimOptional(req.FirmwareVersion)
	if firmware != nil && len(*firmware) > maxFirmwareLength {
		return nil, appErrors.NewValidationError("firmware_version", "firmware_version must be at most 64 characters")
	}
	errorMessage := trimOptional(req.ErrorMessage)
	if errorMessage != nil && len(*errorMessage) > maxErrorMsgLength {
		return nil, appErrors.NewValidationError("error_message", "error_message must be at most 1024 characters")
	}

	return &domainTelemetry.Reading{
		DeviceID:          deviceID,
		Organization:      utils.SanitizeIdentifier(req.Organization),
		Timestamp:         ts,
		LatencyMs:         *req.LatencyMs,
		PacketLossPercent: *req.PacketLossPercent,
		SignalStrength:    req.SignalStrength,
		ThroughputMbps:    throughput,
		JitterMs:          req.JitterMs,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		Status:            status,
		FirmwareVersion:   firmware,
		ErrorMessage:      errorMessage,
		ReceivedAt:        NormalizeTimestamp(now),
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// parseStatus returns nil for an empty filter.
func parseStatus(s string) (*domainTelemetry.Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	status := domainTelemetry.Status(s)
	if !status.Valid() {
		return nil, appErrors.NewValidationError("status", "status must be one of [active degraded offline maintenance]")
	}
	return &status, nil
}
