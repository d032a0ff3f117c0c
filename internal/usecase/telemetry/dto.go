package telemetry

import (
	"time"

	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
)

const (
	MaxBatchSize     = 1000
	DefaultLimit     = 100
	MaxLimit         = 1000
	DefaultHistoryHr = 24
	MaxHistoryHr     = 168
)

// ReadingRequest is an inbound reading as submitted by a device. Pointer fields
// distinguish an omitted value from zero.
type ReadingRequest struct {
	DeviceID          string     `json:"device_id"`
	Organization      string     `json:"organization"`
	Timestamp         *time.Time `json:"timestamp"`
	LatencyMs         *float64   `json:"latency_ms"`
	PacketLossPercent *float64   `json:"packet_loss_percent"`
	SignalStrength    *float64   `json:"signal_strength"`
	ThroughputMbps    *float64   `json:"throughput_mbps"`
	Throughput        *float64   `json:"throughput,omitempty"`
	JitterMs          *float64   `json:"jitter_ms"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	Status            string     `json:"status"`
	FirmwareVersion   *string    `json:"firmware_version"`
	ErrorMessage      *string    `json:"error_message"`
}

type BatchRequest struct {
	Telemetry []*ReadingRequest `json:"telemetry"`
}

// Ack acknowledges an accepted reading. Duplicate is set when the key was
// already stored and nothing was written.
type Ack struct {
	Accepted  bool      `json:"accepted"`
	Duplicate bool      `json:"duplicate"`
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}

type ItemResult struct {
	Index     int    `json:"index"`
	DeviceID  string `json:"device_id"`
	Accepted  bool   `json:"accepted"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	Field     string `json:"field,omitempty"`
}

type BatchResult struct {
	Submitted  int           `json:"records_submitted"`
	Accepted   int           `json:"records_accepted"`
	Duplicates int           `json:"records_duplicate"`
	Rejected   int           `json:"records_rejected"`
	Results    []*ItemResult `json:"results"`
}

type ReadingResponse struct {
	DeviceID          string    `json:"device_id"`
	Organization      string    `json:"organization"`
	Timestamp         time.Time `json:"timestamp"`
	LatencyMs         float64   `json:"latency_ms"`
	PacketLossPercent float64   `json:"packet_loss_percent"`
	SignalStrength    *float64  `json:"signal_strength"`
	ThroughputMbps    *float64  `json:"throughput_mbps"`
	JitterMs          *float64  `json:"jitter_ms"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	Status            string    `json:"status"`
	FirmwareVersion   *string   `json:"firmware_version"`
	ErrorMessage      *string   `json:"error_message"`
	ReceivedAt        time.Time `json:"received_at"`
}

// QueryRequest filters reading history. Times are RFC3339.
type QueryRequest struct {
	DeviceID     string     `form:"device_id"`
	Organization string     `form:"organization"`
	Status       string     `form:"status"`
	Start        *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End          *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit        int        `form:"limit"`
}

type SummaryResponse struct {
	Organization         string   `json:"organization,omitempty"`
	TotalDevices         int      `json:"total_devices"`
	ActiveDevices        int      `json:"active_devices"`
	Readings24h          int      `json:"readings_24h"`
	AvgLatencyMs         *float64 `json:"avg_latency_ms"`
	AvgPacketLossPercent *float64 `json:"avg_packet_loss_percent"`
	AvgThroughputMbps    *float64 `json:"avg_throughput_mbps"`
	AvgSignalStrength    *float64 `json:"avg_signal_strength"`
}

func ToReadingResponse(r *domainTelemetry.Reading) *ReadingResponse {
	return &ReadingResponse{
		DeviceID:          r.DeviceID,
		Organization:      r.Organization,
		Timestamp:         r.Timestamp,
		LatencyMs:         r.LatencyMs,
		PacketLossPercent: r.PacketLossPercent,
		SignalStrength:    r.SignalStrength,
		ThroughputMbps:    r.ThroughputMbps,
		JitterMs:          r.JitterMs,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Status:            string(r.Status),
		FirmwareVersion:   r.FirmwareVersion,
		ErrorMessage:      r.ErrorMessage,
		ReceivedAt:        r.ReceivedAt,
	}
}

func ToReadingResponses(readings []*domainTelemetry.Reading) []*ReadingResponse {
	out := make([]*ReadingResponse, len(readings))
	for i, r := range readings {
		out[i] = ToReadingResponse(r)
	}
	return out
}
