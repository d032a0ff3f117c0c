package health

import (
	"time"
)

const (
	TargetDevice  = "device"
	TargetNetwork = "network"

	StatusOK     = "ok"
	StatusNoData = "no_data"
	ReasonNoData = "NoData"

	DefaultWindowHours = 24
	MaxWindowHours     = 168
)

// HealthScore is a derived view; it is never persisted.
type HealthScore struct {
	TargetID             string         `json:"target_id"`
	TargetType           string         `json:"target_type"`
	Organization         string         `json:"organization"`
	WindowHours          int            `json:"window_hours"`
	PeriodStart          time.Time      `json:"period_start"`
	PeriodEnd            time.Time      `json:"period_end"`
	Score                float64        `json:"score"`
	Status               string         `json:"status"`
	Reason               string         `json:"reason,omitempty"`
	Penalties            Penalties      `json:"penalties"`
	Readings             int            `json:"readings"`
	UptimePercent        *float64       `json:"uptime_percent"`
	AvgLatencyMs         *float64       `json:"avg_latency_ms"`
	AvgPacketLossPercent *float64       `json:"avg_packet_loss_percent"`
	AvgSignalStrength    *float64       `json:"avg_signal_strength"`
	Devices              []*DeviceScore `json:"devices,omitempty"`
	ComputedAt           time.Time      `json:"computed_at"`
}

type DeviceScore struct {
	DeviceID string  `json:"device_id"`
	Score    float64 `json:"score"`
	Status   string  `json:"status"`
	Readings int     `json:"readings"`
}

func statusOf(noData bool) string {
	if noData {
		return StatusNoData
	}
	return StatusOK
}
