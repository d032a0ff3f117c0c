package sla

import (
	"time"
)

const (
	DefaultWindowHours = 720
	MaxWindowHours     = 2160
)

// WindowRequest selects the evaluation period: either the last Hours, or an
// explicit Start/End pair.
type WindowRequest struct {
	Hours int        `form:"hours"`
	Start *time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End   *time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
}

// Report is the SLA verdict of one network over one period. Compliant is the
// uptime verdict; the latency fields are informational.
type Report struct {
	NetworkID             string    `json:"network_id"`
	Organization          string    `json:"organization"`
	PeriodStart           time.Time `json:"period_start"`
	PeriodEnd             time.Time `json:"period_end"`
	TotalReadings         int       `json:"total_readings"`
	OfflineReadings       int       `json:"offline_readings"`
	ObservedUptimePercent float64   `json:"observed_uptime_percent"`
	SLAUptimeTarget       float64   `json:"sla_uptime_target"`
	Compliant             bool      `json:"compliant"`
	Margin                float64   `json:"margin"`
	AvgLatencyMs          *float64  `json:"avg_latency_ms"`
	LatencyTargetMs       float64   `json:"latency_target_ms"`
	LatencyCompliant      *bool     `json:"latency_compliant"`
	ComputedAt            time.Time `json:"computed_at"`
}
