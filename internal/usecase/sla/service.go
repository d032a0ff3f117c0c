package sla

import (
	"context"
	"math"
	"time"

	domainNetwork "spacelink-gateway/internal/domain/network"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"
)

// Evaluator compares observed uptime against a network's SLA target. Every call
// reads the store afresh; no verdict is cached.
type Evaluator struct {
	readings domainTelemetry.Repository
	networks domainNetwork.Repository
	now      func() time.Time
}

func NewEvaluator(readings domainTelemetry.Repository, networks domainNetwork.Repository) *Evaluator {
	return &Evaluator{
		readings: readings,
		networks: networks,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// ResolveWindow turns a request into a closed [from, to] period.
func ResolveWindow(req WindowRequest, now time.Time) (time.Time, time.Time, error) {
	if req.Start != nil || req.End != nil {
		if req.Start == nil {
			return time.Time{}, time.Time{}, appErrors.NewValidationError("start", "start is required with end")
		}
		end := now
		if req.End != nil {
			end = req.End.UTC()
		}
		start := req.Start.UTC()
		if !end.After(start) {
			return time.Time{}, time.Time{}, appErrors.NewValidationError("end", "end must be after start")
		}
		if end.Sub(start) > MaxWindowHours*time.Hour {
			return time.Time{}, time.Time{}, appErrors.NewValidationError("start", "period must be at most 2160 hours")
		}
		return start, end, nil
	}

	hours := req.Hours
	if hours == 0 {
		hours = DefaultWindowHours
	}
	if hours < 1 || hours > MaxWindowHours {
		return time.Time{}, time.Time{}, appErrors.NewValidationError("hours", "hours must be within [1, 2160]")
	}
	return now.Add(-time.Duration(hours) * time.Hour), now, nil
}

// Evaluate computes the SLA report of networkID for the requested window.
func (e *Evaluator) Evaluate(ctx context.Context, p rbac.Principal, networkID string, req WindowRequest) (*Report, error) {
	now := e.now()
	from, to, err := ResolveWindow(req, now)
	if err != nil {
		return nil, err
	}

	network, err := e.networks.GetByID(ctx, utils.SanitizeIdentifier(networkID))
	if err != nil {
		return nil, err
	}
	if err := rbac.Authorize(p, rbac.ActionReadNetworks, network.Organization); err != nil {
		return nil, err
	}

	readings, err := e.readings.Window(ctx, network.DeviceIDs, from, to)
	if err != nil {
		return nil, err
	}

	report := Compute(network, readings, from, to)
	report.ComputedAt = now
	return report, nil
}

// Compute is the pure SLA rule: uptime is the share of readings not offline;
// no readings means 0% uptime and non-compliance. Compliance is decided on the
// unrounded uptime, so observed == target is compliant.
func Compute(network *domainNetwork.Network, readings []*domainTelemetry.Reading, from, to time.Time) *Report {
	report := &Report{
		NetworkID:       network.ID,
		Organization:    network.Organization,
		PeriodStart:     from,
		PeriodEnd:       to,
		SLAUptimeTarget: network.SLAUptimeTarget,
		LatencyTargetMs: network.SLALatencyTargetMs,
		TotalReadings:   len(readings),
	}

	var latencySum float64
	for _, r := range readings {
		if r.Status == domainTelemetry.StatusOffline {
			report.OfflineReadings++
		}
		latencySum += r.LatencyMs
	}

	var uptime float64
	if report.TotalReadings > 0 {
		up := report.TotalReadings - report.OfflineReadings
		uptime = (100 * float64(up)) / float64(report.TotalReadings)

		avg := latencySum / float64(report.TotalReadings)
		latencyOK := avg <= network.SLALatencyTargetMs
		avg = round(avg, 2)
		report.AvgLatencyMs = &avg
		report.LatencyCompliant = &latencyOK
	}

	report.Compliant = report.TotalReadings > 0 && uptime >= network.SLAUptimeTarget
	report.ObservedUptimePercent = round(uptime, 3)
	report.Margin = round(uptime-network.SLAUptimeTarget, 3)
	return report
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
