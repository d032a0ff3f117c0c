package health

import (
	"context"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
	domainNetwork "spacelink-gateway/internal/domain/network"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
	"spacelink-gateway/internal/rbac"
	appErrors "spacelink-gateway/pkg/errors"
	"spacelink-gateway/pkg/utils"
)

// Scorer computes health scores on demand from stored readings. Results are
// recomputed on every call.
type Scorer struct {
	readings domainTelemetry.Repository
	devices  domainDevice.Repository
	networks domainNetwork.Repository
	policy   Policy
	now      func() time.Time
}

func NewScorer(
	readings domainTelemetry.Repository,
	devices domainDevice.Repository,
	networks domainNetwork.Repository,
	policy Policy,
) *Scorer {
	return &Scorer{
		readings: readings,
		devices:  devices,
		networks: networks,
		policy:   policy,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// ValidateWindow applies the default and bounds of the hours parameter.
func ValidateWindow(hours int) (int, error) {
	if hours == 0 {
		return DefaultWindowHours, nil
	}
	if hours < 1 || hours > MaxWindowHours {
		return 0, appErrors.NewValidationError("hours", "hours must be within [1, 168]")
	}
	return hours, nil
}

// ScoreDevice scores one device over the last hours.
func (s *Scorer) ScoreDevice(ctx context.Context, p rbac.Principal, deviceID string, hours int) (*HealthScore, error) {
	hours, err := ValidateWindow(hours)
	if err != nil {
		return nil, err
	}

	device, err := s.devices.GetByID(ctx, utils.SanitizeIdentifier(deviceID))
	if err != nil {
		return nil, err
	}
	if err := rbac.Authorize(p, rbac.ActionReadTelemetry, device.Organization); err != nil {
		return nil, err
	}

	now := s.now()
	from := now.Add(-time.Duration(hours) * time.Hour)
	readings, err := s.readings.Window(ctx, []string{device.ID}, from, now)
	if err != nil {
		return nil, err
	}

	res := s.policy.Score(readings)
	score := s.newScore(device.ID, TargetDevice, device.Organization, hours, from, now)
	fill(score, res)
	return score, nil
}

// ScoreNetwork scores a network as the unweighted mean of its member device
// scores. Members without readings count as 0. A network with no members, or
// whose members have no readings in the window, is NoData.
func (s *Scorer) ScoreNetwork(ctx context.Context, p rbac.Principal, networkID string, hours int) (*HealthScore, error) {
	hours, err := ValidateWindow(hours)
	if err != nil {
		return nil, err
	}

	network, err := s.networks.GetByID(ctx, utils.SanitizeIdentifier(networkID))
	if err != nil {
		return nil, err
	}
	if err := rbac.Authorize(p, rbac.ActionReadNetworks, network.Organization); err != nil {
		return nil, err
	}

	now := s.now()
	from := now.Add(-time.Duration(hours) * time.Hour)
	readings, err := s.readings.Window(ctx, network.DeviceIDs, from, now)
	if err != nil {
		return nil, err
	}

	score := s.newScore(network.ID, TargetNetwork, network.Organization, hours, from, now)
	agg := ScoreMembers(s.policy, network.DeviceIDs, readings)
	fill(score, agg.Overall)
	if !agg.Overall.NoData {
		score.Score = round(agg.Score, 2)
		score.Penalties = roundPenalties(agg.Penalties)
	}
	score.Devices = agg.Devices
	return score, nil
}

// Aggregate is a network-level result built from per-device results.
type Aggregate struct {
	Score     float64
	Penalties Penalties
	Overall   Result
	Devices   []*DeviceScore
}

// ScoreMembers groups readings by member device and averages the device scores.
// Overall carries the pooled reading statistics and is NoData when no member
// has readings.
func ScoreMembers(policy Policy, memberIDs []string, readings []*domainTelemetry.Reading) Aggregate {
	byDevice := make(map[string][]*domainTelemetry.Reading, len(memberIDs))
	for _, r := range readings {
		byDevice[r.DeviceID] = append(byDevice[r.DeviceID], r)
	}

	agg := Aggregate{
		Overall: policy.Score(readings),
		Devices: make([]*DeviceScore, 0, len(memberIDs)),
	}
	if len(memberIDs) == 0 || agg.Overall.NoData {
		agg.Overall = Result{NoData: true}
		for _, id := range memberIDs {
			agg.Devices = append(agg.Devices, &DeviceScore{DeviceID: id, Status: StatusNoData})
		}
		return agg
	}

	var total float64
	var penalties Penalties
	for _, id := range memberIDs {
		res := policy.Score(byDevice[id])
		total += res.Score
		penalties.Latency += res.Penalties.Latency
		penalties.Loss += res.Penalties.Loss
		penalties.Signal += res.Penalties.Signal
		penalties.Downtime += res.Penalties.Downtime
		agg.Devices = append(agg.Devices, &DeviceScore{
			DeviceID: id,
			Score:    round(res.Score, 2),
			Status:   statusOf(res.NoData),
			Readings: res.Readings,
		})
	}

	n := float64(len(memberIDs))
	agg.Score = clamp(total/n, 0, 100)
	agg.Penalties = Penalties{
		Latency:  penalties.Latency / n,
		Loss:     penalties.Loss / n,
		Signal:   penalties.Signal / n,
		Downtime: penalties.Downtime / n,
	}
	return agg
}

func (s *Scorer) newScore(id, targetType, org string, hours int, from, to time.Time) *HealthScore {
	return &HealthScore{
		TargetID:     id,
		TargetType:   targetType,
		Organization: org,
		WindowHours:  hours,
		PeriodStart:  from,
		PeriodEnd:    to,
		ComputedAt:   s.now(),
	}
}

func fill(score *HealthScore, res Result) {
	score.Status = statusOf(res.NoData)
	if res.NoData {
		score.Reason = ReasonNoData
		score.Score = 0
		return
	}

	score.Score = round(res.Score, 2)
	score.Penalties = roundPenalties(res.Penalties)
	score.Readings = res.Readings

	uptime := round(100*float64(res.Readings-res.OfflineReadings)/float64(res.Readings), 3)
	latency := round(res.AvgLatencyMs, 2)
	loss := round(res.AvgPacketLossPercent, 3)
	score.UptimePercent = &uptime
	score.AvgLatencyMs = &latency
	score.AvgPacketLossPercent = &loss
	if res.AvgSignalStrength != nil {
		signal := round(*res.AvgSignalStrength, 2)
		score.AvgSignalStrength = &signal
	}
}

func roundPenalties(p Penalties) Penalties {
	return Penalties{
		Latency:  round(p.Latency, 2),
		Loss:     round(p.Loss, 2),
		Signal:   round(p.Signal, 2),
		Downtime: round(p.Downtime, 2),
	}
}
