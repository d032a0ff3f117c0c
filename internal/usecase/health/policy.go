package health

import (
	"math"

	"spacelink-gateway/internal/config"
	domainTelemetry "spacelink-gateway/internal/domain/telemetry"
)

// Point budgets of the four penalty categories. They sum to 100.
const (
	MaxLatencyPenalty  = 40.0
	MaxLossPenalty     = 30.0
	MaxSignalPenalty   = 20.0
	MaxDowntimePenalty = 10.0
)

// Policy holds the tunable scoring constants.
type Policy struct {
	LatencyBaselineMs float64 // L0
	LatencyScaleMs    float64 // Lscale
	LossWeight        float64
	SignalBaselineDBm float64 // S0
	SignalScaleDBm    float64 // Sscale
}

func DefaultPolicy() Policy {
	return Policy{
		LatencyBaselineMs: 50,
		LatencyScaleMs:    250,
		LossWeight:        3,
		SignalBaselineDBm: -70,
		SignalScaleDBm:    100,
	}
}

// PolicyFromConfig builds a policy, keeping defaults for non-positive scales.
func PolicyFromConfig(cfg config.HealthConfig) Policy {
	p := Policy{
		LatencyBaselineMs: cfg.LatencyBaselineMs,
		LatencyScaleMs:    cfg.LatencyScaleMs,
		LossWeight:        cfg.LossWeight,
		SignalBaselineDBm: cfg.SignalBaselineDBm,
		SignalScaleDBm:    cfg.SignalScaleDBm,
	}
	def := DefaultPolicy()
	if p.LatencyScaleMs <= 0 {
		p.LatencyScaleMs = def.LatencyScaleMs
	}
	if p.SignalScaleDBm <= 0 {
		p.SignalScaleDBm = def.SignalScaleDBm
	}
	if p.LossWeight < 0 {
		p.LossWeight = def.LossWeight
	}
	return p
}

// Penalties are the points deducted from 100 per category.
type Penalties struct {
	Latency  float64 `json:"latency"`
	Loss     float64 `json:"packet_loss"`
	Signal   float64 `json:"signal"`
	Downtime float64 `json:"downtime"`
}

func (p Penalties) Total() float64 {
	return p.Latency + p.Loss + p.Signal + p.Downtime
}

// Result is the outcome of scoring one reading set.
type Result struct {
	Score                float64
	NoData               bool
	Penalties            Penalties
	Readings             int
	OfflineReadings      int
	AvgLatencyMs         float64
	AvgPacketLossPercent float64
	AvgSignalStrength    *float64
}

// Score evaluates readings under the policy. An empty set scores 0 with NoData.
// Readings without a signal value do not contribute to the signal average; a
// set with no signal values carries no signal penalty.
func (p Policy) Score(readings []*domainTelemetry.Reading) Result {
	if len(readings) == 0 {
		return Result{NoData: true}
	}

	var (
		latencySum, lossSum, signalSum float64
		signalCount, offline           int
	)
	for _, r := range readings {
		latencySum += r.LatencyMs
		lossSum += r.PacketLossPercent
		if r.SignalStrength != nil {
			signalSum += *r.SignalStrength
			signalCount++
		}
		if r.Status == domainTelemetry.StatusOffline {
			offline++
		}
	}

	n := float64(len(readings))
	res := Result{
		Readings:             len(readings),
		OfflineReadings:      offline,
		AvgLatencyMs:         latencySum / n,
		AvgPacketLossPercent: lossSum / n,
	}

	res.Penalties.Latency = clamp((res.AvgLatencyMs-p.LatencyBaselineMs)/p.LatencyScaleMs*100, 0, MaxLatencyPenalty)
	res.Penalties.Loss = clamp(res.AvgPacketLossPercent*p.LossWeight, 0, MaxLossPenalty)
	if signalCount > 0 {
		avg := signalSum / float64(signalCount)
		res.AvgSignalStrength = &avg
		res.Penalties.Signal = clamp((p.SignalBaselineDBm-avg)/p.SignalScaleDBm*100, 0, MaxSignalPenalty)
	}
	res.Penalties.Downtime = clamp(float64(offline)/n*MaxDowntimePenalty, 0, MaxDowntimePenalty)

	res.Score = clamp(100-res.Penalties.Total(), 0, 100)
	return res
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
