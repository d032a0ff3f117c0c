package telemetry

import (
	"time"
)

// Status is the operational state reported by a device.
type Status string

const (
	StatusActive      Status = "active"
	StatusDegraded    Status = "degraded"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDegraded, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

// Reading is one immutable measurement sample, unique per (DeviceID, Timestamp).
type Reading struct {
	DeviceID          string
	Organization      string
	Timestamp         time.Time
	LatencyMs         float64
	PacketLossPercent float64
	SignalStrength    *float64
	ThroughputMbps    *float64
	JitterMs          *float64
	Latitude          *float64
	Longitude         *float64
	Status            Status
	FirmwareVersion   *string
	ErrorMessage      *string
	ReceivedAt        time.Time
}

// Key is the deduplication key of a reading.
type Key struct {
	DeviceID  string
	Timestamp time.Time
}

func (r *Reading) Key() Key {
	return Key{DeviceID: r.DeviceID, Timestamp: r.Timestamp}
}

// Newer reports whether r is strictly newer than other.
func (r *Reading) Newer(other *Reading) bool {
	return other == nil || r.Timestamp.After(other.Timestamp)
}

// Filter narrows reading queries. Zero values mean "no constraint"; a zero Limit
// returns every match.
type Filter struct {
	Organization string
	DeviceIDs    []string
	Status       *Status
	Start        *time.Time
	End          *time.Time
	Limit        int
}

// Matches reports whether r satisfies every constraint of f.
func (f *Filter) Matches(r *Reading) bool {
	if f.Organization != "" && r.Organization != f.Organization {
		return false
	}
	if len(f.DeviceIDs) > 0 {
		found := false
		for _, id := range f.DeviceIDs {
			if id == r.DeviceID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.Start != nil && r.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && r.Timestamp.After(*f.End) {
		return false
	}
	return true
}
