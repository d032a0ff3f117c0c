package network

import (
	"time"
)

// Type of the logical network
type Type string

const (
	TypeWAN       Type = "wan"
	TypeLAN       Type = "lan"
	TypeSatellite Type = "satellite"
	TypeHybrid    Type = "hybrid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	DefaultSLAUptimeTarget    = 99.9
	DefaultSLALatencyTargetMs = 100.0
)

// Network groups devices of one organization under an SLA.
type Network struct {
	ID                 string
	Organization       string
	Name               string
	Description        *string
	Type               Type
	Status             string
	SLAUptimeTarget    float64
	SLALatencyTargetMs float64
	DeviceIDs          []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (n *Network) HasDevice(deviceID string) bool {
	for _, id := range n.DeviceIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}
