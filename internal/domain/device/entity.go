package device

import (
	"time"
)

// Device is a telemetry source. Its organization never changes.
type Device struct {
	ID           string
	Organization string
	Name         *string
	Latitude     *float64
	Longitude    *float64
	Status       Status
	LastSeenAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status represents the lifecycle state of a device
type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

func (d *Device) IsActive() bool {
	return d.Status != StatusDeactivated
}

// IsOnline checks if the device reported within the last 5 minutes
func (d *Device) IsOnline(now time.Time) bool {
	if d.LastSeenAt == nil {
		return false
	}
	return now.Sub(*d.LastSeenAt) < 5*time.Minute
}
