package device

import (
	"context"
	"time"
)

// Repository defines the interface for device repository operations
type Repository interface {
	// CreateIfAbsent atomically inserts d unless a device with the same ID exists.
	// It returns the stored device and whether this call created it.
	CreateIfAbsent(ctx context.Context, d *Device) (*Device, bool, error)
	GetByID(ctx context.Context, deviceID string) (*Device, error)
	// List returns devices of organization, or every device when organization is empty.
	List(ctx context.Context, organization string) ([]*Device, error)
	Deactivate(ctx context.Context, deviceID string) error
	UpdateLastSeen(ctx context.Context, deviceID string, at time.Time) error
}
