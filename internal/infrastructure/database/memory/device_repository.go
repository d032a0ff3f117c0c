package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainDevice "spacelink-gateway/internal/domain/device"
)

// DeviceRepository implements domainDevice.Repository in memory.
type DeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]*domainDevice.Device
}

func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{devices: make(map[string]*domainDevice.Device)}
}

func (r *DeviceRepository) CreateIfAbsent(ctx context.Context, d *domainDevice.Device) (*domainDevice.Device, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.devices[d.ID]; ok {
		return cloneDevice(existing), false, nil
	}

	stored := cloneDevice(d)
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt
	if stored.Status == "" {
		stored.Status = domainDevice.StatusActive
	}
	r.devices[d.ID] = stored

	return cloneDevice(stored), true, nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID string) (*domainDevice.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return nil, domainDevice.ErrDeviceNotFound
	}
	return cloneDevice(d), nil
}

func (r *DeviceRepository) List(ctx context.Context, organization string) ([]*domainDevice.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainDevice.Device, 0, len(r.devices))
	for _, d := range r.devices {
		if organization == "" || d.Organization == organization {
			out = append(out, cloneDevice(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DeviceRepository) Deactivate(ctx context.Context, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return domainDevice.ErrDeviceNotFound
	}
	d.Status = domainDevice.StatusDeactivated
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *DeviceRepository) UpdateLastSeen(ctx context.Context, deviceID string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[deviceID]
	if !ok {
		return domainDevice.ErrDeviceNotFound
	}
	if d.LastSeenAt == nil || at.After(*d.LastSeenAt) {
		seen := at
		d.LastSeenAt = &seen
	}
	return nil
}

func cloneDevice(d *domainDevice.Device) *domainDevice.Device {
	c := *d
	return &c
}
