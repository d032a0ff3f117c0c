package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainNetwork "spacelink-gateway/internal/domain/network"
)

// NetworkRepository implements domainNetwork.Repository in memory.
type NetworkRepository struct {
	mu       sync.RWMutex
	networks map[string]*domainNetwork.Network
}

func NewNetworkRepository() *NetworkRepository {
	return &NetworkRepository{networks: make(map[string]*domainNetwork.Network)}
}

func (r *NetworkRepository) Create(ctx context.Context, n *domainNetwork.Network) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[n.ID]; ok {
		return domainNetwork.ErrNetworkAlreadyExists
	}
	r.networks[n.ID] = cloneNetwork(n)
	return nil
}

func (r *NetworkRepository) GetByID(ctx context.Context, networkID string) (*domainNetwork.Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.networks[networkID]
	if !ok {
		return nil, domainNetwork.ErrNetworkNotFound
	}
	return cloneNetwork(n), nil
}

func (r *NetworkRepository) List(ctx context.Context, organization string) ([]*domainNetwork.Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domainNetwork.Network, 0, len(r.networks))
	for _, n := range r.networks {
		if organization == "" || n.Organization == organization {
			out = append(out, cloneNetwork(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *NetworkRepository) Update(ctx context.Context, n *domainNetwork.Network) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.networks[n.ID]
	if !ok {
		return domainNetwork.ErrNetworkNotFound
	}

	existing.Name = n.Name
	existing.Description = n.Description
	existing.Status = n.Status
	existing.SLAUptimeTarget = n.SLAUptimeTarget
	existing.SLALatencyTargetMs = n.SLALatencyTargetMs
	existing.UpdatedAt = n.UpdatedAt
	return nil
}

func (r *NetworkRepository) Delete(ctx context.Context, networkID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.networks[networkID]; !ok {
		return domainNetwork.ErrNetworkNotFound
	}
	delete(r.networks, networkID)
	return nil
}

func (r *NetworkRepository) AddDevice(ctx context.Context, networkID, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.networks[networkID]
	if !ok {
		return domainNetwork.ErrNetworkNotFound
	}
	if !n.HasDevice(deviceID) {
		n.DeviceIDs = append(n.DeviceIDs, deviceID)
		n.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *NetworkRepository) RemoveDevice(ctx context.Context, networkID, deviceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.networks[networkID]
	if !ok {
		return domainNetwork.ErrNetworkNotFound
	}
	for i, id := range n.DeviceIDs {
		if id == deviceID {
			n.DeviceIDs = append(n.DeviceIDs[:i], n.DeviceIDs[i+1:]...)
			n.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return domainNetwork.ErrMemberNotFound
}

func cloneNetwork(n *domainNetwork.Network) *domainNetwork.Network {
	c := *n
	c.DeviceIDs = append([]string(nil), n.DeviceIDs...)
	return &c
}
