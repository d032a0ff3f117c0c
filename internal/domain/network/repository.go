package network

import (
	"context"
)

// Repository defines the interface for network registry storage
type Repository interface {
	Create(ctx context.Context, n *Network) error
	// GetByID returns the network with its member device ids.
	GetByID(ctx context.Context, networkID string) (*Network, error)
	// List returns networks of organization, or every network when organization is empty.
	List(ctx context.Context, organization string) ([]*Network, error)
	// Update persists descriptive fields and SLA targets. Membership is untouched.
	Update(ctx context.Context, n *Network) error
	// Delete removes the network and its memberships. Readings are untouched.
	Delete(ctx context.Context, networkID string) error
	AddDevice(ctx context.Context, networkID, deviceID string) error
	RemoveDevice(ctx context.Context, networkID, deviceID string) error
}
