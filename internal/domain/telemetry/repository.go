package telemetry

import (
	"context"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock/repository_mock.go -package=mock

// Repository is the append-only reading store with a latest-reading projection.
type Repository interface {
	// Append stores r unless its key already exists, and moves the device's latest
	// projection forward when r is strictly newer. It reports whether r was inserted.
	Append(ctx context.Context, r *Reading) (bool, error)
	Latest(ctx context.Context, deviceID string) (*Reading, error)
	// LatestByOrganization returns the latest reading of every device in
	// organization, or of every device when organization is empty.
	LatestByOrganization(ctx context.Context, organization string) ([]*Reading, error)
	// Window returns readings of deviceIDs with from <= timestamp <= to, oldest first.
	Window(ctx context.Context, deviceIDs []string, from, to time.Time) ([]*Reading, error)
	// Query returns readings matching filter, newest first.
	Query(ctx context.Context, filter Filter) ([]*Reading, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
