package telemetry

import (
	"fmt"

	appErrors "spacelink-gateway/pkg/errors"
)

var (
	ErrNoReadings = fmt.Errorf("no telemetry for device: %w", appErrors.ErrNotFound)
)
