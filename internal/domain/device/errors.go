package device

import (
	"fmt"

	appErrors "spacelink-gateway/pkg/errors"
)

var (
	ErrDeviceNotFound = fmt.Errorf("device not found: %w", appErrors.ErrNotFound)
)
