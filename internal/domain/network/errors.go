package network

import (
	"fmt"

	appErrors "spacelink-gateway/pkg/errors"
)

var (
	ErrNetworkNotFound      = fmt.Errorf("network not found: %w", appErrors.ErrNotFound)
	ErrNetworkAlreadyExists = fmt.Errorf("network already exists: %w", appErrors.ErrAlreadyExists)
	ErrMemberNotFound       = fmt.Errorf("device is not a member of the network: %w", appErrors.ErrNotFound)
)
