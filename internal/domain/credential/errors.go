package credential

import (
	"fmt"

	appErrors "spacelink-gateway/pkg/errors"
)

var (
	ErrAccountNotFound      = fmt.Errorf("account not found: %w", appErrors.ErrNotFound)
	ErrAccountAlreadyExists = fmt.Errorf("account already exists: %w", appErrors.ErrAlreadyExists)
	ErrAPIKeyNotFound       = fmt.Errorf("api key not found: %w", appErrors.ErrNotFound)
	ErrAPIKeyAlreadyExists  = fmt.Errorf("api key already exists: %w", appErrors.ErrAlreadyExists)
)
