package partner

import (
	"fmt"

	appErrors "spacelink-gateway/pkg/errors"
)

var (
	ErrPartnerNotFound      = fmt.Errorf("partner not found: %w", appErrors.ErrNotFound)
	ErrPartnerAlreadyExists = fmt.Errorf("partner already exists: %w", appErrors.ErrAlreadyExists)
)
