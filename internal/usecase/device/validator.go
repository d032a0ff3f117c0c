package device

import (
	"fmt"

	domainDevice "spacelink-gateway/internal/domain/device"
	appErrors "spacelink-gateway/pkg/errors"
)

// ValidateDeviceStatus validates device status transitions. Deactivation is
// final: devices are never deleted or reactivated.
func ValidateDeviceStatus(currentStatus, newStatus domainDevice.Status) error {
	validTransitions := map[domainDevice.Status][]domainDevice.Status{
		domainDevice.StatusActive:      {domainDevice.StatusDeactivated},
		domainDevice.StatusDeactivated: {},
	}

	allowedStatus, exists := validTransitions[currentStatus]
	if !exists {
		return fmt.Errorf("invalid current status: %s", currentStatus)
	}

	for _, allowed := range allowedStatus {
		if newStatus == allowed {
			return nil
		}
	}

	return appErrors.NewAppError(
		"INVALID_STATUS_TRANSITION",
		fmt.Sprintf("Cannot transition from %s to %s", currentStatus, newStatus),
		nil)
}
