package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrInvalidAPIKey      = errors.New("invalid or revoked api key")

	ErrForbidden      = errors.New("insufficient permissions")
	ErrTenantMismatch = errors.New("resource belongs to another organization")
	ErrDeviceMismatch = errors.New("api key is not bound to this device")

	ErrNotFound              = errors.New("resource not found")
	ErrAlreadyExists         = errors.New("resource already exists")
	ErrCrossTenantMembership = errors.New("device belongs to another organization than the network")
	ErrDeviceInactive        = errors.New("device is deactivated")
	ErrPartnerSuspended      = errors.New("partner is suspended")
	ErrAPIAccessDisabled     = errors.New("api access is disabled for partner")

	ErrWeakPassword = errors.New("password does not meet requirements")
)

// Machine readable codes returned to API callers.
const (
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeTokenInvalid          = "TOKEN_INVALID"
	CodeInvalidAPIKey         = "INVALID_API_KEY"
	CodeForbidden             = "FORBIDDEN"
	CodeTenantMismatch        = "TENANT_MISMATCH"
	CodeDeviceMismatch        = "DEVICE_MISMATCH"
	CodeValidation            = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeCrossTenantMembership = "CROSS_TENANT_MEMBERSHIP"
	CodeDeviceInactive        = "DEVICE_INACTIVE"
	CodePartnerSuspended      = "PARTNER_SUSPENDED"
	CodeAPIAccessDisabled     = "API_ACCESS_DISABLED"
	CodeWeakPassword          = "WEAK_PASSWORD"
	CodeInternal              = "INTERNAL_ERROR"
)

var sentinelCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidCredentials, CodeInvalidCredentials},
	{ErrTokenExpired, CodeTokenExpired},
	{ErrTokenInvalid, CodeTokenInvalid},
	{ErrInvalidAPIKey, CodeInvalidAPIKey},
	{ErrTenantMismatch, CodeTenantMismatch},
	{ErrDeviceMismatch, CodeDeviceMismatch},
	{ErrForbidden, CodeForbidden},
	{ErrCrossTenantMembership, CodeCrossTenantMembership},
	{ErrDeviceInactive, CodeDeviceInactive},
	{ErrPartnerSuspended, CodePartnerSuspended},
	{ErrAPIAccessDisabled, CodeAPIAccessDisabled},
	{ErrNotFound, CodeNotFound},
	{ErrAlreadyExists, CodeAlreadyExists},
	{ErrWeakPassword, CodeWeakPassword},
}

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError rejects a payload and names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Code resolves the API error code for err. Unknown errors map to CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return CodeValidation
	}

	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return sc.code
		}
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	return CodeInternal
}

// Field returns the offending field of a validation error, if any.
func Field(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Field
	}
	return ""
}
