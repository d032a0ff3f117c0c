package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"sentinel", ErrForbidden, CodeForbidden},
		{"wrapped sentinel", fmt.Errorf("network not found: %w", ErrNotFound), CodeNotFound},
		{"validation", NewValidationError("timestamp", "too far in the future"), CodeValidation},
		{"wrapped validation", fmt.Errorf("item 3: %w", NewValidationError("status", "bad")), CodeValidation},
		{"app error", NewAppError("INVALID_STATUS_TRANSITION", "nope", nil), "INVALID_STATUS_TRANSITION"},
		{"app error wrapping sentinel", NewAppError("OTHER", "x", ErrTenantMismatch), CodeTenantMismatch},
		{"tenant before forbidden", fmt.Errorf("%w: %w", ErrTenantMismatch, ErrForbidden), CodeTenantMismatch},
		{"unknown", errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestField(t *testing.T) {
	if got := Field(fmt.Errorf("wrap: %w", NewValidationError("latency_ms", "required"))); got != "latency_ms" {
		t.Errorf("Field() = %q", got)
	}
	if got := Field(ErrNotFound); got != "" {
		t.Errorf("Field() = %q for a non-validation error", got)
	}
}
