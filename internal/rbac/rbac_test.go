package rbac

import (
	"errors"
	"testing"

	appErrors "spacelink-gateway/pkg/errors"
)

func TestEveryRoleHasCapabilityEntry(t *testing.T) {
	for _, role := range Roles() {
		if _, ok := capabilities[role]; !ok {
			t.Errorf("role %s has no capability table entry", role)
		}
		if _, ok := roleNames[role]; !ok {
			t.Errorf("role %d has no name", role)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles() {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", role.String(), err)
		}
		if parsed != role {
			t.Errorf("ParseRole(%q) = %v, want %v", role.String(), parsed, role)
		}
	}

	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
	if r, err := ParseRole(" Admin "); err != nil || r != RoleAdmin {
		t.Errorf("ParseRole is expected to be case and space insensitive, got %v %v", r, err)
	}
}

func TestAuthorizeCapabilityTable(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionManageUsers, true},
		{RoleAdmin, ActionDeleteNetworks, true},
		{RolePartner, ActionWriteNetworks, true},
		{RolePartner, ActionGenerateAPIKey, true},
		{RolePartner, ActionReadPartners, true},
		{RolePartner, ActionDeleteNetworks, false},
		{RolePartner, ActionWritePartners, false},
		{RoleCustomer, ActionReadNetworks, true},
		{RoleCustomer, ActionReadTelemetry, true},
		{RoleCustomer, ActionWriteNetworks, false},
		{RoleCustomer, ActionGenerateAPIKey, false},
		{RoleReadOnly, ActionReadTelemetry, true},
		{RoleReadOnly, ActionReadNetworks, false},
		{RoleReadOnly, ActionReadDevices, false},
	}

	for _, tt := range tests {
		p := NewUserPrincipal("u1", "user", "acme", tt.role)
		got := Allowed(p, tt.action, "acme")
		if got != tt.want {
			t.Errorf("%s %s: got %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestNoUserRoleCanWriteTelemetry(t *testing.T) {
	for _, role := range Roles() {
		p := NewUserPrincipal("u1", "user", "acme", role)
		if err := Authorize(p, ActionWriteTelemetry, "acme"); !errors.Is(err, appErrors.ErrForbidden) {
			t.Errorf("%s writing telemetry: got %v, want ErrForbidden", role, err)
		}
	}
}

func TestDevicePrincipalOnlyWritesTelemetry(t *testing.T) {
	p := NewDevicePrincipal("k1", "acme", "device-001")

	if err := Authorize(p, ActionWriteTelemetry, "acme"); err != nil {
		t.Fatalf("device write: %v", err)
	}

	for _, action := range Actions() {
		if action == ActionWriteTelemetry {
			continue
		}
		if err := Authorize(p, action, "acme"); !errors.Is(err, appErrors.ErrForbidden) {
			t.Errorf("device %s: got %v, want ErrForbidden", action, err)
		}
	}

	if err := Authorize(p, ActionWriteTelemetry, "globex"); !errors.Is(err, appErrors.ErrTenantMismatch) {
		t.Errorf("device cross-tenant write: got %v, want ErrTenantMismatch", err)
	}
}

func TestTenantCheckPrecedesCapability(t *testing.T) {
	for _, role := range []Role{RolePartner, RoleCustomer, RoleReadOnly} {
		p := NewUserPrincipal("u1", "user", "org-b", role)
		for _, action := range Actions() {
			err := Authorize(p, action, "org-a")
			if !errors.Is(err, appErrors.ErrTenantMismatch) {
				t.Errorf("%s %s on foreign org: got %v, want ErrTenantMismatch", role, action, err)
			}
		}
	}
}

func TestAdminCrossesTenants(t *testing.T) {
	p := NewUserPrincipal("u1", "root", "ops", RoleAdmin)
	if err := Authorize(p, ActionReadNetworks, "acme"); err != nil {
		t.Fatalf("admin cross-tenant read: %v", err)
	}
	if p.ScopeOrganization() != "" {
		t.Errorf("admin scope = %q, want all organizations", p.ScopeOrganization())
	}
}

func TestRoleTextRoundTrip(t *testing.T) {
	var r Role
	if err := r.UnmarshalText([]byte("partner")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := r.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "partner" {
		t.Errorf("got %q", text)
	}

	if _, err := Role(0).MarshalText(); err == nil {
		t.Error("expected error marshalling zero role")
	}
}
