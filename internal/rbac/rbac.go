package rbac

import (
	"strings"

	appErrors "spacelink-gateway/pkg/errors"
)

// Action is a permission checked by Authorize.
type Action string

const (
	ActionReadTelemetry  Action = "telemetry:read"
	ActionWriteTelemetry Action = "telemetry:write"
	ActionReadDevices    Action = "devices:read"
	ActionWriteDevices   Action = "devices:write"
	ActionReadNetworks   Action = "networks:read"
	ActionWriteNetworks  Action = "networks:write"
	ActionDeleteNetworks Action = "networks:delete"
	ActionReadPartners   Action = "partners:read"
	ActionWritePartners  Action = "partners:write"
	ActionGenerateAPIKey Action = "apikeys:generate"
	ActionRevokeAPIKey   Action = "apikeys:revoke"
	ActionManageUsers    Action = "users:manage"
)

// Actions lists every defined action.
func Actions() []Action {
	return []Action{
		ActionReadTelemetry, ActionWriteTelemetry,
		ActionReadDevices, ActionWriteDevices,
		ActionReadNetworks, ActionWriteNetworks, ActionDeleteNetworks,
		ActionReadPartners, ActionWritePartners,
		ActionGenerateAPIKey, ActionRevokeAPIKey,
		ActionManageUsers,
	}
}

type capabilitySet map[Action]struct{}

func allow(actions ...Action) capabilitySet {
	set := make(capabilitySet, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// telemetry:write is never granted to a user role; only device principals hold it.
var capabilities = map[Role]capabilitySet{
	RoleAdmin: allow(
		ActionReadTelemetry,
		ActionReadDevices, ActionWriteDevices,
		ActionReadNetworks, ActionWriteNetworks, ActionDeleteNetworks,
		ActionReadPartners, ActionWritePartners,
		ActionGenerateAPIKey, ActionRevokeAPIKey,
		ActionManageUsers,
	),
	RolePartner: allow(
		ActionReadTelemetry,
		ActionReadDevices, ActionWriteDevices,
		ActionReadNetworks, ActionWriteNetworks,
		ActionReadPartners,
		ActionGenerateAPIKey,
	),
	RoleCustomer: allow(
		ActionReadTelemetry,
		ActionReadDevices,
		ActionReadNetworks,
	),
	RoleReadOnly: allow(
		ActionReadTelemetry,
	),
}

var deviceCapabilities = allow(ActionWriteTelemetry)

// Can reports whether the role grants action, ignoring tenancy.
func Can(role Role, action Action) bool {
	set, ok := capabilities[role]
	if !ok {
		return false
	}
	_, granted := set[action]
	return granted
}

// Authorize checks p may perform action on a resource owned by resourceOrg.
// Tenancy is checked first: a non-admin principal touching another organization's
// resource gets ErrTenantMismatch whatever its role grants. Role capability
// failures return ErrForbidden.
func Authorize(p Principal, action Action, resourceOrg string) error {
	if !p.IsAdmin() && resourceOrg != p.Organization {
		return appErrors.ErrTenantMismatch
	}

	switch p.Kind {
	case KindDevice:
		if _, ok := deviceCapabilities[action]; ok {
			return nil
		}
		return appErrors.ErrForbidden
	case KindUser:
		if Can(p.Role, action) {
			return nil
		}
		return appErrors.ErrForbidden
	default:
		return appErrors.ErrForbidden
	}
}

// Allowed is the boolean form of Authorize.
func Allowed(p Principal, action Action, resourceOrg string) bool {
	return Authorize(p, action, resourceOrg) == nil
}

// AuthorizeAction checks role capability alone, for operations with no single
// owning organization such as listing across the caller's scope.
func AuthorizeAction(p Principal, action Action) error {
	return Authorize(p, action, p.Organization)
}

// ScopeOrganization resolves the organization a listing is restricted to. An
// empty request means the principal's own scope (every organization for
// admins); naming an organization is subject to the tenant check.
func ScopeOrganization(p Principal, action Action, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if err := AuthorizeAction(p, action); err != nil {
			return "", err
		}
		return p.ScopeOrganization(), nil
	}
	if err := Authorize(p, action, requested); err != nil {
		return "", err
	}
	return requested, nil
}
