package rbac

import "context"

// PrincipalKind distinguishes password accounts from device API keys.
type PrincipalKind uint8

const (
	KindUser PrincipalKind = iota + 1
	KindDevice
)

// Principal is the authenticated actor of a request. Device principals carry no
// Role and are scoped to exactly one device.
type Principal struct {
	ID           string
	Username     string
	Organization string
	Role         Role
	Kind         PrincipalKind
	DeviceID     string
	KeyID        string
}

func NewUserPrincipal(id, username, organization string, role Role) Principal {
	return Principal{
		ID:           id,
		Username:     username,
		Organization: organization,
		Role:         role,
		Kind:         KindUser,
	}
}

func NewDevicePrincipal(keyID, organization, deviceID string) Principal {
	return Principal{
		ID:           "apikey:" + keyID,
		Organization: organization,
		Kind:         KindDevice,
		DeviceID:     deviceID,
		KeyID:        keyID,
	}
}

func (p Principal) IsDevice() bool {
	return p.Kind == KindDevice
}

func (p Principal) IsAdmin() bool {
	return p.Kind == KindUser && p.Role == RoleAdmin
}

// ScopeOrganization returns the organization filter for listing queries:
// empty for admins (all organizations), otherwise the principal's own.
func (p Principal) ScopeOrganization() string {
	if p.IsAdmin() {
		return ""
	}
	return p.Organization
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
