package rbac

import (
	"fmt"
	"strings"
)

// Role is the closed set of user roles.
type Role uint8

const (
	RoleAdmin Role = iota + 1
	RolePartner
	RoleCustomer
	RoleReadOnly

	roleEnd
)

var roleNames = map[Role]string{
	RoleAdmin:    "admin",
	RolePartner:  "partner",
	RoleCustomer: "customer",
	RoleReadOnly: "readonly",
}

// Roles lists every defined role.
func Roles() []Role {
	roles := make([]Role, 0, len(roleNames))
	for r := RoleAdmin; r < roleEnd; r++ {
		roles = append(roles, r)
	}
	return roles
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

func (r Role) Valid() bool {
	return r >= RoleAdmin && r < roleEnd
}

// ParseRole accepts the lowercase role name.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for role, n := range roleNames {
		if n == name {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
