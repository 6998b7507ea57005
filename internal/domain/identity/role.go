package identity

import (
	"slices"
	"strings"

	"github.com/restapi/backend/internal/domain/shared"
)

// Role is a security role. Roles form a strict hierarchy; a role grants every role below it.
type Role string

const (
	RoleLogged Role = "ROLE_LOGGED"
	RoleUser   Role = "ROLE_USER"
	RoleAdmin  Role = "ROLE_ADMIN"
	RoleRoot   Role = "ROLE_ROOT"
)

// hierarchy is ordered from the weakest to the strongest role.
var hierarchy = []Role{RoleLogged, RoleUser, RoleAdmin, RoleRoot}

// Roles returns all known roles, weakest first.
func Roles() []Role {
	return slices.Clone(hierarchy)
}

// ParseRole parses a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role '"+s+"' is not supported")
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r.level() >= 0
}

func (r Role) level() int {
	return slices.Index(hierarchy, r)
}

// Inherited returns r and every role it grants, weakest first.
func (r Role) Inherited() []Role {
	l := r.level()
	if l < 0 {
		return nil
	}
	return slices.Clone(hierarchy[:l+1])
}

// Includes reports whether holding r grants other.
func (r Role) Includes(other Role) bool {
	l, o := r.level(), other.level()
	return l >= 0 && o >= 0 && l >= o
}

func (r Role) String() string {
	return string(r)
}

// ExpandRoles returns the union of the inherited sets of roles, weakest first.
// Unknown roles are dropped.
func ExpandRoles(roles []Role) []Role {
	top := -1
	for _, r := range roles {
		top = max(top, r.level())
	}
	if top < 0 {
		return []Role{}
	}
	return slices.Clone(hierarchy[:top+1])
}

// HasRole reports whether any of granted includes required.
func HasRole(granted []Role, required Role) bool {
	for _, r := range granted {
		if r.Includes(required) {
			return true
		}
	}
	return false
}
