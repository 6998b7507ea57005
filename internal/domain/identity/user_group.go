package identity

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/shared"
)

// UserGroup grants its role to every member user.
type UserGroup struct {
	shared.BaseEntity
	Name  string `validate:"required,min=2,max=255"`
	Role  Role   `validate:"required"`
	Users []*User
}

// NewUserGroup creates an empty group with a fresh id.
func NewUserGroup() *UserGroup {
	return &UserGroup{
		BaseEntity: shared.NewBaseEntity(),
		Users:      make([]*User, 0),
	}
}

// SetName sets the group name
func (g *UserGroup) SetName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 255 {
		return shared.NewDomainError("INVALID_GROUP_NAME", "Group name must be between 2 and 255 characters")
	}
	g.Name = name
	g.Touch()
	return nil
}

// SetRole sets the role granted to members
func (g *UserGroup) SetRole(role Role) error {
	if !role.Valid() {
		return shared.NewDomainError("INVALID_ROLE", "Role '"+string(role)+"' is not supported")
	}
	g.Role = role
	g.Touch()
	return nil
}

// HasUser reports whether the user is a member.
func (g *UserGroup) HasUser(id uuid.UUID) bool {
	return slices.ContainsFunc(g.Users, func(u *User) bool { return u.ID == id })
}

// AddUser adds the user to the group and the group to the user. It returns false when
// the user was already a member.
func (g *UserGroup) AddUser(u *User) bool {
	if g.HasUser(u.ID) {
		return false
	}
	g.Users = append(g.Users, u)
	u.addGroup(g)
	g.Touch()
	return true
}

// RemoveUser removes the user from the group and the group from the user. It returns false
// when the user was not a member.
func (g *UserGroup) RemoveUser(u *User) bool {
	if !g.HasUser(u.ID) {
		return false
	}
	g.Users = slices.DeleteFunc(g.Users, func(m *User) bool { return m.ID == u.ID })
	u.removeGroup(g.ID)
	g.Touch()
	return true
}

// String returns the group id, which is what forms and transformers exchange.
func (g *UserGroup) String() string {
	return g.ID.String()
}
