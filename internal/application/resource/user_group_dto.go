package resource

import (
	"github.com/restapi/backend/internal/application/restdto"
	"github.com/restapi/backend/internal/domain/identity"
)

// UserGroupDTO carries a user group create or patch request.
type UserGroupDTO struct {
	restdto.Rest
	Name string `json:"name" validate:"required,min=2,max=255"`
	Role string `json:"role" validate:"required,role"`
}

func (d *UserGroupDTO) SetName(v string) {
	d.SetVisited("name")
	d.Name = v
}

func (d *UserGroupDTO) GetName() string { return d.Name }

func (d *UserGroupDTO) SetRole(v string) {
	d.SetVisited("role")
	d.Role = v
}

func (d *UserGroupDTO) GetRole() string { return d.Role }

func newUserGroupSchema() *restdto.Schema[*UserGroupDTO, *identity.UserGroup] {
	s := restdto.NewSchema[*UserGroupDTO, *identity.UserGroup]()
	restdto.Property(s, "name", func(d *UserGroupDTO) string { return d.Name }, (*UserGroupDTO).SetName).
		Getter(restdto.Get, (*UserGroupDTO).GetName).
		Setter((*identity.UserGroup).SetName)
	restdto.Property(s, "role", func(d *UserGroupDTO) string { return d.Role }, (*UserGroupDTO).SetRole).
		Getter(restdto.Get, (*UserGroupDTO).GetRole).
		Setter(func(g *identity.UserGroup, role string) error {
			return g.SetRole(identity.Role(role))
		})
	return s
}

var userGroups = newUserGroupSchema()

// DecodeUserGroup reads a JSON request body into a UserGroupDTO.
func DecodeUserGroup(data []byte) (*UserGroupDTO, error) {
	d := &UserGroupDTO{}
	if err := userGroups.Decode(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// NewUserGroupDTO returns a DTO holding the group's current state with nothing visited.
func NewUserGroupDTO(g *identity.UserGroup) *UserGroupDTO {
	d := &UserGroupDTO{Name: g.Name, Role: string(g.Role)}
	d.SetID(g.ID.String())
	return d
}
