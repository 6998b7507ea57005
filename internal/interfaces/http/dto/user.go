package dto

import (
	"time"

	"github.com/restapi/backend/internal/domain/identity"
)

// BasicUser is the short user representation used inside group listings
// @Description User (basic)
type BasicUser struct {
	ID        string `json:"id" example:"0190f1d2-7c1e-7b8a-9f00-3a1c2b4d5e6f"`
	Username  string `json:"username" example:"john"`
	FirstName string `json:"firstName" example:"John"`
	LastName  string `json:"lastName" example:"Doe"`
	Email     string `json:"email" example:"john@example.com"`
}

// BasicUserGroup is the short group representation embedded in users
// @Description User group (basic)
type BasicUserGroup struct {
	ID   string `json:"id"`
	Name string `json:"name" example:"Administrators"`
	Role string `json:"role" example:"ROLE_ADMIN"`
}

// UserResponse is the full user representation
// @Description User
type UserResponse struct {
	BasicUser
	Language   string           `json:"language" example:"en"`
	Locale     string           `json:"locale" example:"en"`
	Timezone   string           `json:"timezone" example:"Europe/Kyiv"`
	Roles      []string         `json:"roles"`
	UserGroups []BasicUserGroup `json:"userGroups"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// UserGroupResponse is the full user group representation
// @Description User group
type UserGroupResponse struct {
	BasicUserGroup
	Users     []BasicUser `json:"users"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewBasicUser converts a user to its basic representation
func NewBasicUser(u *identity.User) BasicUser {
	return BasicUser{
		ID:        u.ID.String(),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// NewBasicUsers converts a slice of users
func NewBasicUsers(users []*identity.User) []BasicUser {
	out := make([]BasicUser, len(users))
	for i, u := range users {
		out[i] = NewBasicUser(u)
	}
	return out
}

// NewUserResponse converts a user, with its effective roles
func NewUserResponse(u *identity.User) UserResponse {
	roles := u.Roles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	groups := make([]BasicUserGroup, len(u.Groups))
	for i, g := range u.Groups {
		groups[i] = newBasicUserGroup(g)
	}
	return UserResponse{
		BasicUser:  NewBasicUser(u),
		Language:   u.Language,
		Locale:     u.Locale,
		Timezone:   u.Timezone,
		Roles:      names,
		UserGroups: groups,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// NewUserResponses converts a slice of users
func NewUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = NewUserResponse(u)
	}
	return out
}

func newBasicUserGroup(g *identity.UserGroup) BasicUserGroup {
	return BasicUserGroup{ID: g.ID.String(), Name: g.Name, Role: g.Role.String()}
}

// NewUserGroupResponse converts a group with its members
func NewUserGroupResponse(g *identity.UserGroup) UserGroupResponse {
	return UserGroupResponse{
		BasicUserGroup: newBasicUserGroup(g),
		Users:          NewBasicUsers(g.Users),
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

// NewUserGroupResponses converts a slice of groups
func NewUserGroupResponses(groups []*identity.UserGroup) []UserGroupResponse {
	out := make([]UserGroupResponse, len(groups))
	for i, g := range groups {
		out[i] = NewUserGroupResponse(g)
	}
	return out
}
