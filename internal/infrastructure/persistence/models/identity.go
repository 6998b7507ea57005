package models

import (
	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Username  string            `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_username"`
	FirstName string            `gorm:"type:varchar(255);not null"`
	LastName  string            `gorm:"type:varchar(255);not null"`
	Email     string            `gorm:"type:varchar(255);not null;uniqueIndex:uq_user_email"`
	Language  string            `gorm:"type:varchar(16);not null"`
	Locale    string            `gorm:"type:varchar(16);not null"`
	Timezone  string            `gorm:"type:varchar(255);not null"`
	Password  string            `gorm:"type:varchar(255);not null"`
	Groups    []*UserGroupModel `gorm:"many2many:user_has_user_group;joinForeignKey:UserID;joinReferences:UserGroupID"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "user"
}

// ToDomain converts the persistence model to a domain User. Loaded groups are attached
// without their own member lists.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Language:     m.Language,
		Locale:       m.Locale,
		Timezone:     m.Timezone,
		PasswordHash: m.Password,
		Groups:       make([]*identity.UserGroup, 0, len(m.Groups)),
	}
	for _, g := range m.Groups {
		user.Groups = append(user.Groups, g.toDomainShallow())
	}
	return user
}

// FromDomain populates the persistence model from a domain User. Groups are not copied;
// memberships are written through UserHasUserGroupModel.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Username = u.Username
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Email = u.Email
	m.Language = u.Language
	m.Locale = u.Locale
	m.Timezone = u.Timezone
	m.Password = u.PasswordHash
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

func (m *UserModel) toDomainShallow() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Username:     m.Username,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		Language:     m.Language,
		Locale:       m.Locale,
		Timezone:     m.Timezone,
		PasswordHash: m.Password,
		Groups:       make([]*identity.UserGroup, 0),
	}
}

// UserGroupModel is the persistence model for the UserGroup domain entity.
type UserGroupModel struct {
	BaseModel
	Name  string        `gorm:"type:varchar(255);not null"`
	Role  string        `gorm:"type:varchar(255);not null;index"`
	Users []*UserModel `gorm:"many2many:user_has_user_group;joinForeignKey:UserGroupID;joinReferences:UserID"`
}

// TableName returns the table name for GORM
func (UserGroupModel) TableName() string {
	return "user_group"
}

// ToDomain converts the persistence model to a domain UserGroup. Loaded users are attached
// with only this group in their group list.
func (m *UserGroupModel) ToDomain() *identity.UserGroup {
	group := m.toDomainShallow()
	for _, u := range m.Users {
		user := u.toDomainShallow()
		user.Groups = append(user.Groups, group)
		group.Users = append(group.Users, user)
	}
	return group
}

func (m *UserGroupModel) toDomainShallow() *identity.UserGroup {
	return &identity.UserGroup{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Role:       identity.Role(m.Role),
		Users:      make([]*identity.User, 0),
	}
}

// FromDomain populates the persistence model from a domain UserGroup.
func (m *UserGroupModel) FromDomain(g *identity.UserGroup) {
	m.FromDomainBaseEntity(g.BaseEntity)
	m.Name = g.Name
	m.Role = string(g.Role)
}

// UserGroupModelFromDomain creates a new persistence model from a domain UserGroup.
func UserGroupModelFromDomain(g *identity.UserGroup) *UserGroupModel {
	m := &UserGroupModel{}
	m.FromDomain(g)
	return m
}

// UserHasUserGroupModel is the membership join row. The user side owns it.
type UserHasUserGroupModel struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserGroupID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (UserHasUserGroupModel) TableName() string {
	return "user_has_user_group"
}

// MembershipsFromDomain returns the join rows for every group of u.
func MembershipsFromDomain(u *identity.User) []UserHasUserGroupModel {
	rows := make([]UserHasUserGroupModel, 0, len(u.Groups))
	for _, g := range u.Groups {
		rows = append(rows, UserHasUserGroupModel{UserID: u.ID, UserGroupID: g.ID})
	}
	return rows
}
