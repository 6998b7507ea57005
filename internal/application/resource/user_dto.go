package resource

import (
	"github.com/restapi/backend/internal/application/restdto"
	"github.com/restapi/backend/internal/domain/identity"
)

// UserDTO carries a user create, replace or patch request.
type UserDTO struct {
	restdto.Rest
	Username      string   `json:"username" validate:"required,min=2,max=255"`
	FirstName     string   `json:"firstName" validate:"required,min=2,max=255"`
	LastName      string   `json:"lastName" validate:"required,min=2,max=255"`
	Email         string   `json:"email" validate:"required,email,max=255"`
	Language      string   `json:"language" validate:"omitempty,oneof=en ru uk"`
	Locale        string   `json:"locale" validate:"omitempty,bcp47_language_tag"`
	Timezone      string   `json:"timezone" validate:"omitempty,timezone"`
	PlainPassword string   `json:"plainPassword" validate:"omitempty,min=8,max=72"`
	UserGroups    []string `json:"userGroups" validate:"omitempty,dive,uuid"`
}

func (d *UserDTO) SetUsername(v string) {
	d.SetVisited("username")
	d.Username = v
}

func (d *UserDTO) GetUsername() string { return d.Username }

func (d *UserDTO) SetFirstName(v string) {
	d.SetVisited("firstName")
	d.FirstName = v
}

func (d *UserDTO) GetFirstName() string { return d.FirstName }

func (d *UserDTO) SetLastName(v string) {
	d.SetVisited("lastName")
	d.LastName = v
}

func (d *UserDTO) GetLastName() string { return d.LastName }

func (d *UserDTO) SetEmail(v string) {
	d.SetVisited("email")
	d.Email = v
}

func (d *UserDTO) GetEmail() string { return d.Email }

func (d *UserDTO) SetLanguage(v string) {
	d.SetVisited("language")
	d.Language = v
}

func (d *UserDTO) GetLanguage() string { return d.Language }

func (d *UserDTO) SetLocale(v string) {
	d.SetVisited("locale")
	d.Locale = v
}

func (d *UserDTO) GetLocale() string { return d.Locale }

func (d *UserDTO) SetTimezone(v string) {
	d.SetVisited("timezone")
	d.Timezone = v
}

func (d *UserDTO) GetTimezone() string { return d.Timezone }

func (d *UserDTO) SetPlainPassword(v string) {
	d.SetVisited("plainPassword")
	d.PlainPassword = v
}

func (d *UserDTO) GetPlainPassword() string { return d.PlainPassword }

func (d *UserDTO) SetUserGroups(v []string) {
	d.SetVisited("userGroups")
	d.UserGroups = v
}

func (d *UserDTO) GetUserGroups() []string { return d.UserGroups }

type userSchema struct {
	*restdto.Schema[*UserDTO, *identity.User]
	userGroups *restdto.Binding[*UserDTO, *identity.User, []string]
}

// userGroups has no entity setter: it is always reconciled through a mapping that
// resolves the ids into groups.
func newUserSchema() userSchema {
	s := restdto.NewSchema[*UserDTO, *identity.User]()
	restdto.Property(s, "username", func(d *UserDTO) string { return d.Username }, (*UserDTO).SetUsername).
		Getter(restdto.Get, (*UserDTO).GetUsername).
		Setter((*identity.User).SetUsername)
	restdto.Property(s, "firstName", func(d *UserDTO) string { return d.FirstName }, (*UserDTO).SetFirstName).
		Getter(restdto.Get, (*UserDTO).GetFirstName).
		Setter((*identity.User).SetFirstName)
	restdto.Property(s, "lastName", func(d *UserDTO) string { return d.LastName }, (*UserDTO).SetLastName).
		Getter(restdto.Get, (*UserDTO).GetLastName).
		Setter((*identity.User).SetLastName)
	restdto.Property(s, "email", func(d *UserDTO) string { return d.Email }, (*UserDTO).SetEmail).
		Getter(restdto.Get, (*UserDTO).GetEmail).
		Setter((*identity.User).SetEmail)
	restdto.Property(s, "language", func(d *UserDTO) string { return d.Language }, (*UserDTO).SetLanguage).
		Getter(restdto.Get, (*UserDTO).GetLanguage).
		Setter((*identity.User).SetLanguage)
	restdto.Property(s, "locale", func(d *UserDTO) string { return d.Locale }, (*UserDTO).SetLocale).
		Getter(restdto.Get, (*UserDTO).GetLocale).
		Setter((*identity.User).SetLocale)
	restdto.Property(s, "timezone", func(d *UserDTO) string { return d.Timezone }, (*UserDTO).SetTimezone).
		Getter(restdto.Get, (*UserDTO).GetTimezone).
		Setter((*identity.User).SetTimezone)
	restdto.Property(s, "plainPassword", func(d *UserDTO) string { return d.PlainPassword }, (*UserDTO).SetPlainPassword).
		Getter(restdto.Get, (*UserDTO).GetPlainPassword).
		Setter((*identity.User).SetPlainPassword)
	groups := restdto.Property(s, "userGroups", func(d *UserDTO) []string { return d.UserGroups }, (*UserDTO).SetUserGroups).
		Getter(restdto.Get, (*UserDTO).GetUserGroups)

	return userSchema{Schema: s, userGroups: groups}
}

var users = newUserSchema()

// DecodeUser reads a JSON request body into a UserDTO. Only the keys present in the
// body are visited.
func DecodeUser(data []byte) (*UserDTO, error) {
	d := &UserDTO{}
	if err := users.Decode(data, d); err != nil {
		return nil, err
	}
	return d, nil
}
