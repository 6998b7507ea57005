package identity

import (
	"regexp"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/language"
)

// Defaults applied to new users
const (
	DefaultLanguage = "en"
	DefaultLocale   = "en"
	DefaultTimezone = "Europe/Kyiv"
)

// Password cost for bcrypt
var bcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// SupportedLanguages lists the languages a user may pick for the interface.
var SupportedLanguages = []language.Tag{language.English, language.Russian, language.Ukrainian}

// User represents an API user. Roles are not stored on the user; they come from its groups.
type User struct {
	shared.BaseEntity
	Username     string `validate:"required,min=2,max=255"`
	FirstName    string `validate:"required,min=2,max=255"`
	LastName     string `validate:"required,min=2,max=255"`
	Email        string `validate:"required,email,max=255"`
	Language     string `validate:"required"`
	Locale       string `validate:"required"`
	Timezone     string `validate:"required,timezone"`
	PasswordHash string `validate:"required"`
	Groups       []*UserGroup
}

// NewUser creates a user with a fresh id and default language, locale and timezone.
// Identity fields are filled through the setters.
func NewUser() *User {
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Language:   DefaultLanguage,
		Locale:     DefaultLocale,
		Timezone:   DefaultTimezone,
		Groups:     make([]*UserGroup, 0),
	}
}

// SetUsername sets the login name
func (u *User) SetUsername(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = strings.TrimSpace(username)
	u.Touch()
	return nil
}

// SetFirstName sets the user's first name
func (u *User) SetFirstName(firstName string) error {
	firstName = strings.TrimSpace(firstName)
	if err := validateName("FIRST_NAME", "First name", firstName); err != nil {
		return err
	}
	u.FirstName = firstName
	u.Touch()
	return nil
}

// SetLastName sets the user's last name
func (u *User) SetLastName(lastName string) error {
	lastName = strings.TrimSpace(lastName)
	if err := validateName("LAST_NAME", "Last name", lastName); err != nil {
		return err
	}
	u.LastName = lastName
	u.Touch()
	return nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.Touch()
	return nil
}

// SetLanguage sets the interface language. Only SupportedLanguages are accepted.
func (u *User) SetLanguage(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return shared.NewDomainError("INVALID_LANGUAGE", "Language '"+lang+"' is not a valid BCP 47 tag")
	}
	base, _ := tag.Base()
	if !slices.ContainsFunc(SupportedLanguages, func(t language.Tag) bool {
		b, _ := t.Base()
		return b == base
	}) {
		return shared.NewDomainError("INVALID_LANGUAGE", "Language '"+lang+"' is not supported")
	}
	u.Language = base.String()
	u.Touch()
	return nil
}

// SetLocale sets the formatting locale
func (u *User) SetLocale(locale string) error {
	tag, err := language.Parse(locale)
	if err != nil || tag == language.Und {
		return shared.NewDomainError("INVALID_LOCALE", "Locale '"+locale+"' is not a valid BCP 47 tag")
	}
	u.Locale = tag.String()
	u.Touch()
	return nil
}

// SetTimezone sets the IANA timezone
func (u *User) SetTimezone(tz string) error {
	if tz == "" || tz == "Local" {
		return shared.NewDomainError("INVALID_TIMEZONE", "Timezone cannot be empty")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return shared.NewDomainError("INVALID_TIMEZONE", "Timezone '"+tz+"' is not a valid IANA zone")
	}
	u.Timezone = tz
	u.Touch()
	return nil
}

// SetPlainPassword validates and hashes a new password
func (u *User) SetPlainPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetGroups replaces the user's group memberships, keeping both sides in sync.
func (u *User) SetGroups(groups []*UserGroup) {
	for _, g := range slices.Clone(u.Groups) {
		if !slices.ContainsFunc(groups, func(n *UserGroup) bool { return n.ID == g.ID }) {
			g.RemoveUser(u)
			u.removeGroup(g.ID)
		}
	}
	// groups loaded from the user side may not list their members
	for _, g := range groups {
		g.AddUser(u)
		u.addGroup(g)
	}
	u.Touch()
}

// InGroup reports whether the user belongs to the group.
func (u *User) InGroup(id uuid.UUID) bool {
	return slices.ContainsFunc(u.Groups, func(g *UserGroup) bool { return g.ID == id })
}

// Roles returns the roles granted by the user's groups expanded through the hierarchy.
// Every user holds at least RoleLogged.
func (u *User) Roles() []Role {
	roles := []Role{RoleLogged}
	for _, g := range u.Groups {
		roles = append(roles, g.Role)
	}
	return ExpandRoles(roles)
}

// FullName returns "first last".
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) addGroup(g *UserGroup) {
	if !u.InGroup(g.ID) {
		u.Groups = append(u.Groups, g)
	}
}

func (u *User) removeGroup(id uuid.UUID) {
	u.Groups = slices.DeleteFunc(u.Groups, func(g *UserGroup) bool { return g.ID == id })
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 2 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 2 characters")
	}
	if len(username) > 255 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 255 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validateName(code, field, value string) error {
	if len(value) < 2 || len(value) > 255 {
		return shared.NewDomainError("INVALID_"+code, field+" must be between 2 and 255 characters")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 255 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 255 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
