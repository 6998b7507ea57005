package resource

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/restapi/backend/internal/application/restdto"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// GroupTransformer converts between user groups and the ids a client sends.
type GroupTransformer interface {
	Transform(value any) []string
	ReverseTransform(ctx context.Context, value any) ([]*identity.UserGroup, error)
}

// UserResource manages users.
type UserResource struct {
	resource[*identity.User]
	users  identity.UserRepository
	groups GroupTransformer
}

// NewUserResource creates a new user resource
func NewUserResource(
	users identity.UserRepository,
	groups GroupTransformer,
	validate *validator.Validate,
	logger *zap.Logger,
) *UserResource {
	return &UserResource{
		resource: resource[*identity.User]{
			name:     "user",
			repo:     users,
			validate: validate,
			logger:   logger,
		},
		users:  users,
		groups: groups,
	}
}

// FindByUsername loads a user by login name, case-insensitively.
func (r *UserResource) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.users.FindByUsername(ctx, username)
}

// NewDTO returns a DTO holding the user's current state with nothing visited.
func (r *UserResource) NewDTO(u *identity.User) *UserDTO {
	d := &UserDTO{
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Language:   u.Language,
		Locale:     u.Locale,
		Timezone:   u.Timezone,
		UserGroups: r.groups.Transform(u.Groups),
	}
	d.SetID(u.ID.String())
	return d
}

// propertyError is implemented by errors that can be attributed to a DTO property
type propertyError interface {
	error
	SetProperty(name string)
}

// mappings resolves userGroups ids into groups and replaces the user's memberships.
func (r *UserResource) mappings(ctx context.Context) *restdto.Mappings[*UserDTO, *identity.User] {
	m := restdto.NewMappings[*UserDTO, *identity.User]()
	restdto.Map(m, users.userGroups, func(_ *UserDTO, u *identity.User, ids []string) error {
		groups, err := r.groups.ReverseTransform(ctx, ids)
		if err != nil {
			var pe propertyError
			if errors.As(err, &pe) {
				pe.SetProperty(users.userGroups.Name())
			}
			return err
		}
		u.SetGroups(groups)
		return nil
	})
	return m
}

// Create builds a new user from the DTO and saves it.
func (r *UserResource) Create(ctx context.Context, d *UserDTO) (*identity.User, error) {
	if !d.IsVisited("plainPassword") {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password is required for a new user")
	}
	if err := r.validate.StructCtx(ctx, d); err != nil {
		return nil, err
	}

	user, err := users.Update(d, identity.NewUser(), r.mappings(ctx))
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, user, true, false); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, r.logger).Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))
	return user, nil
}

// Update replaces the user's state with the visited properties of the DTO.
func (r *UserResource) Update(ctx context.Context, id string, d *UserDTO) (*identity.User, error) {
	user, err := r.FindOne(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := r.validate.StructCtx(ctx, d); err != nil {
		return nil, err
	}
	return r.apply(ctx, user, d)
}

// Patch merges the DTO over the user's current state, validates the merged result and
// applies the properties the request carried.
func (r *UserResource) Patch(ctx context.Context, id string, d *UserDTO) (*identity.User, error) {
	user, err := r.FindOne(ctx, id, true)
	if err != nil {
		return nil, err
	}

	merged, err := users.Patch(r.NewDTO(user), d)
	if err != nil {
		return nil, err
	}
	if err := r.validate.StructCtx(ctx, merged); err != nil {
		return nil, err
	}
	return r.apply(ctx, user, merged)
}

func (r *UserResource) apply(ctx context.Context, user *identity.User, d *UserDTO) (*identity.User, error) {
	if _, err := users.Update(d, user, r.mappings(ctx)); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, user, true, false); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, r.logger).Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.Strings("properties", d.Visited()))
	return user, nil
}
