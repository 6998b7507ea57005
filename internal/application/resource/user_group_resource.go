package resource

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// UserGroupResource manages user groups.
type UserGroupResource struct {
	resource[*identity.UserGroup]
}

// NewUserGroupResource creates a new user group resource
func NewUserGroupResource(
	groups identity.UserGroupRepository,
	validate *validator.Validate,
	logger *zap.Logger,
) *UserGroupResource {
	return &UserGroupResource{
		resource: resource[*identity.UserGroup]{
			name:     "user_group",
			repo:     groups,
			validate: validate,
			logger:   logger,
		},
	}
}

// Create builds a new group from the DTO and saves it.
func (r *UserGroupResource) Create(ctx context.Context, d *UserGroupDTO) (*identity.UserGroup, error) {
	if err := r.validate.StructCtx(ctx, d); err != nil {
		return nil, err
	}

	group, err := userGroups.Update(d, identity.NewUserGroup(), nil)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, group, true, false); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, r.logger).Info("User group created",
		zap.String("group_id", group.ID.String()),
		zap.String("role", group.Role.String()))
	return group, nil
}

// Update replaces the group's state with the visited properties of the DTO.
func (r *UserGroupResource) Update(ctx context.Context, id string, d *UserGroupDTO) (*identity.UserGroup, error) {
	group, err := r.FindOne(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if err := r.validate.StructCtx(ctx, d); err != nil {
		return nil, err
	}
	return r.apply(ctx, group, d)
}

// Patch merges the DTO over the group's current state and applies it.
func (r *UserGroupResource) Patch(ctx context.Context, id string, d *UserGroupDTO) (*identity.UserGroup, error) {
	group, err := r.FindOne(ctx, id, true)
	if err != nil {
		return nil, err
	}

	merged, err := userGroups.Patch(NewUserGroupDTO(group), d)
	if err != nil {
		return nil, err
	}
	if err := r.validate.StructCtx(ctx, merged); err != nil {
		return nil, err
	}
	return r.apply(ctx, group, merged)
}

func (r *UserGroupResource) apply(ctx context.Context, group *identity.UserGroup, d *UserGroupDTO) (*identity.UserGroup, error) {
	if _, err := userGroups.Update(d, group, nil); err != nil {
		return nil, err
	}
	if err := r.Save(ctx, group, true, false); err != nil {
		return nil, err
	}
	return group, nil
}
