package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID, with its groups loaded
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username, case-insensitively
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindAll returns a page of users and the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]*User, int64, error)

	// Save inserts or updates the user together with its group memberships
	Save(ctx context.Context, user *User) error

	// Delete deletes a user by ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserGroupRepository defines the interface for user group persistence
type UserGroupRepository interface {
	// FindByID finds a group by ID, with its users loaded
	FindByID(ctx context.Context, id uuid.UUID) (*UserGroup, error)

	// FindAll returns a page of groups and the total count
	FindAll(ctx context.Context, filter shared.Filter) ([]*UserGroup, int64, error)

	// Save inserts or updates the group row. Memberships are owned by the user side.
	Save(ctx context.Context, group *UserGroup) error

	// Delete deletes a group by ID
	Delete(ctx context.Context, id uuid.UUID) error
}
