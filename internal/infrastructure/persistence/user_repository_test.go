package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, username, email string) *identity.User {
	t.Helper()
	u := identity.NewUser()
	require.NoError(t, u.SetUsername(username))
	require.NoError(t, u.SetFirstName("Test"))
	require.NoError(t, u.SetLastName("User"))
	require.NoError(t, u.SetEmail(email))
	u.PasswordHash = "$2a$04$hash"
	return u
}

func newTestGroup(t *testing.T, name string, role identity.Role) *identity.UserGroup {
	t.Helper()
	g := identity.NewUserGroup()
	require.NoError(t, g.SetName(name))
	require.NoError(t, g.SetRole(role))
	return g
}

func TestGormUserRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	groups := NewGormUserGroupRepository(db)
	ctx := context.Background()

	admins := newTestGroup(t, "Admins", identity.RoleAdmin)
	require.NoError(t, groups.Save(ctx, admins))

	user := newTestUser(t, "john", "john@example.com")
	admins.AddUser(user)
	require.NoError(t, repo.Save(ctx, user))

	t.Run("by id with groups", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)

		assert.Equal(t, "john", found.Username)
		assert.Equal(t, "john@example.com", found.Email)
		assert.Equal(t, "$2a$04$hash", found.PasswordHash)
		require.Len(t, found.Groups, 1)
		assert.Equal(t, admins.ID, found.Groups[0].ID)
		assert.Contains(t, found.Roles(), identity.RoleAdmin)
	})

	t.Run("by username ignores case", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "JOHN")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormUserRepository_SaveReplacesMemberships(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	groups := NewGormUserGroupRepository(db)
	ctx := context.Background()

	a := newTestGroup(t, "Group A", identity.RoleUser)
	b := newTestGroup(t, "Group B", identity.RoleAdmin)
	require.NoError(t, groups.Save(ctx, a))
	require.NoError(t, groups.Save(ctx, b))

	user := newTestUser(t, "jane", "jane@example.com")
	user.SetGroups([]*identity.UserGroup{a, b})
	require.NoError(t, repo.Save(ctx, user))

	user.SetGroups([]*identity.UserGroup{b})
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, found.Groups, 1)
	assert.Equal(t, b.ID, found.Groups[0].ID)

	groupA, err := groups.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, groupA.Users)
}

func TestGormUserRepository_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestUser(t, "john", "john@example.com")))

	err := repo.Save(ctx, newTestUser(t, "john", "other@example.com"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormUserRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Save(ctx, newTestUser(t, name, name+"@example.com")))
	}

	t.Run("paginates and counts", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 2, OrderBy: "username", OrderDir: "asc"})
		require.NoError(t, err)

		assert.Equal(t, int64(3), total)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})

	t.Run("searches", func(t *testing.T) {
		users, total, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 20, Search: "CAR"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), total)
		require.Len(t, users, 1)
		assert.Equal(t, "carol", users[0].Username)
	})

	t.Run("unknown sort field falls back", func(t *testing.T) {
		users, _, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 20, OrderBy: "password; DROP TABLE user"})
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})
}

func TestGormUserRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	groups := NewGormUserGroupRepository(db)
	ctx := context.Background()

	g := newTestGroup(t, "Users", identity.RoleUser)
	require.NoError(t, groups.Save(ctx, g))
	user := newTestUser(t, "john", "john@example.com")
	g.AddUser(user)
	require.NoError(t, repo.Save(ctx, user))

	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var memberships int64
	require.NoError(t, db.Table("user_has_user_group").Count(&memberships).Error)
	assert.Zero(t, memberships)

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), shared.ErrNotFound)
}
