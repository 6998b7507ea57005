package resource

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/restapi/backend/internal/domain/identity"
	"github.com/restapi/backend/internal/domain/shared"
	"github.com/restapi/backend/internal/infrastructure/persistence"
	"github.com/restapi/backend/internal/interfaces/form"
	"github.com/restapi/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	users  *UserResource
	groups *UserGroupResource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	v := NewValidator()
	groups := NewUserGroupResource(persistence.NewGormUserGroupRepository(db), v, zap.NewNop())
	users := NewUserResource(
		persistence.NewGormUserRepository(db),
		form.NewUserGroupTransformer(groups),
		v,
		zap.NewNop(),
	)
	return &fixture{db: db, users: users, groups: groups}
}

func (f *fixture) group(t *testing.T, name string, role identity.Role) *identity.UserGroup {
	t.Helper()
	d := &UserGroupDTO{}
	d.SetName(name)
	d.SetRole(string(role))
	g, err := f.groups.Create(context.Background(), d)
	require.NoError(t, err)
	return g
}

// user stores a user directly so tests do not pay for password hashing.
func (f *fixture) user(t *testing.T, username string) *identity.User {
	t.Helper()
	u := identity.NewUser()
	require.NoError(t, u.SetUsername(username))
	require.NoError(t, u.SetFirstName("First"))
	require.NoError(t, u.SetLastName("Last"))
	require.NoError(t, u.SetEmail(username+"@example.com"))
	u.PasswordHash = "$2a$04$hash"
	require.NoError(t, f.users.Save(context.Background(), u, true, false))
	return u
}

func TestResource_FindOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.user(t, "john")

	t.Run("found", func(t *testing.T) {
		u, err := f.users.FindOne(ctx, existing.ID.String(), true)
		require.NoError(t, err)
		assert.Equal(t, "john", u.Username)
	})

	t.Run("missing and optional", func(t *testing.T) {
		u, err := f.users.FindOne(ctx, uuid.NewString(), false)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("missing and required", func(t *testing.T) {
		_, err := f.users.FindOne(ctx, uuid.NewString(), true)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		u, err := f.groups.FindOne(ctx, "not-a-uuid", false)
		require.NoError(t, err)
		assert.Nil(t, u)

		_, err = f.groups.FindOne(ctx, "not-a-uuid", true)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestResource_Find(t *testing.T) {
	f := newFixture(t)
	f.user(t, "anna")
	f.user(t, "bob")

	filter := shared.DefaultFilter()
	filter.Search = "ann"
	users, total, err := f.users.Find(context.Background(), filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "anna", users[0].Username)
}

func TestResource_Save(t *testing.T) {
	t.Run("without a unit of work the write is immediate", func(t *testing.T) {
		f := newFixture(t)
		g := identity.NewUserGroup()
		require.NoError(t, g.SetName("Staff"))
		require.NoError(t, g.SetRole(identity.RoleUser))

		require.NoError(t, f.groups.Save(context.Background(), g, false, false))

		found, err := f.groups.FindOne(context.Background(), g.ID.String(), false)
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("staged writes wait for a flush", func(t *testing.T) {
		f := newFixture(t)
		uow := persistence.NewUnitOfWork(f.db)
		ctx := shared.WithUnitOfWork(context.Background(), uow)

		g := identity.NewUserGroup()
		require.NoError(t, g.SetName("Staff"))
		require.NoError(t, g.SetRole(identity.RoleUser))
		require.NoError(t, f.groups.Save(ctx, g, false, false))
		assert.Equal(t, 1, uow.Pending())

		found, err := f.groups.FindOne(ctx, g.ID.String(), false)
		require.NoError(t, err)
		assert.Nil(t, found, "not visible before flush")

		u := identity.NewUser()
		require.NoError(t, u.SetUsername("mia"))
		g.AddUser(u)
		// skipValidation lets an incomplete user through
		require.NoError(t, f.users.Save(ctx, u, true, true))
		assert.Zero(t, uow.Pending())

		loaded, err := f.groups.FindOne(ctx, g.ID.String(), true)
		require.NoError(t, err)
		require.Len(t, loaded.Users, 1)
		assert.Equal(t, "mia", loaded.Users[0].Username)
	})

	t.Run("invalid entity is rejected before staging", func(t *testing.T) {
		f := newFixture(t)
		uow := persistence.NewUnitOfWork(f.db)
		ctx := shared.WithUnitOfWork(context.Background(), uow)

		err := f.groups.Save(ctx, identity.NewUserGroup(), true, false)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Zero(t, uow.Pending())
	})
}

func TestResource_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "gone")

	require.NoError(t, f.users.Delete(ctx, u.ID))

	found, err := f.users.FindOne(ctx, u.ID.String(), false)
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.ErrorIs(t, f.users.Delete(ctx, u.ID), shared.ErrNotFound)
}
