package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/restapi/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUnitOfWork_FlushCommits(t *testing.T) {
	db := setupTestDB(t)
	users := NewGormUserRepository(db)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	user := newTestUser(t, "john", "john@example.com")
	require.NoError(t, uow.Persist(ctx, func(ctx context.Context) error {
		return users.Save(ctx, user)
	}))
	assert.Equal(t, 1, uow.Pending())

	_, err := users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "nothing is written before flush")

	require.NoError(t, uow.Flush(ctx))
	assert.Zero(t, uow.Pending())

	found, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "john", found.Username)
}

func TestGormUnitOfWork_FlushRollsBack(t *testing.T) {
	db := setupTestDB(t)
	users := NewGormUserRepository(db)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	user := newTestUser(t, "john", "john@example.com")
	boom := errors.New("boom")
	require.NoError(t, uow.Persist(ctx, func(ctx context.Context) error { return users.Save(ctx, user) }))
	require.NoError(t, uow.Persist(ctx, func(context.Context) error { return boom }))

	err := uow.Flush(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, uow.Pending())

	_, err = users.FindByID(ctx, user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUnitOfWork_FlushEmpty(t *testing.T) {
	uow := NewUnitOfWork(setupTestDB(t))
	assert.NoError(t, uow.Flush(context.Background()))
}

func TestGormUnitOfWork_Discard(t *testing.T) {
	uow := NewUnitOfWork(setupTestDB(t))
	ctx := context.Background()

	for range 3 {
		require.NoError(t, uow.Persist(ctx, func(context.Context) error { return nil }))
	}

	assert.Equal(t, 3, uow.Discard())
	assert.Zero(t, uow.Pending())
	assert.Zero(t, uow.Discard())
}
