package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/repo/memory"
	"github.com/vinicius0026/hapi-postgres-boilerplate/internal/users"
)

func newService(t *testing.T) *users.Service {
	t.Helper()

	return users.NewService(memory.NewUsersRepo())
}

func TestCreateThenRead(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "alice", "secret-pass", []string{users.ScopeUser})
	require.NoError(t, err)
	require.NotZero(t, id)

	view, err := svc.Read(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, view.ID)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, []string{users.ScopeUser}, view.Scope)
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "secret-pass", []string{users.ScopeUser})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "alice", "other-pass", []string{users.ScopeAdmin})
	assert.ErrorIs(t, err, users.ErrUsernameTaken)
}

func TestReadUpdateDeleteMissing(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Read(ctx, 42)
	assert.ErrorIs(t, err, users.ErrNotFound)

	_, err = svc.Update(ctx, 42, users.UpdateInput{Scope: []string{users.ScopeAdmin}})
	assert.ErrorIs(t, err, users.ErrNotFound)

	err = svc.Delete(ctx, 42)
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestValidateCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "secret-pass", []string{users.ScopeUser})
	require.NoError(t, err)

	t.Run("match", func(t *testing.T) {
		view, ok, err := svc.ValidateCredentials(ctx, "alice", "secret-pass")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "alice", view.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, ok, err := svc.ValidateCredentials(ctx, "alice", "not-the-pass")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, ok, err := svc.ValidateCredentials(ctx, "nobody", "secret-pass")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUpdateScopeOnlyKeepsPassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "alice", "secret-pass", []string{users.ScopeUser})
	require.NoError(t, err)

	view, err := svc.Update(ctx, id, users.UpdateInput{Scope: []string{users.ScopeUser, users.ScopeAdmin}})
	require.NoError(t, err)
	assert.Equal(t, []string{users.ScopeUser, users.ScopeAdmin}, view.Scope)

	// password untouched by a scope-only update
	_, ok, err := svc.ValidateCredentials(ctx, "alice", "secret-pass")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdatePasswordRotates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, "alice", "old-pass", []string{users.ScopeUser})
	require.NoError(t, err)

	newPass := "new-pass"

	_, err = svc.Update(ctx, id, users.UpdateInput{Password: &newPass})
	require.NoError(t, err)

	_, ok, err := svc.ValidateCredentials(ctx, "alice", "old-pass")
	require.NoError(t, err)
	assert.False(t, ok, "old password must stop validating")

	_, ok, err = svc.ValidateCredentials(ctx, "alice", "new-pass")
	require.NoError(t, err)
	assert.True(t, ok, "new password must validate")
}

func TestListPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	names := []string{"u1", "u2", "u3", "u4", "u5"}

	for _, name := range names {
		_, err := svc.Create(ctx, name, "some-pass", []string{users.ScopeUser})
		require.NoError(t, err)
	}

	t.Run("full page", func(t *testing.T) {
		page, err := svc.List(ctx, 1, 2)
		require.NoError(t, err)

		assert.Equal(t, 5, page.Pagination.TotalItems)
		assert.Equal(t, 1, page.Pagination.Page)
		assert.Equal(t, 2, page.Pagination.Limit)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "u1", page.Data[0].Username)
		assert.Equal(t, "u2", page.Data[1].Username)
	})

	t.Run("last page remainder", func(t *testing.T) {
		page, err := svc.List(ctx, 3, 2)
		require.NoError(t, err)

		assert.Equal(t, 5, page.Pagination.TotalItems)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "u5", page.Data[0].Username)
	})

	t.Run("past the end", func(t *testing.T) {
		page, err := svc.List(ctx, 4, 2)
		require.NoError(t, err)

		assert.Equal(t, 5, page.Pagination.TotalItems)
		assert.Empty(t, page.Data)
	})
}
