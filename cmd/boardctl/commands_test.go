package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/repository"
	"github.com/spec-kit/favorite-board/internal/service"
)

func memoryOpener(repo *repository.MemoryPrincipalRepository, migrated *bool) opener {
	return func(context.Context) (*runtime, error) {
		return &runtime{
			users: service.NewUserService(repo, zap.NewNop()),
			migrate: func(context.Context) error {
				*migrated = true
				return nil
			},
			close: func() {},
		}, nil
	}
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetupAdminCommand(t *testing.T) {
	repo := repository.NewMemoryPrincipalRepository()
	var migrated bool

	out, err := run(t, memoryOpener(repo, &migrated), "setup-admin", "Root@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "root@example.com is now an admin")

	p, err := repo.Get(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin)
	assert.True(t, p.IsEditor)
	assert.True(t, p.IsSubscribed)
}

func TestAddUserCommandFlags(t *testing.T) {
	repo := repository.NewMemoryPrincipalRepository()
	var migrated bool
	open := memoryOpener(repo, &migrated)

	_, err := run(t, open, "add-user", "ed@example.com", "--editor", "--subscribed=false")
	require.NoError(t, err)

	p, err := repo.Get(context.Background(), "ed@example.com")
	require.NoError(t, err)
	assert.False(t, p.IsAdmin)
	assert.True(t, p.IsEditor)
	assert.False(t, p.IsSubscribed)

	out, err := run(t, open, "list-users")
	require.NoError(t, err)
	assert.Contains(t, out, "ed@example.com")
}

func TestCommandArgs(t *testing.T) {
	repo := repository.NewMemoryPrincipalRepository()
	var migrated bool
	open := memoryOpener(repo, &migrated)

	_, err := run(t, open, "setup-admin")
	assert.Error(t, err)

	_, err = run(t, open, "add-user", "not-an-email")
	assert.ErrorIs(t, err, service.ErrInvalidEmail)

	_, err = run(t, open, "migrate")
	require.NoError(t, err)
	assert.True(t, migrated)
}
