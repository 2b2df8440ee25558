package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernlabs/clientdash/internal/dash/domain"
	"github.com/fernlabs/clientdash/internal/dash/store/drivers/memory"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		Store:  memory.NewStore(),
		Secret: []byte("test-secret"),
	}
}

func TestSeedAdmin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates the first admin account", func(t *testing.T) {
		auth := newAuth(t)
		require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "hunter22", "Admin"))

		user, err := auth.Store.Users().GetUserByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, user.Role)
	})

	t.Run("is a no-op once an account exists", func(t *testing.T) {
		auth := newAuth(t)
		require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "hunter22", "Admin"))
		require.NoError(t, auth.SeedAdmin(ctx, "other@example.com", "changed", "Other"))

		_, err := auth.Store.Users().GetUserByEmail(ctx, "other@example.com")
		require.Error(t, err)
	})

	t.Run("does nothing without seed credentials", func(t *testing.T) {
		auth := newAuth(t)
		require.NoError(t, auth.SeedAdmin(ctx, "", "", ""))

		empty, err := auth.Store.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid credentials return a verifiable session", func(t *testing.T) {
		auth := newAuth(t)
		require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "hunter22", "Admin"))

		token, user, err := auth.Login(ctx, "admin@example.com", "hunter22")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := auth.VerifySession(token)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.UserID)
		require.Equal(t, "admin@example.com", claims.Email)
		require.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("wrong password is denied and audited", func(t *testing.T) {
		auth := newAuth(t)
		require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "hunter22", "Admin"))

		_, _, err := auth.Login(ctx, "admin@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Contains(t, logActions(t, auth.Store), domain.ActionLoginDenied)
	})

	t.Run("unknown email is denied the same way", func(t *testing.T) {
		auth := newAuth(t)
		_, _, err := auth.Login(ctx, "ghost@example.com", "whatever")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestVerifySession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	auth := newAuth(t)
	require.NoError(t, auth.SeedAdmin(ctx, "admin@example.com", "hunter22", "Admin"))
	token, _, err := auth.Login(ctx, "admin@example.com", "hunter22")
	require.NoError(t, err)

	t.Run("rejects tampered tokens", func(t *testing.T) {
		_, err := auth.VerifySession(token + "x")
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("rejects tokens signed with a different secret", func(t *testing.T) {
		other := &AuthService{Store: auth.Store, Secret: []byte("other-secret")}
		_, err := other.VerifySession(token)
		require.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auth.VerifySession("not.a.jwt")
		require.ErrorIs(t, err, ErrInvalidSession)
	})
}
