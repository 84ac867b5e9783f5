package auth_test

import (
	"context"
	"path/filepath"
	"testing"

	"keijiban/auth"
	"keijiban/models"
	"keijiban/services"
	"keijiban/store"

	"github.com/stretchr/testify/require"
)

func TestKeyAuthorizer(t *testing.T) {
	a := &auth.KeyAuthorizer{Key: "s3cret"}
	ctx := context.Background()

	require.NoError(t, a.Authorize(ctx, auth.Credential{Key: "s3cret"}))
	require.ErrorIs(t, a.Authorize(ctx, auth.Credential{Key: "wrong"}), services.ErrForbidden)
	require.ErrorIs(t, a.Authorize(ctx, auth.Credential{}), services.ErrForbidden)

	// A user id means nothing in key mode.
	require.ErrorIs(t, a.Authorize(ctx, auth.Credential{UserID: "u1"}), services.ErrForbidden)

	// An unset key admits nobody rather than everybody.
	empty := &auth.KeyAuthorizer{}
	require.ErrorIs(t, empty.Authorize(ctx, auth.Credential{Key: ""}), services.ErrForbidden)
}

func TestRoleAuthorizer(t *testing.T) {
	ctx := context.Background()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "db.json"), services.BootstrapDocument(true))
	users := services.NewUserService(st)
	a := &auth.RoleAuthorizer{Users: users}

	admin, err := users.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, a.Authorize(ctx, auth.Credential{UserID: admin.ID}))
	require.ErrorIs(t, a.Authorize(ctx, auth.Credential{UserID: "unknown"}), services.ErrForbidden)
	require.ErrorIs(t, a.Authorize(ctx, auth.Credential{}), services.ErrForbidden)

	alice, err := users.Create(ctx, admin.ID, "alice", "pw", models.RoleUser)
	require.NoError(t, err)
	require.ErrorIs(t, a.Authorize(ctx, auth.Credential{UserID: alice.ID}), services.ErrForbidden)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.IssueToken("secret", "user-42")
	require.NoError(t, err)

	id, err := auth.ParseToken("secret", token)
	require.NoError(t, err)
	require.Equal(t, "user-42", id)

	_, err = auth.ParseToken("other-secret", token)
	require.Error(t, err)

	_, err = auth.ParseToken("secret", "not-a-token")
	require.Error(t, err)
}
