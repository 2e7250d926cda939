package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-warehouse-ms/internal/auth"
	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/internal/testutil"
	pkgerrors "go-warehouse-ms/pkg/errors"
)

func newGate(t *testing.T) (*auth.Gate, *store.Accessor) {
	t.Helper()
	acc := store.NewAccessor(testutil.OpenDB(t))
	gate, err := auth.NewGate(acc, bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := model.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = acc.Insert(context.Background(), store.TableUsers, map[string]any{
		"username": "maria",
		"role":     string(model.RoleManager),
		"email":    "maria@example.com",
		"password": hash,
	})
	require.NoError(t, err)
	return gate, acc
}

func TestAuthenticateSuccess(t *testing.T) {
	gate, _ := newGate(t)

	principal, err := gate.Authenticate(context.Background(), "maria", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "maria", principal.Username)
	assert.Equal(t, model.RoleManager, principal.Role)
	assert.Positive(t, principal.UserID)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	gate, _ := newGate(t)
	ctx := context.Background()

	_, wrongPassword := gate.Authenticate(ctx, "maria", "nope")
	_, unknownUser := gate.Authenticate(ctx, "nobody", "s3cret")
	_, empty := gate.Authenticate(ctx, "", "")

	for _, err := range []error{wrongPassword, unknownUser, empty} {
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
	}
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthenticateIsCaseSensitive(t *testing.T) {
	gate, _ := newGate(t)

	_, err := gate.Authenticate(context.Background(), "Maria", "s3cret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestPasswordIsStoredHashed(t *testing.T) {
	_, acc := newGate(t)

	stored, found, err := acc.GetColumn(context.Background(), store.TableUsers, "password", "username", "maria")
	require.NoError(t, err)
	require.True(t, found)
	hash, _ := store.Row{"password": stored}.String("password")
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, model.CheckPassword(hash, "s3cret"))
}
