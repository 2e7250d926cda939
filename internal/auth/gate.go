package auth

import (
	"context"
	"strings"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/store"
	pkgerrors "go-warehouse-ms/pkg/errors"
)

// ErrInvalidCredentials is the only failure an unknown user or a wrong password produces.
var ErrInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")

// Gate verifies credentials against the users table.
type Gate struct {
	accessor  *store.Accessor
	dummyHash string
}

// NewGate builds a Gate. cost is the bcrypt cost used for the dummy hash
// compared when the username does not exist.
func NewGate(accessor *store.Accessor, cost int) (*Gate, error) {
	dummy, err := model.HashPassword("warehouse-ms-dummy-password", cost)
	if err != nil {
		return nil, err
	}
	return &Gate{accessor: accessor, dummyHash: dummy}, nil
}

// Authenticate returns the principal for username when password matches its stored hash.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*model.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		model.CheckPassword(g.dummyHash, password)
		return nil, ErrInvalidCredentials
	}

	row, found, err := g.accessor.View(ctx, store.TableUsers, "username", username)
	if err != nil {
		return nil, err
	}
	if !found {
		model.CheckPassword(g.dummyHash, password)
		return nil, ErrInvalidCredentials
	}

	hash, _ := row.String("password")
	if !model.CheckPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}

	userID, ok := row.Int64("user_id")
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user row has no id")
	}
	rawRole, _ := row.String("role")
	role, err := model.ParseRole(rawRole)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "user row has an unknown role")
	}

	return &model.Principal{UserID: userID, Username: username, Role: role}, nil
}
