package service

import (
	"context"
	"time"

	"go-warehouse-ms/internal/auth"
	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/config"
	pkgerrors "go-warehouse-ms/pkg/errors"
	"go-warehouse-ms/pkg/jwt"
	"go-warehouse-ms/pkg/logger"
)

var (
	ErrWrongPassword = pkgerrors.New(pkgerrors.CodeValidation, "current password is incorrect")
	ErrStaleSession  = pkgerrors.New(pkgerrors.CodeUnauthorized, "session user no longer exists")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error)
	Profile(ctx context.Context, p *model.Principal) (*SessionResponse, error)
	ChangePassword(ctx context.Context, p *model.Principal, req ChangePasswordRequest) error
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionResponse
}

type SessionResponse struct {
	User        model.UserResponse `json:"user"`
	Permissions []string           `json:"permissions"` // "resource:action" codes
}

type authService struct {
	gate       *auth.Gate
	acc        *store.Accessor
	jwtCfg     config.JWTConfig
	bcryptCost int
	logg       *logger.Logger
	now        func() time.Time
}

func NewAuthService(gate *auth.Gate, acc *store.Accessor, jwtCfg config.JWTConfig, bcryptCost int, logg *logger.Logger) AuthService {
	return &authService{
		gate:       gate,
		acc:        acc,
		jwtCfg:     jwtCfg,
		bcryptCost: bcryptCost,
		logg:       loggerOrNop(logg),
		now:        time.Now,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	// 1. Verify credentials
	principal, err := s.gate.Authenticate(ctx, username, password)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			s.logg.Warn(ctx, "login failed")
		}
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, principal.UserID)

	// 2. Issue a session token
	token, expiresAt, err := jwt.GenerateToken(s.jwtCfg, *principal, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to generate token")
	}

	session, err := s.session(ctx, principal)
	if err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "login succeeded")
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, SessionResponse: *session}, nil
}

// ValidateToken checks the signature and then reloads the user, so a deleted
// user is rejected and a changed role applies to the very next request.
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*model.Principal, error) {
	claims, err := jwt.ValidateToken(s.jwtCfg, tokenString)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, err.Error())
	}

	user, found, err := store.ViewAs[model.User](ctx, s.acc, store.TableUsers, "user_id", claims.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logg.Warn(s.logg.WithUserID(ctx, claims.UserID), "token for missing user rejected")
		return nil, ErrStaleSession
	}
	return &model.Principal{UserID: user.UserID, Username: user.Username, Role: user.Role}, nil
}

func (s *authService) Profile(ctx context.Context, p *model.Principal) (*SessionResponse, error) {
	if p == nil {
		return nil, policy.ErrUnauthenticated
	}
	return s.session(ctx, p)
}

// ChangePassword lets any signed-in user replace their own password.
func (s *authService) ChangePassword(ctx context.Context, p *model.Principal, req ChangePasswordRequest) error {
	if p == nil {
		return policy.ErrUnauthenticated
	}
	if err := validate(req); err != nil {
		return err
	}
	if _, err := s.gate.Authenticate(ctx, p.Username, req.OldPassword); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			return ErrWrongPassword
		}
		return err
	}

	hash, err := model.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}
	if err := s.acc.Update(ctx, store.TableUsers, "user_id", p.UserID, map[string]any{"password": hash}); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithUserID(ctx, p.UserID), "password changed")
	return nil
}

func (s *authService) session(ctx context.Context, p *model.Principal) (*SessionResponse, error) {
	user, found, err := store.ViewAs[model.User](ctx, s.acc, store.TableUsers, "user_id", p.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return &SessionResponse{
		User:        user.ToResponse(),
		Permissions: policy.Permissions(user.Role),
	}, nil
}
