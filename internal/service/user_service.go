package service

import (
	"context"
	"strings"

	"go-warehouse-ms/internal/model"
	"go-warehouse-ms/internal/policy"
	"go-warehouse-ms/internal/store"
	"go-warehouse-ms/pkg/config"
	pkgerrors "go-warehouse-ms/pkg/errors"
	"go-warehouse-ms/pkg/logger"
)

type UserService interface {
	CreateUser(ctx context.Context, p *model.Principal, req CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, p *model.Principal, userID int64, req UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, p *model.Principal, userID int64) error
	ResetPassword(ctx context.Context, p *model.Principal, userID int64, newPassword string) error
	GetUser(ctx context.Context, p *model.Principal, userID int64) (*model.UserResponse, error)
	SearchUser(ctx context.Context, p *model.Principal, username string) (*model.UserResponse, error)
	ListUsers(ctx context.Context, p *model.Principal) ([]model.UserResponse, error)

	// SetPasswordByUsername is for operator tooling that runs without a session.
	SetPasswordByUsername(ctx context.Context, username, newPassword string) error
	// EnsureAdmin creates the bootstrap admin when the users table is empty.
	EnsureAdmin(ctx context.Context, admin config.AdminConfig) (bool, error)
}

type CreateUserRequest struct {
	Username string     `json:"username" validate:"required,max=255"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Email    string     `json:"email" validate:"required,email"`
	Phone    *string    `json:"phone" validate:"omitempty,max=20"`
	Role     model.Role `json:"role" validate:"required,role"`
}

type UpdateUserRequest struct {
	Email *string     `json:"email" validate:"omitempty,email"`
	Phone *string     `json:"phone" validate:"omitempty,max=20"`
	Role  *model.Role `json:"role" validate:"omitempty,role"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type userService struct {
	acc        *store.Accessor
	logg       *logger.Logger
	bcryptCost int
}

func NewUserService(acc *store.Accessor, logg *logger.Logger, bcryptCost int) UserService {
	return &userService{acc: acc, logg: loggerOrNop(logg), bcryptCost: bcryptCost}
}

func (s *userService) CreateUser(ctx context.Context, p *model.Principal, req CreateUserRequest) (*model.UserResponse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionCreate, policy.ResourceUser)
	if err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validate(req); err != nil {
		return nil, err
	}
	return s.create(ctx, req)
}

func (s *userService) create(ctx context.Context, req CreateUserRequest) (*model.UserResponse, error) {
	// 1. Username must be free
	_, taken, err := s.acc.ResolveKey(ctx, store.TableUsers, "user_id", []string{"username"}, []any{req.Username})
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	// 2. Hash the password
	hash, err := model.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}

	// 3. Save
	fields := map[string]any{
		"username": req.Username,
		"password": hash,
		"email":    req.Email,
		"role":     string(req.Role),
	}
	setIfPresent(fields, "phone", req.Phone)
	id, err := s.acc.Insert(ctx, store.TableUsers, fields)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConstraint) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"new_user_id": id,
		"new_role":    string(req.Role),
	}), "user created")
	return s.view(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, p *model.Principal, userID int64, req UpdateUserRequest) (*model.UserResponse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceUser)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.view(ctx, userID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	setIfPresent(fields, "email", req.Email)
	setIfPresent(fields, "phone", req.Phone)
	if req.Role != nil {
		fields["role"] = string(*req.Role)
	}
	if err := s.acc.Update(ctx, store.TableUsers, "user_id", userID, fields); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(ctx, "target_user_id", userID), "user updated")
	return s.view(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, p *model.Principal, userID int64) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionDelete, policy.ResourceUser)
	if err != nil {
		return err
	}
	if userID == p.UserID {
		return ErrCannotDeleteSelf
	}
	if err := s.acc.Delete(ctx, store.TableUsers, "user_id", userID); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "target_user_id", userID), "user deleted")
	return nil
}

// ResetPassword stores a fresh bcrypt hash for userID. The plaintext never leaves this call.
func (s *userService) ResetPassword(ctx context.Context, p *model.Principal, userID int64, newPassword string) error {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionUpdate, policy.ResourceUser)
	if err != nil {
		return err
	}
	if err := validate(ResetPasswordRequest{NewPassword: newPassword}); err != nil {
		return err
	}
	if _, err := s.view(ctx, userID); err != nil {
		return err
	}
	if err := s.setPassword(ctx, "user_id", userID, newPassword); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "target_user_id", userID), "user password reset")
	return nil
}

func (s *userService) SetPasswordByUsername(ctx context.Context, username, newPassword string) error {
	if err := validate(ResetPasswordRequest{NewPassword: newPassword}); err != nil {
		return err
	}
	_, found, err := s.acc.ResolveKey(ctx, store.TableUsers, "user_id", []string{"username"}, []any{username})
	if err != nil {
		return err
	}
	if !found {
		return ErrUserNotFound.WithDetails(map[string]any{"username": username})
	}
	if err := s.setPassword(ctx, "username", username, newPassword); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithField(ctx, "username", username), "user password reset")
	return nil
}

func (s *userService) setPassword(ctx context.Context, keyColumn string, keyValue any, newPassword string) error {
	hash, err := model.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to hash password")
	}
	return s.acc.Update(ctx, store.TableUsers, keyColumn, keyValue, map[string]any{"password": hash})
}

func (s *userService) GetUser(ctx context.Context, p *model.Principal, userID int64) (*model.UserResponse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceUser)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID)
}

// SearchUser looks a user up by exact username. The password column is never returned.
func (s *userService) SearchUser(ctx context.Context, p *model.Principal, username string) (*model.UserResponse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceUser)
	if err != nil {
		return nil, err
	}
	user, found, err := store.ViewAs[model.User](ctx, s.acc, store.TableUsers, "username", username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound.WithDetails(map[string]any{"username": username})
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) ListUsers(ctx context.Context, p *model.Principal) ([]model.UserResponse, error) {
	ctx, err := authorize(ctx, s.logg, p, policy.ActionView, policy.ResourceUser)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := s.acc.ListInto(ctx, store.TableUsers, &users); err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, admin config.AdminConfig) (bool, error) {
	if admin.Password == "" {
		return false, nil
	}
	var count struct {
		Total int64 `gorm:"column:total"`
	}
	if err := s.acc.Executor().Scan(ctx, store.StmtCountUsers, nil, &count); err != nil {
		return false, err
	}
	if count.Total > 0 {
		return false, nil
	}

	req := CreateUserRequest{
		Username: admin.Username,
		Password: admin.Password,
		Email:    admin.Email,
		Role:     model.RoleAdmin,
	}
	if err := validate(req); err != nil {
		return false, err
	}
	if _, err := s.create(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) view(ctx context.Context, userID int64) (*model.UserResponse, error) {
	user, found, err := store.ViewAs[model.User](ctx, s.acc, store.TableUsers, "user_id", userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound.WithDetails(map[string]any{"user_id": userID})
	}
	response := user.ToResponse()
	return &response, nil
}
