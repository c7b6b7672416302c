package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"worktime/internal/logger"
	"worktime/worklog"
)

// UserInput provisions an account. There is no self-service signup.
type UserInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type UserService struct {
	users UserStore
	now   func() time.Time
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Provision creates a user with a fresh id. The role defaults to USER.
func (s *UserService) Provision(ctx context.Context, in UserInput) (worklog.User, error) {
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return worklog.User{}, err
	}
	role := worklog.RoleUser
	if in.Role != "" {
		role = worklog.Role(in.Role)
	}

	user := worklog.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		return worklog.User{}, storeError("create user", "email", in.Email, err)
	}
	logger.Info("user provisioned", zap.String("id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Resolve looks a user up by id or, when ref contains '@', by email.
func (s *UserService) Resolve(ctx context.Context, ref string) (worklog.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return worklog.User{}, NewValidationError("user", "is required")
	}
	var (
		user worklog.User
		err  error
	)
	if strings.Contains(ref, "@") {
		user, err = s.users.FindUserByEmail(ctx, strings.ToLower(ref))
	} else {
		user, err = s.users.GetUser(ctx, ref)
	}
	if err != nil {
		return worklog.User{}, storeError("resolve user", "user", ref, err)
	}
	return user, nil
}

// List returns every account regardless of role.
func (s *UserService) List(ctx context.Context) ([]worklog.User, error) {
	users, err := s.users.ListUsers(ctx, "")
	if err != nil {
		return nil, NewInternal("list users", err)
	}
	return users, nil
}
