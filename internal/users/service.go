package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository defines data access methods for users and their role assignments.
type Repository interface {
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error

	ListRoles(ctx context.Context, userID int64) ([]RoleAssignment, error)
	HasRole(ctx context.Context, userID, roleID int64) (bool, error)
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	AssignRole(ctx context.Context, userID, roleID int64, isDefault bool) error
	RemoveRole(ctx context.Context, userID, roleID int64) error
}

// Service handles identity and role assignment business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// normalizeEmail stores absent or empty addresses as NULL so the unique
// constraint only applies to real values.
func normalizeEmail(email *string) *string {
	if email == nil || *email == "" {
		return nil
	}
	return email
}

// List returns users matching the filters together with the total count.
func (s *Service) List(ctx context.Context, req ListUsersRequest) ([]User, shared.Pagination, error) {
	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(req.Page, req.Limit, total), nil
}

// Get fetches a user together with their role assignments.
func (s *Service) Get(ctx context.Context, id int64) (UserWithRoles, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return UserWithRoles{}, fmt.Errorf("%w: user not found", shared.ErrNotFound)
	}
	roles, err := s.repo.ListRoles(ctx, id)
	if err != nil {
		return UserWithRoles{}, err
	}
	return UserWithRoles{User: user, Roles: roles}, nil
}

// Create inserts a new user with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	user, err := s.repo.Create(ctx, User{
		Username:     req.Username,
		Email:        normalizeEmail(req.Email),
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Status:       status,
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return User{}, fmt.Errorf("%w: username or email already in use", shared.ErrConflict)
		}
		return User{}, err
	}
	return user, nil
}

// Update applies the provided fields, rehashing the password when present.
func (s *Service) Update(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("%w: user not found", shared.ErrNotFound)
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = normalizeEmail(req.Email)
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return User{}, fmt.Errorf("%w: username or email already in use", shared.ErrConflict)
		}
		return User{}, err
	}
	return updated, nil
}

// Delete removes a user. Role assignments and persisted refresh tokens
// cascade at the storage level.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("%w: user not found", shared.ErrNotFound)
	}
	return s.repo.Delete(ctx, id)
}

// ListRoles returns the roles held by a user with their default markers.
func (s *Service) ListRoles(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: user not found", shared.ErrNotFound)
	}
	return s.repo.ListRoles(ctx, userID)
}

// AssignRole grants a role to a user. When isDefault is set, the user's
// previous default is cleared and the new one set within one transaction so
// at most one assignment is ever marked default.
func (s *Service) AssignRole(ctx context.Context, userID int64, req AssignRoleRequest) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return fmt.Errorf("%w: user not found", shared.ErrNotFound)
	}
	exists, err := s.repo.RoleExists(ctx, req.RoleID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: role not found", shared.ErrNotFound)
	}
	held, err := s.repo.HasRole(ctx, userID, req.RoleID)
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("%w: user already has this role", shared.ErrConflict)
	}
	return s.repo.AssignRole(ctx, userID, req.RoleID, req.IsDefault)
}

// RemoveRole revokes a role assignment from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	held, err := s.repo.HasRole(ctx, userID, roleID)
	if err != nil {
		return err
	}
	if !held {
		return fmt.Errorf("%w: user does not have this role", shared.ErrNotFound)
	}
	return s.repo.RemoveRole(ctx, userID, roleID)
}
