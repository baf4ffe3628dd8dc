package roles

import (
	"context"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository defines data access methods for roles.
type Repository interface {
	List(ctx context.Context, req ListRolesRequest) ([]Role, int, error)
	Get(ctx context.Context, id int64) (Role, error)
	GetWithUsers(ctx context.Context, id int64) (RoleWithUsers, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, id int64) error
	CountAssignments(ctx context.Context, id int64) (int, error)
}

// Service handles role business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns roles matching the filters together with the total count.
func (s *Service) List(ctx context.Context, req ListRolesRequest) ([]Role, shared.Pagination, error) {
	roles, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return roles, shared.NewPagination(req.Page, req.Limit, total), nil
}

// Get fetches a role together with its assigned users.
func (s *Service) Get(ctx context.Context, id int64) (RoleWithUsers, error) {
	role, err := s.repo.GetWithUsers(ctx, id)
	if err != nil {
		return RoleWithUsers{}, fmt.Errorf("%w: role not found", shared.ErrNotFound)
	}
	return role, nil
}

// Create inserts a new role.
func (s *Service) Create(ctx context.Context, req CreateRoleRequest) (Role, error) {
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	role, err := s.repo.Create(ctx, Role{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
	})
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// Update applies the provided fields to an existing role.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRoleRequest) (Role, error) {
	role, err := s.repo.Get(ctx, id)
	if err != nil {
		return Role{}, fmt.Errorf("%w: role not found", shared.ErrNotFound)
	}
	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Status != nil {
		role.Status = *req.Status
	}
	return s.repo.Update(ctx, role)
}

// Delete removes a role. Deletion is blocked while users hold the role;
// permission matrix rows cascade at the storage level.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("%w: role not found", shared.ErrNotFound)
	}
	assigned, err := s.repo.CountAssignments(ctx, id)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return fmt.Errorf("%w: role is still assigned to %d user(s)", shared.ErrConflict, assigned)
	}
	return s.repo.Delete(ctx, id)
}
