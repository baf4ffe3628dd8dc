package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatewarden/gatewarden/internal/shared"
)

// Repository defines data access methods for the permission matrix.
type Repository interface {
	List(ctx context.Context, req ListAccessRequest) ([]AccessDetail, int, error)
	Get(ctx context.Context, id int64) (AccessDetail, error)
	Find(ctx context.Context, roleID, menuID int64) (Access, error)
	Create(ctx context.Context, a Access) (Access, error)
	UpdateFlags(ctx context.Context, id int64, flags Flags) error
	Delete(ctx context.Context, id int64) error
	DeleteByRole(ctx context.Context, roleID int64) (int64, error)
	RoleExists(ctx context.Context, roleID int64) (bool, error)
	MenuExists(ctx context.Context, menuID int64) (bool, error)
	ViewableFlags(ctx context.Context, roleID int64) (map[int64]Flags, error)
}

// Service orchestrates permission matrix operations and authorization
// decisions. A nil cache degrades every lookup to storage.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService constructs a Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns matrix rows matching the filters.
func (s *Service) List(ctx context.Context, req ListAccessRequest) ([]AccessDetail, shared.Pagination, error) {
	rows, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return rows, shared.NewPagination(req.Page, req.Limit, total), nil
}

// Get fetches a single matrix row with role and menu names attached.
func (s *Service) Get(ctx context.Context, id int64) (AccessDetail, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return AccessDetail{}, fmt.Errorf("%w: access not found", shared.ErrNotFound)
	}
	return row, nil
}

// Grant creates a new matrix cell. The single-assign path is create-only: an
// existing (role, menu) row is a conflict, not an update.
func (s *Service) Grant(ctx context.Context, req GrantRequest) (Access, error) {
	if err := s.ensureRole(ctx, req.RoleID); err != nil {
		return Access{}, err
	}
	ok, err := s.repo.MenuExists(ctx, req.MenuID)
	if err != nil {
		return Access{}, err
	}
	if !ok {
		return Access{}, fmt.Errorf("%w: menu not found", shared.ErrNotFound)
	}
	if _, err := s.repo.Find(ctx, req.RoleID, req.MenuID); err == nil {
		return Access{}, fmt.Errorf("%w: access already exists for this role and menu", shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Access{}, err
	}
	created, err := s.repo.Create(ctx, Access{RoleID: req.RoleID, MenuID: req.MenuID, Flags: req.flags()})
	if err != nil {
		return Access{}, err
	}
	s.cache.Bump(ctx)
	return created, nil
}

// Update overwrites individual flags of an existing matrix cell.
func (s *Service) Update(ctx context.Context, id int64, req UpdateAccessRequest) (AccessDetail, error) {
	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return AccessDetail{}, fmt.Errorf("%w: access not found", shared.ErrNotFound)
	}
	flags := row.Flags
	if req.CanView != nil {
		flags.CanView = *req.CanView
	}
	if req.CanCreate != nil {
		flags.CanCreate = *req.CanCreate
	}
	if req.CanUpdate != nil {
		flags.CanUpdate = *req.CanUpdate
	}
	if req.CanDelete != nil {
		flags.CanDelete = *req.CanDelete
	}
	if err := s.repo.UpdateFlags(ctx, id, flags); err != nil {
		return AccessDetail{}, err
	}
	s.cache.Bump(ctx)
	row.Flags = flags
	return row, nil
}

// BulkGrant synchronises matrix rows for a role. Bulk semantics differ from
// Grant on purpose: existing rows are overwritten, and a bad entry is
// recorded without aborting its siblings.
func (s *Service) BulkGrant(ctx context.Context, req BulkGrantRequest) (BulkResult, error) {
	if err := s.ensureRole(ctx, req.RoleID); err != nil {
		return BulkResult{}, err
	}

	result := BulkResult{Granted: []Access{}}
	for _, entry := range req.Menus {
		ok, err := s.repo.MenuExists(ctx, entry.MenuID)
		if err != nil {
			result.Errors = append(result.Errors, BulkEntryError{MenuID: entry.MenuID, Error: err.Error()})
			continue
		}
		if !ok {
			result.Errors = append(result.Errors, BulkEntryError{MenuID: entry.MenuID, Error: "Menu not found"})
			continue
		}

		existing, err := s.repo.Find(ctx, req.RoleID, entry.MenuID)
		switch {
		case err == nil:
			if err := s.repo.UpdateFlags(ctx, existing.ID, entry.flags()); err != nil {
				result.Errors = append(result.Errors, BulkEntryError{MenuID: entry.MenuID, Error: err.Error()})
				continue
			}
			existing.Flags = entry.flags()
			result.Granted = append(result.Granted, existing)
		case errors.Is(err, shared.ErrNotFound):
			created, err := s.repo.Create(ctx, Access{RoleID: req.RoleID, MenuID: entry.MenuID, Flags: entry.flags()})
			if err != nil {
				result.Errors = append(result.Errors, BulkEntryError{MenuID: entry.MenuID, Error: err.Error()})
				continue
			}
			result.Granted = append(result.Granted, created)
		default:
			result.Errors = append(result.Errors, BulkEntryError{MenuID: entry.MenuID, Error: err.Error()})
			continue
		}
	}

	result.SuccessCount = len(result.Granted)
	result.ErrorCount = len(result.Errors)
	if result.SuccessCount > 0 {
		s.cache.Bump(ctx)
	}
	return result, nil
}

// Revoke removes a matrix cell. Absence is not an error.
func (s *Service) Revoke(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Bump(ctx)
	return nil
}

// RevokeAllForRole removes every matrix cell of a role and returns the count
// removed. Zero is a valid result.
func (s *Service) RevokeAllForRole(ctx context.Context, roleID int64) (int64, error) {
	if err := s.ensureRole(ctx, roleID); err != nil {
		return 0, err
	}
	removed, err := s.repo.DeleteByRole(ctx, roleID)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.cache.Bump(ctx)
	}
	return removed, nil
}

// Decide answers allow/deny for (role, menu, action). A missing row denies;
// unknown actions deny. It never fails on a missing row.
func (s *Service) Decide(ctx context.Context, roleID, menuID int64, action string) (bool, error) {
	flags, found, err := s.cache.Flags(ctx, roleID, menuID, func(ctx context.Context) (Flags, bool, error) {
		row, err := s.repo.Find(ctx, roleID, menuID)
		if errors.Is(err, shared.ErrNotFound) {
			return Flags{}, false, nil
		}
		if err != nil {
			return Flags{}, false, err
		}
		return row.Flags, true, nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return flags.Allows(action), nil
}

// ViewableFlags returns the permission objects of every menu the role may
// view, keyed by menu ID. Consumed by the accessible-tree builder.
func (s *Service) ViewableFlags(ctx context.Context, roleID int64) (map[int64]Flags, error) {
	return s.repo.ViewableFlags(ctx, roleID)
}

func (s *Service) ensureRole(ctx context.Context, roleID int64) error {
	ok, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: role not found", shared.ErrNotFound)
	}
	return nil
}
