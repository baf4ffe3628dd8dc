package access

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/platform/db"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List uses a dynamic query due to filter combinations.
func (r *PGRepository) List(ctx context.Context, req ListAccessRequest) ([]AccessDetail, int, error) {
	query := `SELECT a.id, a.role_id, a.menu_id, a.can_view, a.can_create, a.can_update, a.can_delete,
	                 a.created_at, a.updated_at, r.name, m.name
	          FROM role_menu_access a
	          JOIN roles r ON r.id = a.role_id
	          JOIN menus m ON m.id = a.menu_id
	          WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM role_menu_access a WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if req.RoleID > 0 {
		argCount++
		clause := ` AND a.role_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, req.RoleID)
	}
	if req.MenuID > 0 {
		argCount++
		clause := ` AND a.menu_id = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, req.MenuID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	query += ` ORDER BY a.created_at DESC`
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.MapError(err)
	}
	defer rows.Close()

	var details []AccessDetail
	for rows.Next() {
		var d AccessDetail
		if err := rows.Scan(&d.ID, &d.RoleID, &d.MenuID, &d.CanView, &d.CanCreate, &d.CanUpdate, &d.CanDelete,
			&d.CreatedAt, &d.UpdatedAt, &d.RoleName, &d.MenuName); err != nil {
			return nil, 0, err
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}

// Get fetches a matrix row by ID with role and menu names.
func (r *PGRepository) Get(ctx context.Context, id int64) (AccessDetail, error) {
	var d AccessDetail
	err := r.pool.QueryRow(ctx,
		`SELECT a.id, a.role_id, a.menu_id, a.can_view, a.can_create, a.can_update, a.can_delete,
		        a.created_at, a.updated_at, r.name, m.name
		 FROM role_menu_access a
		 JOIN roles r ON r.id = a.role_id
		 JOIN menus m ON m.id = a.menu_id
		 WHERE a.id = $1`, id,
	).Scan(&d.ID, &d.RoleID, &d.MenuID, &d.CanView, &d.CanCreate, &d.CanUpdate, &d.CanDelete,
		&d.CreatedAt, &d.UpdatedAt, &d.RoleName, &d.MenuName)
	return d, db.MapError(err)
}

// Find fetches the single matrix row for a (role, menu) pair.
func (r *PGRepository) Find(ctx context.Context, roleID, menuID int64) (Access, error) {
	var a Access
	err := r.pool.QueryRow(ctx,
		`SELECT id, role_id, menu_id, can_view, can_create, can_update, can_delete, created_at, updated_at
		 FROM role_menu_access WHERE role_id = $1 AND menu_id = $2`, roleID, menuID,
	).Scan(&a.ID, &a.RoleID, &a.MenuID, &a.CanView, &a.CanCreate, &a.CanUpdate, &a.CanDelete, &a.CreatedAt, &a.UpdatedAt)
	return a, db.MapError(err)
}

// Create inserts a matrix row.
func (r *PGRepository) Create(ctx context.Context, a Access) (Access, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO role_menu_access (role_id, menu_id, can_view, can_create, can_update, can_delete, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		a.RoleID, a.MenuID, a.CanView, a.CanCreate, a.CanUpdate, a.CanDelete, now,
	).Scan(&a.ID)
	if err != nil {
		return Access{}, db.MapError(err)
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

// UpdateFlags overwrites the capability flags of a matrix row.
func (r *PGRepository) UpdateFlags(ctx context.Context, id int64, flags Flags) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE role_menu_access SET can_view = $1, can_create = $2, can_update = $3, can_delete = $4, updated_at = $5
		 WHERE id = $6`,
		flags.CanView, flags.CanCreate, flags.CanUpdate, flags.CanDelete, time.Now(), id)
	return db.MapError(err)
}

// Delete removes a matrix row by ID.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM role_menu_access WHERE id = $1`, id)
	return db.MapError(err)
}

// DeleteByRole removes every matrix row of a role, returning the count.
func (r *PGRepository) DeleteByRole(ctx context.Context, roleID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_menu_access WHERE role_id = $1`, roleID)
	if err != nil {
		return 0, db.MapError(err)
	}
	return tag.RowsAffected(), nil
}

// RoleExists reports whether the role is present.
func (r *PGRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists)
	return exists, db.MapError(err)
}

// MenuExists reports whether the menu is present.
func (r *PGRepository) MenuExists(ctx context.Context, menuID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM menus WHERE id = $1)`, menuID).Scan(&exists)
	return exists, db.MapError(err)
}

// ViewableFlags returns the permission objects of every active menu the role
// may view, keyed by menu ID.
func (r *PGRepository) ViewableFlags(ctx context.Context, roleID int64) (map[int64]Flags, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.menu_id, a.can_view, a.can_create, a.can_update, a.can_delete
		 FROM role_menu_access a
		 JOIN menus m ON m.id = a.menu_id
		 WHERE a.role_id = $1 AND a.can_view AND m.status = 'active'`, roleID)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	flags := make(map[int64]Flags)
	for rows.Next() {
		var menuID int64
		var f Flags
		if err := rows.Scan(&menuID, &f.CanView, &f.CanCreate, &f.CanUpdate, &f.CanDelete); err != nil {
			return nil, err
		}
		flags[menuID] = f
	}
	return flags, rows.Err()
}
