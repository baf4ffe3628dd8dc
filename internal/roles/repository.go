package roles

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
func (r *PGRepository) List(ctx context.Context, req ListRolesRequest) ([]Role, int, error) {
	query := `SELECT id, name, description, status, created_at, updated_at FROM roles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM roles WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if req.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR description ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+req.Search+"%")
	}
	if req.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, req.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	query += ` ORDER BY created_at DESC`
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

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.Status, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, 0, err
		}
		roles = append(roles, role)
	}
	return roles, total, rows.Err()
}

// Get fetches a role by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.Description, &role.Status, &role.CreatedAt, &role.UpdatedAt)
	return role, db.MapError(err)
}

// GetWithUsers fetches a role and the users assigned to it.
func (r *PGRepository) GetWithUsers(ctx context.Context, id int64) (RoleWithUsers, error) {
	role, err := r.Get(ctx, id)
	if err != nil {
		return RoleWithUsers{}, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username, u.full_name
		 FROM users u
		 JOIN user_roles ur ON ur.user_id = u.id
		 WHERE ur.role_id = $1
		 ORDER BY u.username`, id)
	if err != nil {
		return RoleWithUsers{}, db.MapError(err)
	}
	defer rows.Close()

	view := RoleWithUsers{Role: role, Users: []AssignedUser{}}
	for rows.Next() {
		var u AssignedUser
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName); err != nil {
			return RoleWithUsers{}, err
		}
		view.Users = append(view.Users, u)
	}
	return view, rows.Err()
}

// Create inserts a role.
func (r *PGRepository) Create(ctx context.Context, role Role) (Role, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		role.Name, role.Description, role.Status, now,
	).Scan(&role.ID)
	if err != nil {
		return Role{}, db.MapError(err)
	}
	role.CreatedAt = now
	role.UpdatedAt = now
	return role, nil
}

// Update persists the mutable role fields.
func (r *PGRepository) Update(ctx context.Context, role Role) (Role, error) {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE roles SET name = $1, description = $2, status = $3, updated_at = $4 WHERE id = $5`,
		role.Name, role.Description, role.Status, now, role.ID)
	if err != nil {
		return Role{}, db.MapError(err)
	}
	role.UpdatedAt = now
	return role, nil
}

// Delete removes a role by ID.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	return db.MapError(err)
}

// CountAssignments returns how many users hold the role.
func (r *PGRepository) CountAssignments(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_roles WHERE role_id = $1`, id).Scan(&count)
	return count, db.MapError(err)
}
