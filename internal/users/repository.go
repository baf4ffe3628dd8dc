package users

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
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
func (r *PGRepository) List(ctx context.Context, req ListUsersRequest) ([]User, int, error) {
	query := `SELECT id, username, email, full_name, password_hash, status, created_at, updated_at FROM users WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if req.Search != "" {
		argCount++
		p := `$` + strconv.Itoa(argCount)
		clause := ` AND (username ILIKE ` + p + ` OR full_name ILIKE ` + p + ` OR email ILIKE ` + p + `)`
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

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Get fetches a user by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, full_name, password_hash, status, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, db.MapError(err)
}

// Create inserts a user.
func (r *PGRepository) Create(ctx context.Context, user User) (User, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, full_name, password_hash, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.Status, now,
	).Scan(&user.ID)
	if err != nil {
		return User{}, db.MapError(err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return user, nil
}

// Update persists the mutable user fields.
func (r *PGRepository) Update(ctx context.Context, user User) (User, error) {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $1, email = $2, full_name = $3, password_hash = $4, status = $5, updated_at = $6
		 WHERE id = $7`,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.Status, now, user.ID)
	if err != nil {
		return User{}, db.MapError(err)
	}
	user.UpdatedAt = now
	return user, nil
}

// Delete removes a user by ID. Assignments and refresh tokens cascade.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return db.MapError(err)
}

// ListRoles returns the user's role assignments ordered default-first.
func (r *PGRepository) ListRoles(ctx context.Context, userID int64) ([]RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ur.role_id, ro.name, ur.is_default
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = $1
		 ORDER BY ur.is_default DESC, ro.name`, userID)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	assignments := []RoleAssignment{}
	for rows.Next() {
		var a RoleAssignment
		if err := rows.Scan(&a.RoleID, &a.RoleName, &a.IsDefault); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// HasRole reports whether the user holds the role.
func (r *PGRepository) HasRole(ctx context.Context, userID, roleID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2)`,
		userID, roleID).Scan(&exists)
	return exists, db.MapError(err)
}

// RoleExists reports whether the role exists.
func (r *PGRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, roleID).Scan(&exists)
	return exists, db.MapError(err)
}

// AssignRole inserts an assignment. When isDefault is set the previous
// default is cleared in the same transaction.
func (r *PGRepository) AssignRole(ctx context.Context, userID, roleID int64, isDefault bool) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if isDefault {
			if _, err := tx.Exec(ctx,
				`UPDATE user_roles SET is_default = false WHERE user_id = $1 AND is_default = true`,
				userID); err != nil {
				return db.MapError(err)
			}
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id, is_default, created_at)
			 VALUES ($1, $2, $3, $4)`,
			userID, roleID, isDefault, time.Now()); err != nil {
			return db.MapError(err)
		}
		return nil
	})
}

// RemoveRole deletes an assignment.
func (r *PGRepository) RemoveRole(ctx context.Context, userID, roleID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	return db.MapError(err)
}
