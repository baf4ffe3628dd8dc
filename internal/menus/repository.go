package menus

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/platform/db"
	"github.com/gatewarden/gatewarden/internal/shared"
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
func (r *PGRepository) List(ctx context.Context, req ListMenusRequest) ([]MenuWithParent, int, error) {
	query := `SELECT m.id, m.parent_id, m.name, m.path, m.order_number, m.level, m.status,
	                 m.created_at, m.updated_at, p.name
	          FROM menus m
	          LEFT JOIN menus p ON p.id = m.parent_id
	          WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM menus m WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if req.Search != "" {
		argCount++
		clause := ` AND (m.name ILIKE $` + strconv.Itoa(argCount) + ` OR m.path ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+req.Search+"%")
	}
	if req.Status != "" {
		argCount++
		clause := ` AND m.status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, req.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, db.MapError(err)
	}

	query += ` ORDER BY m.level ASC, m.order_number ASC`
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

	var menus []MenuWithParent
	for rows.Next() {
		var m MenuWithParent
		if err := rows.Scan(&m.ID, &m.ParentID, &m.Name, &m.Path, &m.OrderNumber, &m.Level, &m.Status,
			&m.CreatedAt, &m.UpdatedAt, &m.ParentName); err != nil {
			return nil, 0, err
		}
		menus = append(menus, m)
	}
	return menus, total, rows.Err()
}

// ListAll returns the whole forest in one query for in-memory tree builds.
func (r *PGRepository) ListAll(ctx context.Context) ([]Menu, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, parent_id, name, path, order_number, level, status, created_at, updated_at
		 FROM menus ORDER BY order_number ASC, id ASC`)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var menus []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.ParentID, &m.Name, &m.Path, &m.OrderNumber, &m.Level, &m.Status,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// Get fetches a menu by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (Menu, error) {
	var m Menu
	err := r.pool.QueryRow(ctx,
		`SELECT id, parent_id, name, path, order_number, level, status, created_at, updated_at
		 FROM menus WHERE id = $1`, id,
	).Scan(&m.ID, &m.ParentID, &m.Name, &m.Path, &m.OrderNumber, &m.Level, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	return m, db.MapError(err)
}

// FindIDByPath resolves a request path to its controlling menu, if any.
func (r *PGRepository) FindIDByPath(ctx context.Context, path string) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM menus WHERE path = $1`, path).Scan(&id)
	if err != nil {
		if errors.Is(db.MapError(err), shared.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, db.MapError(err)
	}
	return id, true, nil
}

// Create inserts a menu node.
func (r *PGRepository) Create(ctx context.Context, m Menu) (Menu, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO menus (parent_id, name, path, order_number, level, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		m.ParentID, m.Name, m.Path, m.OrderNumber, m.Level, m.Status, now,
	).Scan(&m.ID)
	if err != nil {
		return Menu{}, db.MapError(err)
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// Update persists the mutable fields of a node, leaving parent and level
// untouched.
func (r *PGRepository) Update(ctx context.Context, m Menu) (Menu, error) {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE menus SET name = $1, path = $2, order_number = $3, status = $4, updated_at = $5 WHERE id = $6`,
		m.Name, m.Path, m.OrderNumber, m.Status, now, m.ID)
	if err != nil {
		return Menu{}, db.MapError(err)
	}
	m.UpdatedAt = now
	return m, nil
}

// Reparent rewrites the parent reference and the derived levels of the moved
// subtree in a single transaction.
func (r *PGRepository) Reparent(ctx context.Context, id int64, parentID *int64, levels map[int64]int) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		if _, err := tx.Exec(ctx,
			`UPDATE menus SET parent_id = $1, updated_at = $2 WHERE id = $3`, parentID, now, id); err != nil {
			return db.MapError(err)
		}
		for menuID, level := range levels {
			if _, err := tx.Exec(ctx,
				`UPDATE menus SET level = $1, updated_at = $2 WHERE id = $3`, level, now, menuID); err != nil {
				return db.MapError(err)
			}
		}
		return nil
	})
}

// Delete removes a menu by ID.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	return db.MapError(err)
}

// CountChildren returns the number of direct children of a node.
func (r *PGRepository) CountChildren(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM menus WHERE parent_id = $1`, id).Scan(&count)
	return count, db.MapError(err)
}
