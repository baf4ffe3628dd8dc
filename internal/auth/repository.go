package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatewarden/gatewarden/internal/platform/db"
)

// Credential is the slice of a user record the login flow needs.
type Credential struct {
	UserID       int64
	Username     string
	Email        *string
	FullName     string
	PasswordHash string
	Status       string
}

// PGRepository provides PostgreSQL backed persistence for sessions.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindCredentialByUsername fetches login material for a username.
func (r *PGRepository) FindCredentialByUsername(ctx context.Context, username string) (Credential, error) {
	var c Credential
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, full_name, password_hash, status
		 FROM users WHERE username = $1`, username,
	).Scan(&c.UserID, &c.Username, &c.Email, &c.FullName, &c.PasswordHash, &c.Status)
	return c, db.MapError(err)
}

// FindCredentialByID fetches login material for a user ID.
func (r *PGRepository) FindCredentialByID(ctx context.Context, userID int64) (Credential, error) {
	var c Credential
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, full_name, password_hash, status
		 FROM users WHERE id = $1`, userID,
	).Scan(&c.UserID, &c.Username, &c.Email, &c.FullName, &c.PasswordHash, &c.Status)
	return c, db.MapError(err)
}

// ListRoleOptions returns the user's roles ordered default-first.
func (r *PGRepository) ListRoleOptions(ctx context.Context, userID int64) ([]RoleOption, error) {
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

	options := []RoleOption{}
	for rows.Next() {
		var o RoleOption
		if err := rows.Scan(&o.RoleID, &o.RoleName, &o.IsDefault); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// FindRoleOption returns the assignment for a (user, role) pair.
func (r *PGRepository) FindRoleOption(ctx context.Context, userID, roleID int64) (RoleOption, error) {
	var o RoleOption
	err := r.pool.QueryRow(ctx,
		`SELECT ur.role_id, ro.name, ur.is_default
		 FROM user_roles ur
		 JOIN roles ro ON ro.id = ur.role_id
		 WHERE ur.user_id = $1 AND ur.role_id = $2`, userID, roleID,
	).Scan(&o.RoleID, &o.RoleName, &o.IsDefault)
	return o, db.MapError(err)
}

// SaveRefreshToken persists a freshly minted refresh token.
func (r *PGRepository) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, token, expiresAt, time.Now())
	return db.MapError(err)
}

// FindRefreshToken looks up a persisted record by token string and owner.
func (r *PGRepository) FindRefreshToken(ctx context.Context, userID int64, token string) (RefreshToken, error) {
	var rt RefreshToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, created_at
		 FROM refresh_tokens WHERE user_id = $1 AND token = $2`, userID, token,
	).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt)
	return rt, db.MapError(err)
}

// DeleteRefreshToken removes a persisted record by token string.
func (r *PGRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return db.MapError(err)
}

// DeleteExpiredRefreshTokens removes every record past its expiry and
// returns the number deleted.
func (r *PGRepository) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, db.MapError(err)
	}
	return tag.RowsAffected(), nil
}
