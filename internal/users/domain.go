package users

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is an account in the identity store. PasswordHash is kept out of
// every serialized form. Email is optional; accounts without one carry
// NULL so the unique index never collides.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleAssignment is a role held by a user together with the default marker.
type RoleAssignment struct {
	RoleID    int64  `json:"role_id"`
	RoleName  string `json:"role_name"`
	IsDefault bool   `json:"is_default"`
}

// UserWithRoles is the detail projection returned by Get.
type UserWithRoles struct {
	User
	Roles []RoleAssignment `json:"roles"`
}
