package roles

import "time"

// Status values shared by roles, users and menus.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Role represents a named authorization bucket.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AssignedUser is the user projection attached to RoleWithUsers.
type AssignedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// RoleWithUsers is the typed projection of a role together with the users
// holding it. Explicit view types replace ad hoc object graphs.
type RoleWithUsers struct {
	Role
	Users []AssignedUser `json:"users"`
}
