package menus

import (
	"time"

	"github.com/gatewarden/gatewarden/internal/access"
)

// Status values for menu nodes.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Menu is a node in the resource forest. Level is derived: 1 for roots,
// parent.level+1 otherwise, computed at write time for O(1) reads.
type Menu struct {
	ID          int64     `json:"id"`
	ParentID    *int64    `json:"parent_id"`
	Name        string    `json:"name"`
	Path        *string   `json:"path"`
	OrderNumber int       `json:"order_number"`
	Level       int       `json:"level"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Node is a menu with its filtered children attached, ordered by
// order_number. Permissions is populated only on accessible-tree builds.
type Node struct {
	Menu
	Permissions *access.Flags `json:"permissions,omitempty"`
	Children    []*Node       `json:"children"`
}

// MenuWithParent is the flat-list projection carrying the parent's name.
type MenuWithParent struct {
	Menu
	ParentName *string `json:"parent_name"`
}
