package access

import "time"

// Actions every protected operation is classified under. Decisions for
// anything outside this set deny by default.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Flags is the four-capability permission object of a single matrix cell.
type Flags struct {
	CanView   bool `json:"can_view"`
	CanCreate bool `json:"can_create"`
	CanUpdate bool `json:"can_update"`
	CanDelete bool `json:"can_delete"`
}

// Allows returns the flag named by action, denying unknown actions.
func (f Flags) Allows(action string) bool {
	switch action {
	case ActionView:
		return f.CanView
	case ActionCreate:
		return f.CanCreate
	case ActionUpdate:
		return f.CanUpdate
	case ActionDelete:
		return f.CanDelete
	default:
		return false
	}
}

// Access is one permission matrix cell: the capability flags a role holds on
// a menu. One row exists per (role, menu) pair.
type Access struct {
	ID     int64 `json:"id"`
	RoleID int64 `json:"role_id"`
	MenuID int64 `json:"menu_id"`
	Flags
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccessDetail is the list/detail projection carrying role and menu names.
type AccessDetail struct {
	Access
	RoleName string `json:"role_name"`
	MenuName string `json:"menu_name"`
}

// BulkEntryError records a single failed entry of a bulk grant.
type BulkEntryError struct {
	MenuID int64  `json:"menu_id"`
	Error  string `json:"error"`
}

// BulkResult summarises a bulk grant. Entry failures never abort siblings.
type BulkResult struct {
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Granted      []Access         `json:"granted"`
	Errors       []BulkEntryError `json:"errors,omitempty"`
}
