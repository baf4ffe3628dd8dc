package access

// GrantRequest assigns capability flags on a menu to a role. Absent flags
// default to view-only.
type GrantRequest struct {
	RoleID    int64 `json:"role_id" validate:"required,gt=0"`
	MenuID    int64 `json:"menu_id" validate:"required,gt=0"`
	CanView   *bool `json:"can_view,omitempty"`
	CanCreate *bool `json:"can_create,omitempty"`
	CanUpdate *bool `json:"can_update,omitempty"`
	CanDelete *bool `json:"can_delete,omitempty"`
}

// UpdateAccessRequest overwrites individual flags of an existing matrix cell.
type UpdateAccessRequest struct {
	CanView   *bool `json:"can_view,omitempty"`
	CanCreate *bool `json:"can_create,omitempty"`
	CanUpdate *bool `json:"can_update,omitempty"`
	CanDelete *bool `json:"can_delete,omitempty"`
}

// BulkGrantEntry is one menu row of a bulk grant.
type BulkGrantEntry struct {
	MenuID    int64 `json:"menu_id" validate:"required,gt=0"`
	CanView   *bool `json:"can_view,omitempty"`
	CanCreate *bool `json:"can_create,omitempty"`
	CanUpdate *bool `json:"can_update,omitempty"`
	CanDelete *bool `json:"can_delete,omitempty"`
}

// BulkGrantRequest synchronises a role's matrix rows in one administrative
// call. Existing rows are overwritten rather than rejected.
type BulkGrantRequest struct {
	RoleID int64            `json:"role_id" validate:"required,gt=0"`
	Menus  []BulkGrantEntry `json:"menus" validate:"required,min=1,dive"`
}

// ListAccessRequest filters the paginated matrix listing.
type ListAccessRequest struct {
	Page   int
	Limit  int
	RoleID int64
	MenuID int64
}

func (r GrantRequest) flags() Flags {
	return flagsFrom(r.CanView, r.CanCreate, r.CanUpdate, r.CanDelete)
}

func (e BulkGrantEntry) flags() Flags {
	return flagsFrom(e.CanView, e.CanCreate, e.CanUpdate, e.CanDelete)
}

// flagsFrom applies the creation defaults {view:true, others:false} to any
// flag the caller left unspecified.
func flagsFrom(view, create, update, del *bool) Flags {
	f := Flags{CanView: true}
	if view != nil {
		f.CanView = *view
	}
	if create != nil {
		f.CanCreate = *create
	}
	if update != nil {
		f.CanUpdate = *update
	}
	if del != nil {
		f.CanDelete = *del
	}
	return f
}
