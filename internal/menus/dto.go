package menus

type CreateMenuRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Path        *string `json:"path,omitempty" validate:"omitempty,max=200,startswith=/"`
	ParentID    *int64  `json:"parent_id,omitempty" validate:"omitempty,gt=0"`
	OrderNumber int     `json:"order_number" validate:"gte=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateMenuRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Path        *string `json:"path,omitempty" validate:"omitempty,max=200,startswith=/"`
	OrderNumber *int    `json:"order_number,omitempty" validate:"omitempty,gte=0"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// ReparentMenuRequest moves a node. A nil parent makes it a root.
type ReparentMenuRequest struct {
	ParentID *int64 `json:"parent_id" validate:"omitempty,gt=0"`
}

type ListMenusRequest struct {
	Page   int
	Limit  int
	Search string
	Status string
}
