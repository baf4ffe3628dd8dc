package users

type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string  `json:"full_name" validate:"required,max=100"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Status   string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type AssignRoleRequest struct {
	RoleID    int64 `json:"role_id" validate:"required,gt=0"`
	IsDefault bool  `json:"is_default"`
}

type ListUsersRequest struct {
	Page   int
	Limit  int
	Search string
	Status string
}
