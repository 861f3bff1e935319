package role

type CreateRoleDTO struct {
	Name string `json:"name" validate:"required,max=50"`
}

type CreatePermissionDTO struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// AssignPermissionsDTO replaces a role's whole permission set.
type AssignPermissionsDTO struct {
	PermissionIDs []int64 `json:"permission_ids" validate:"required,min=1,dive,gt=0"`
}
