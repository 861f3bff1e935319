package grant

import (
	errors "github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/common/validation"
)

type AssignGrantDTO struct {
	BookID int64  `json:"book_id" validate:"required,gt=0"`
	UserID *int64 `json:"user_id" validate:"omitempty,gt=0"`
	RoleID *int64 `json:"role_id" validate:"omitempty,gt=0"`
}

// Validate checks tags and that exactly one grantee is named.
func (d AssignGrantDTO) Validate() *errors.AppError {
	if appErr := validation.Struct(d); appErr != nil {
		return appErr
	}

	v := validation.NewValidator()
	v.Field("grantee", d).Custom(func(value interface{}) *errors.AppError {
		dto := value.(AssignGrantDTO)
		if (dto.UserID == nil) == (dto.RoleID == nil) {
			return errors.NewValidationFieldError("grantee", "exactly one of user_id or role_id must be set", errors.ErrCodeInvalidGrantee)
		}
		return nil
	})
	return v.Validate()
}

type GrantsResponse struct {
	Grants []*Grant `json:"grants"`
}
