package user

import (
	"net/url"
	"strconv"

	errors "github.com/frahmantamala/library-management/internal"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type CreateUserDTO struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

type UpdateStatusDTO struct {
	Status identity.Status `json:"status" validate:"required"`
}

type UpdateRoleDTO struct {
	RoleID int64 `json:"role_id" validate:"required,gt=0"`
}

type ListQuery struct {
	Skip  int
	Limit int
}

// ParseListQuery reads skip and limit, defaulting limit to 100.
func ParseListQuery(q url.Values) (ListQuery, *errors.AppError) {
	out := ListQuery{Limit: defaultListLimit}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return out, errors.NewValidationFieldError("skip", "must be a non-negative integer", errors.ErrCodeInvalidRequest)
		}
		out.Skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			return out, errors.NewValidationFieldError("limit", "must be between 1 and 1000", errors.ErrCodeInvalidRequest)
		}
		out.Limit = n
	}
	return out, nil
}
