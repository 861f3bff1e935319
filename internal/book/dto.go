package book

import (
	"net/url"
	"strconv"

	errors "github.com/frahmantamala/library-management/internal"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type CreateBookDTO struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Author       string  `json:"author" validate:"max=255"`
	ISBN         *string `json:"isbn" validate:"omitempty,min=10,max=20"`
	IsRestricted bool    `json:"is_restricted"`
}

// UpdateBookDTO changes only the fields that are present.
type UpdateBookDTO struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	Author       *string `json:"author" validate:"omitempty,max=255"`
	ISBN         *string `json:"isbn" validate:"omitempty,min=10,max=20"`
	IsRestricted *bool   `json:"is_restricted"`
}

func (d UpdateBookDTO) changes() map[string]interface{} {
	out := map[string]interface{}{}
	if d.Title != nil {
		out["title"] = *d.Title
	}
	if d.Author != nil {
		out["author"] = *d.Author
	}
	if d.ISBN != nil {
		out["isbn"] = *d.ISBN
	}
	if d.IsRestricted != nil {
		out["is_restricted"] = *d.IsRestricted
	}
	return out
}

type ListQuery struct {
	Skip  int
	Limit int
}

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
