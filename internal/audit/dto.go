package audit

import (
	"net/url"
	"strconv"

	errors "github.com/frahmantamala/library-management/internal"
)

type LogsResponse struct {
	Logs []*Record `json:"logs"`
}

// ParseListQuery reads the audit listing query string. The wire names
// follow the public API: user_id, action_type, target_type, target_id,
// order, skip and limit.
func ParseListQuery(q url.Values) (Filter, error) {
	filter := Filter{
		Action:     q.Get("action_type"),
		TargetType: q.Get("target_type"),
		Order:      OrderDescending,
		Limit:      DefaultListLimit,
	}

	var err error
	if filter.ActorID, err = optionalInt64(q, "user_id"); err != nil {
		return Filter{}, err
	}
	if filter.TargetID, err = optionalInt64(q, "target_id"); err != nil {
		return Filter{}, err
	}

	switch SortOrder(q.Get("order")) {
	case "", OrderDescending:
	case OrderAscending:
		filter.Order = OrderAscending
	default:
		return Filter{}, errors.NewValidationFieldError("order", "order must be asc or desc", errors.ErrCodeInvalidRequest)
	}

	if raw := q.Get("skip"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n < 0 {
			return Filter{}, errors.NewValidationFieldError("skip", "skip must be a non-negative integer", errors.ErrCodeInvalidRequest)
		}
		filter.Offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 || n > MaxListLimit {
			return Filter{}, errors.NewValidationFieldError("limit", "limit must be between 1 and 1000", errors.ErrCodeInvalidRequest)
		}
		filter.Limit = n
	}

	return filter, nil
}

func optionalInt64(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.NewValidationFieldError(key, key+" must be an integer", errors.ErrCodeInvalidRequest)
	}
	return &n, nil
}
