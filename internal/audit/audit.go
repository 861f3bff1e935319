package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/audit"
)

// Action kinds are opaque tags; callers may record kinds not listed here.
const (
	ActionLoginSuccess           = "LOGIN_SUCCESS"
	ActionLoginFailed            = "LOGIN_FAILED"
	ActionRoleCreated            = "ROLE_CREATED"
	ActionPermissionCreated      = "PERMISSION_CREATED"
	ActionRolePermissionsUpdated = "ROLE_PERMISSIONS_UPDATED"
	ActionUserCreated            = "USER_CREATED"
	ActionUserStatusUpdated      = "USER_STATUS_UPDATED"
	ActionUserRoleUpdated        = "USER_ROLE_UPDATED"
	ActionBookCreated            = "BOOK_CREATED"
	ActionBookUpdated            = "BOOK_UPDATED"
	ActionBookDeleted            = "BOOK_DELETED"
	ActionGrantAssigned          = "BOOK_PERMISSION_ASSIGNED"
	ActionGrantRevoked           = "BOOK_PERMISSION_REVOKED"
)

type Target struct {
	Type string
	ID   int64
}

// Entry describes a completed mutation so it can be recorded.
type Entry struct {
	Action      string
	Description string
	Target      *Target
}

// Record is one append-only audit row.
type Record struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ActorID     *int64    `json:"action_by_id"`
	Action      string    `json:"action_type"`
	TargetType  *string   `json:"target_type,omitempty"`
	TargetID    *int64    `json:"target_id,omitempty"`
	Description *string   `json:"description,omitempty"`
}

type SortOrder string

const (
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

type Filter struct {
	ActorID    *int64
	Action     string
	TargetType string
	TargetID   *int64
	Order      SortOrder
	Offset     int
	Limit      int
}

func ToDataModel(r *Record) *auditDatamodel.Log {
	return &auditDatamodel.Log{
		ID:          r.ID,
		Timestamp:   r.Timestamp,
		ActorID:     r.ActorID,
		ActionType:  r.Action,
		TargetType:  r.TargetType,
		TargetID:    r.TargetID,
		Description: r.Description,
	}
}

func FromDataModel(l *auditDatamodel.Log) *Record {
	return &Record{
		ID:          l.ID,
		Timestamp:   l.Timestamp,
		ActorID:     l.ActorID,
		Action:      l.ActionType,
		TargetType:  l.TargetType,
		TargetID:    l.TargetID,
		Description: l.Description,
	}
}
