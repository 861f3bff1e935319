package identity

import (
	"strings"
	"time"
)

// AdminRoleName is the sentinel role that bypasses every permission and
// resource grant check. Compared case-insensitively through IsAdminRole.
const AdminRoleName = "admin"

type Status string

const (
	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusSuspended Status = "Suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// IsAdminRole reports whether name refers to the admin sentinel role.
func IsAdminRole(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), AdminRoleName)
}

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Role) IsAdmin() bool {
	return r != nil && IsAdminRole(r.Name)
}

func (r *Role) HasPermission(permission string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Identity is an authenticated actor with its role preloaded.
type Identity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Status    Status    `json:"status"`
	RoleID    int64     `json:"role_id"`
	Role      *Role     `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Identity) IsActive() bool {
	return i != nil && i.Status == StatusActive
}

// RoleName returns the preloaded role name or an empty string.
func (i *Identity) RoleName() string {
	if i == nil || i.Role == nil {
		return ""
	}
	return i.Role.Name
}

type Permission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
