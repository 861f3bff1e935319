package grant

import "time"

// ResourceGrant names exactly one grantee: a user or a role.
type ResourceGrant struct {
	ID           int64     `gorm:"primaryKey"`
	ResourceType string    `gorm:"column:resource_type;not null;index:idx_grant_resource,priority:1"`
	ResourceID   int64     `gorm:"column:resource_id;not null;index:idx_grant_resource,priority:2"`
	UserID       *int64    `gorm:"column:user_id;index;check:chk_grant_grantee,(user_id IS NULL) <> (role_id IS NULL)"`
	RoleID       *int64    `gorm:"column:role_id;index"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ResourceGrant) TableName() string {
	return "resource_grants"
}
