package grant

import (
	"time"

	"github.com/frahmantamala/library-management/internal/authz"
	grantDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/grant"
)

// ResourceTypeBook is the resource type restricted books are granted under.
const ResourceTypeBook = authz.ResourceBook

// Grant lets one user, or every member of one role, reach a restricted resource.
type Grant struct {
	ID           int64     `json:"id"`
	ResourceType string    `json:"resource_type"`
	ResourceID   int64     `json:"book_id"`
	UserID       *int64    `json:"user_id,omitempty"`
	RoleID       *int64    `json:"role_id,omitempty"`
	GrantedBy    *int64    `json:"granted_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromDataModel(g *grantDatamodel.ResourceGrant) *Grant {
	return &Grant{
		ID:           g.ID,
		ResourceType: g.ResourceType,
		ResourceID:   g.ResourceID,
		UserID:       g.UserID,
		RoleID:       g.RoleID,
		GrantedBy:    g.GrantedBy,
		CreatedAt:    g.CreatedAt,
	}
}
