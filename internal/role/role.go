package role

import (
	identityDatamodel "github.com/frahmantamala/library-management/internal/core/datamodel/identity"
	"github.com/frahmantamala/library-management/internal/core/identity"
)

// RoleWithPermissions is the response shape for a role and its capabilities.
type RoleWithPermissions struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Permissions []*identity.Permission `json:"permissions"`
}

func RoleFromDataModel(r *identityDatamodel.Role) *identity.Role {
	return &identity.Role{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

func PermissionFromDataModel(p *identityDatamodel.Permission) *identity.Permission {
	return &identity.Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func permissionsFromDataModel(rows []*identityDatamodel.Permission) []*identity.Permission {
	out := make([]*identity.Permission, 0, len(rows))
	for _, p := range rows {
		out = append(out, PermissionFromDataModel(p))
	}
	return out
}
